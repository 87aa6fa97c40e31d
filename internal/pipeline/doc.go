// Package pipeline provides a framework for executing research stages in
// sequence.
//
// The pipeline pattern is used to carry a run through its four stages:
// crawling, relevance scoring, grouping/summarization, and report assembly.
// Each stage is implemented as a Step that receives the current State and
// returns a new one with its product filled in.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running runs
// 4. Interruption handling lives in one place: a context error marks the
//    state, later processing steps skip, and assembly still renders a
//    partial report
package pipeline
