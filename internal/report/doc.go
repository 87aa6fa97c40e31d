// Package report assembles and renders the final research report.
//
// Assembly and rendering are separate steps: Assemble is a pure
// function turning the stage outputs into a model.Report (no I/O, no
// clock), and the Writer implementations render that report without
// modifying it. Rendering the same report twice produces byte-identical
// output; the generation timestamp is an assembly input, never read
// during rendering.
//
// Three writers cover the output formats:
//
//   - MarkdownWriter: documentation-ready markdown via nao1215/markdown
//   - JSONWriter / FullJSONWriter: machine-readable, optionally wrapped
//     with version metadata
//   - SimpleWriter: plain text for terminal display
//
// MultiWriter fans one report out to several writers, e.g. terminal
// and file at once.
package report
