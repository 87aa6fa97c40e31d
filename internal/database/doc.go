// Package database provides SQLite-based storage for finished research runs.
//
// This package implements the Archive, which stores one assembled report
// per run, keyed by run ID, together with a few denormalized columns for
// listing history. Intermediate crawl state is deliberately never stored;
// every run starts from a clean slate.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the archive is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
