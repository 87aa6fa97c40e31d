// Package extract parses fetched HTML into the shape the pipeline
// needs: the page title, the visible text with scripts, styles, and
// navigation chrome removed, and the outgoing links in document order.
package extract
