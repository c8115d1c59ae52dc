// Package main provides the ditagen CLI.
//
// ditagen converts a Markdown documentation corpus, organized by a table of
// contents, into DITA topics and a map, and can render the map to PDF.
//
// Usage:
//
//	ditagen convert --source md --out dita
//	ditagen render --out dita
//	ditagen serve --port 8090
//
// See --help for all available options.
package main

func main() {
	Execute()
}
