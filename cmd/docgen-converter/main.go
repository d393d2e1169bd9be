// Package main provides the CLI entrypoint for docgen-converter.
//
// docgen-converter converts Conga .docx templates into Box DocGen templates:
//   - Reads merge fields and control tags from the template
//   - Resolves fields through overrides, the schema mapping and the query context
//   - Suggests close matches for whatever stays unresolved
//   - Writes the converted template and a mapping report
package main

import (
	"os"

	"docgen-converter/cmd/docgen-converter/commands"
)

func main() {
	root := commands.NewRoot()

	if err := root.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
