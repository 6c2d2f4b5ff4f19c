// =============================================================================
// Docx Mail Merge - Main Entry Point
// =============================================================================
//
// USAGE:
//   mailmerge fields     - List the placeholders of a template
//   mailmerge map        - Match template fields to data columns
//   mailmerge preview    - Show one rendered row as markdown
//   mailmerge generate   - Generate one document per data row
//   mailmerge fill       - Fill a template from values given on the command line
//   mailmerge scaffold   - Write an empty data workbook for a template
//   mailmerge version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Core merge logic and its collaborators
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/docx-mail-merge/cmd"
)

func main() {
	cmd.Execute()
}
