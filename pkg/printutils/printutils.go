package printutils

import "github.com/fatih/color"

var (
	// ErrFprintf prints colored errors and warnings.
	ErrFprintf = color.New(color.FgRed).FprintfFunc()
	// SuccessFprintf prints colored successes.
	SuccessFprintf = color.New(color.FgGreen).FprintfFunc()
	// NeutralFprintf prints without any color.
	NeutralFprintf = color.New().FprintfFunc()
	// HighlightSprint highlights values with color.
	HighlightSprint = color.New(color.FgYellow).SprintFunc()
	// HighlightSprintf formats and highlights values with color.
	HighlightSprintf = color.New(color.FgYellow).SprintfFunc()
)
