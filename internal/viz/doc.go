// Package viz renders bar and orbit results in the terminal.
//
// Static output is built from lipgloss styles, asciigraph line charts and a
// Braille [Canvas] for orbit paths. The interactive preset browser uses the
// Bubble Tea framework.
//
// # Key Bindings
//
//	j/k   - Move between presets or parameters
//	h/l   - Adjust the selected parameter
//	s     - Solve
//	w     - Save the solved run
//	esc   - Back
package viz
