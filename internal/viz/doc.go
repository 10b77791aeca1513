// Package viz draws orbits in the terminal.
//
// [Canvas] is a Braille dot canvas and [Viewport] maps world coordinates onto
// it. [Model] is a Bubble Tea program that animates a body along an
// orbit.Path, with live edits of the eccentricity and argument of periapsis.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Return to the starting epoch
//	Up/Down    - Eccentricity
//	Left/Right - Argument of periapsis
//	+/-        - Time scale
//	T          - Cycle colour themes
//	G          - Toggle GIF recording
//	?          - Help overlay
package viz
