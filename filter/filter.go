// Package filter turns raw input into the navigation target handed to
// the model each frame.
package filter

// Canvas is the surface a filter decorates.
type Canvas interface {
	// NavigationToScreen maps navigation coordinates to screen cells.
	NavigationToScreen(x, y int64) (int, int)
	DrawRectangle(x1, y1, x2, y2 int, fillColour, outlineColour int, thickness int)
}

// Unpauser resumes navigation.
type Unpauser interface {
	Unpause(t int64)
}

// Pauser can both resume and stop navigation.
type Pauser interface {
	Unpauser
	PauseAt(x, y int64)
}

// Switch ids.
const (
	SwitchPrimary = 1
	SwitchBackOff = 2
)

// Centre of navigation space, where a resting filter points.
const (
	centreX = 2048
	centreY = 2048
)
