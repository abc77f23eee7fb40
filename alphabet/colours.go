package alphabet

import "fmt"

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// Hex renders c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ColourScheme is an indexed palette. Indices wrap around its length.
type ColourScheme struct {
	ID      string
	Colours []RGB
}

// Colour returns entry i, black for an empty scheme.
func (cs *ColourScheme) Colour(i int) RGB {
	if cs == nil || len(cs.Colours) == 0 {
		return RGB{}
	}
	n := len(cs.Colours)
	return cs.Colours[((i%n)+n)%n]
}

// Len returns the number of entries.
func (cs *ColourScheme) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.Colours)
}

func builtinColours() []ColourScheme {
	base := []RGB{
		{0xFF, 0xFF, 0xFF}, // 0 background
		{0xE7, 0xB6, 0x5A}, // 1 guide, active
		{0x3D, 0x47, 0x52}, // 2 guide, inactive
		{0x00, 0x00, 0x00}, // 3 outline
		{0x0E, 0x11, 0x16}, // 4 text
		{0xE0, 0x6B, 0x75}, // 5 crosshair
		{0x65, 0xB5, 0xFF}, // 6 control
		{0x9F, 0xD3, 0xFF}, // 7 root
		{0xC0, 0xC8, 0xD4}, // 8 punctuation
		{0xD7, 0xDB, 0xE0}, // 9 space
	}
	withGroups := func(id string, groups ...RGB) ColourScheme {
		colours := append([]RGB{}, base...)
		colours = append(colours, groups...)
		return ColourScheme{ID: id, Colours: colours}
	}

	return []ColourScheme{
		withGroups("Default",
			RGB{0xFF, 0xFF, 0xB4}, RGB{0xB4, 0xFF, 0xB4},
			RGB{0xB4, 0xE6, 0xFF}, RGB{0xFF, 0xD2, 0xB4}),
		withGroups("European/Asian",
			RGB{0xFA, 0xE6, 0x8C}, RGB{0x8C, 0xD2, 0xFA},
			RGB{0xC8, 0xF0, 0xB4}, RGB{0xF0, 0xB4, 0xC8}),
		withGroups("Rainbow",
			RGB{0xFF, 0x8C, 0x8C}, RGB{0xFF, 0xD2, 0x8C},
			RGB{0x8C, 0xE6, 0x8C}, RGB{0x8C, 0xB4, 0xFF}),
		withGroups("Greyscale",
			RGB{0xE6, 0xE6, 0xE6}, RGB{0xC8, 0xC8, 0xC8},
			RGB{0xDC, 0xDC, 0xDC}, RGB{0xB4, 0xB4, 0xB4}),
	}
}
