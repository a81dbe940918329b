// Package glyph provides the 5x8 one-bit image used for HD44780 custom
// characters.
//
// The controller keeps eight user-defined characters in its pattern RAM
// (CGRAM), character codes 0 to 7. Each is 8 rows of 5 pixels. A row is one
// byte whose bits 4..0 hold the pixels from left to right:
//
//	Row:    . # . # .
//	Byte:   0b01010 = 0x0A
//
// Glyph implements draw.Image, so it can be filled with draw.Draw from any
// image; colors are thresholded at half intensity.
//
//	g := glyph.New()
//	g.SetBit(2, 0, true)
//	dev.DefineGlyph(0, g)
//	dev.PutChar(0)
package glyph
