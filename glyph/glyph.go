package glyph

import (
	"image"
	"image/color"
)

const (
	// Width is the number of pixels in a glyph row.
	Width = 5
	// Height is the number of rows in a glyph.
	Height = 8
)

// Bit is a one-bit color: a lit or dark pixel.
type Bit bool

const (
	Off Bit = false
	On  Bit = true
)

// RGBA implements color.Color. On is white.
func (c Bit) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Same luma weights as color.GrayModel, on 16-bit channels.
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Glyph is a 5x8 one-bit image in CGRAM row layout.
type Glyph struct {
	Pix [Height]byte // one row per byte, bit 4 is the leftmost pixel
}

// New returns a blank glyph.
func New() *Glyph {
	return &Glyph{}
}

// FromRows returns a glyph with the given row patterns. Bits above bit 4 are
// dropped.
func FromRows(rows [Height]byte) *Glyph {
	g := &Glyph{}
	for i, r := range rows {
		g.Pix[i] = r & 0x1F
	}
	return g
}

// ColorModel returns BitModel.
func (g *Glyph) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the 5x8 rectangle at the origin.
func (g *Glyph) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// At implements image.Image.
func (g *Glyph) At(x, y int) color.Color {
	return g.BitAt(x, y)
}

// BitAt returns the pixel at (x, y). Points outside the glyph are Off.
func (g *Glyph) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(g.Bounds())) {
		return Off
	}
	return g.Pix[y]&mask(x) != 0
}

// Set implements draw.Image.
func (g *Glyph) Set(x, y int, c color.Color) {
	g.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the pixel at (x, y). Points outside the glyph are ignored.
func (g *Glyph) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(g.Bounds())) {
		return
	}
	if b {
		g.Pix[y] |= mask(x)
	} else {
		g.Pix[y] &^= mask(x)
	}
}

// Rows returns the row bytes as written to CGRAM.
func (g *Glyph) Rows() [Height]byte {
	return g.Pix
}

func mask(x int) byte {
	return 1 << uint(Width-1-x)
}
