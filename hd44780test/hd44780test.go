// Package hd44780test is a software HD44780 controller for tests and
// simulation.
//
// Controller accepts the same nibble and busy flag traffic as a real module
// on a 4-bit bus and keeps DDRAM, CGRAM and the address counter, so the
// result of a write sequence can be checked without hardware.
package hd44780test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Op is one instruction or data byte received by the controller.
type Op struct {
	RS    bool // true for data, false for an instruction
	Value byte
}

func (o Op) String() string {
	if o.RS {
		return fmt.Sprintf("data(%#02x)", o.Value)
	}
	return fmt.Sprintf("cmd(%#02x)", o.Value)
}

// ErrWriteWhileBusy is returned when a nibble arrives while the busy flag is
// still set.
var ErrWriteWhileBusy = errors.New("hd44780test: write while busy")

// Controller models a HD44780 with a 2-line DDRAM.
//
// Controller is safe for concurrent use, so a display front end may read it
// while the driver writes.
type Controller struct {
	// BusyPolls is the number of ReadBusy calls that report busy after each
	// instruction or data write.
	BusyPolls int

	mu sync.Mutex
	s  state
}

type state struct {
	fourBit   bool
	half      bool
	hi        byte
	busyLeft  int
	polls     int
	ddram     [0x80]byte
	cgram     [64]byte
	ac        byte
	inCGRAM   bool
	decrement bool
	shift     bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	twoLines  bool
	ops       []Op
}

// New returns a controller in its power-on state: 8-bit interface, display
// off, DDRAM filled with spaces.
func New() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Reset restores the power-on state and forgets recorded operations.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s = state{}
	for i := range c.s.ddram {
		c.s.ddram[i] = ' '
	}
}

// WriteNibble implements the bus side of a nibble transfer.
func (c *Controller) WriteNibble(rs bool, n byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n &= 0xF0
	if c.s.busyLeft > 0 {
		// The high nibble of an 8-bit function set starts the reset
		// sequence, which is timed with fixed delays instead of polled.
		if rs || c.s.half || n != 0x30 {
			return ErrWriteWhileBusy
		}
		c.s.busyLeft = 0
	}
	if !c.s.fourBit {
		// 8-bit mode: D0..D3 are unconnected and read as zero.
		c.exec(rs, n)
		return nil
	}
	if !c.s.half {
		c.s.hi = n
		c.s.half = true
		return nil
	}
	c.s.half = false
	c.exec(rs, c.s.hi|n>>4)
	return nil
}

// ReadBusy reports the busy flag, counting down BusyPolls.
func (c *Controller) ReadBusy() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.s.polls++
	if c.s.busyLeft > 0 {
		c.s.busyLeft--
		return true, nil
	}
	return false, nil
}

func (c *Controller) exec(rs bool, v byte) {
	c.s.ops = append(c.s.ops, Op{RS: rs, Value: v})
	wasFourBit := c.s.fourBit
	c.decode(rs, v)
	// The busy flag is only polled in 4-bit mode; the bring-up nibbles that
	// leave or enter it rely on fixed delays.
	if wasFourBit && c.s.fourBit {
		c.s.busyLeft = c.BusyPolls
	}
}

func (c *Controller) decode(rs bool, v byte) {
	if rs {
		c.writeRAM(v)
		return
	}
	switch {
	case v&0x80 != 0:
		c.s.ac = v & 0x7F
		c.s.inCGRAM = false
	case v&0x40 != 0:
		c.s.ac = v & 0x3F
		c.s.inCGRAM = true
	case v&0x20 != 0:
		c.s.fourBit = v&0x10 == 0
		c.s.twoLines = v&0x08 != 0
	case v&0x10 != 0:
		// Display shift (bit 3) is not modelled; cursor moves follow bit 2.
		if v&0x08 == 0 {
			c.step(v&0x04 == 0)
		}
	case v&0x08 != 0:
		c.s.displayOn = v&0x04 != 0
		c.s.cursorOn = v&0x02 != 0
		c.s.blinkOn = v&0x01 != 0
	case v&0x04 != 0:
		c.s.decrement = v&0x02 == 0
		c.s.shift = v&0x01 != 0
	case v&0x02 != 0:
		c.s.ac = 0
		c.s.inCGRAM = false
	case v == 0x01:
		for i := range c.s.ddram {
			c.s.ddram[i] = ' '
		}
		c.s.ac = 0
		c.s.inCGRAM = false
		c.s.decrement = false
	}
}

func (c *Controller) writeRAM(v byte) {
	if c.s.inCGRAM {
		c.s.cgram[c.s.ac&0x3F] = v & 0x1F
		if c.s.decrement {
			c.s.ac = (c.s.ac - 1) & 0x3F
		} else {
			c.s.ac = (c.s.ac + 1) & 0x3F
		}
		return
	}
	c.s.ddram[c.s.ac] = v
	c.step(c.s.decrement)
}

// step moves the DDRAM address counter by one.
func (c *Controller) step(back bool) {
	if back {
		c.s.ac = (c.s.ac - 1) & 0x7F
	} else {
		c.s.ac = (c.s.ac + 1) & 0x7F
	}
}

// Line returns the 16 visible characters of row 0 or 1.
func (c *Controller) Line(row int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := 0
	if row != 0 {
		base = 0x40
	}
	return string(c.s.ddram[base : base+16])
}

// Lines returns both rows joined with a newline.
func (c *Controller) Lines() string {
	return strings.Join([]string{c.Line(0), c.Line(1)}, "\n")
}

// Address returns the DDRAM or CGRAM address counter.
func (c *Controller) Address() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.ac
}

// Cursor returns the row and column of the DDRAM address counter.
func (c *Controller) Cursor() (row, col byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.ac >= 0x40 {
		return 1, c.s.ac - 0x40
	}
	return 0, c.s.ac
}

// CGRAM returns the 8 pattern rows of a custom character slot.
func (c *Controller) CGRAM(slot int) [8]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var g [8]byte
	copy(g[:], c.s.cgram[(slot&7)*8:])
	return g
}

// FourBit reports whether the interface has been switched to 4-bit mode.
func (c *Controller) FourBit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.fourBit
}

// TwoLines reports whether the function set selected 2-line mode.
func (c *Controller) TwoLines() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.twoLines
}

// DisplayOn reports the display, cursor and blink bits.
func (c *Controller) DisplayOn() (on, cursor, blink bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.displayOn, c.s.cursorOn, c.s.blinkOn
}

// Ops returns a copy of the instructions and data received so far.
func (c *Controller) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.s.ops...)
}

// Polls returns the number of ReadBusy calls.
func (c *Controller) Polls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.polls
}

// String returns a string representation of the controller.
func (c *Controller) String() string {
	return "hd44780test.Controller"
}
