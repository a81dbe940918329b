// Package hd44780 controls a 16x2 HD44780 character LCD over a 4-bit bus.
//
// The display is reached either through GPIO pins or a PCF8574 I²C backpack.
// See the examples for how to use this package.
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/hd44780/glyph"
	"periph.io/x/devices/v3/hd44780/lcdfmt"
)

// Display geometry.
const (
	Rows = 2
	Cols = 16
)

// Controller instructions.
const (
	cmdClear      = 0x01
	cmdEntryMode  = 0x04 // | increment 0x02 | shift 0x01
	cmdDisplay    = 0x08 // | on 0x04 | cursor 0x02 | blink 0x01
	cmdCursorLeft = 0x10
	cmdFunction   = 0x20 // | 8-bit 0x10 | 2 lines 0x08 | 5x10 font 0x04
	cmdSetCGRAM   = 0x40
	cmdSetDDRAM   = 0x80

	row1Addr = 0x40
)

// Opts is the configuration for the display.
type Opts struct {
	// I2CAddr is the address of the PCF8574 backpack, used by NewI2C.
	// Default: 0x27.
	I2CAddr uint16

	// Settle is the hold time around each E edge on a GPIO bus. The
	// controller needs at least 450ns of E high. Default: 1µs.
	Settle time.Duration
}

// DefaultOpts are used when nil is passed as options.
var DefaultOpts = Opts{
	I2CAddr: 0x27,
	Settle:  time.Microsecond,
}

func (o *Opts) i2cAddr() (uint16, error) {
	switch o.I2CAddr {
	case 0:
		return DefaultOpts.I2CAddr, nil
	case 0x20, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, // PCF8574
		0x38, 0x39, 0x3A, 0x3B, 0x3C, 0x3D, 0x3E, 0x3F: // PCF8574A
		return o.I2CAddr, nil
	default:
		return 0, fmt.Errorf("hd44780: I²C address %#x is not a PCF8574 address", o.I2CAddr)
	}
}

// Dev is a handle to a HD44780 display.
//
// The device cursor is the only state; it lives in the controller. A Dev must
// be used by one goroutine at a time, and must not be re-entered from a Sink
// or callback while a call is in progress.
type Dev struct {
	bus    Bus
	sleep  func(time.Duration)
	halted bool
}

var errHalted = errors.New("hd44780: halted")

// New returns a display on an existing bus and initializes it.
func New(b Bus) (*Dev, error) {
	return newDev(b, time.Sleep)
}

func newDev(b Bus, sleep func(time.Duration)) (*Dev, error) {
	if b == nil {
		return nil, errors.New("hd44780: bus is required")
	}
	d := &Dev{bus: b, sleep: sleep}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewGPIO returns a display wired to GPIO pins in 4-bit mode.
//
// opts can be nil to use DefaultOpts.
func NewGPIO(pins *Pins, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultOpts.Settle
	}
	b, err := newGPIOBus(pins, settle)
	if err != nil {
		return nil, err
	}
	return New(b)
}

// NewI2C returns a display behind a PCF8574 I²C backpack, with the
// backlight on.
//
// opts can be nil to use DefaultOpts.
func NewI2C(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, err
	}
	b := &i2cBus{dev: &i2c.Dev{Bus: bus, Addr: addr}, backlight: bpBacklight}
	return New(b)
}

// Init runs the 4-bit bring-up sequence and leaves the display on, cleared,
// with the cursor hidden and auto-increment selected. It also revives a
// halted device.
func (d *Dev) Init() error {
	d.halted = false

	// Power-on wait, then three 8-bit function sets and the switch to 4-bit
	// mode. The busy flag cannot be read yet.
	d.sleep(15 * time.Millisecond)
	steps := []struct {
		n    byte
		wait time.Duration
	}{
		{0x30, 5 * time.Millisecond},
		{0x30, 100 * time.Microsecond},
		{0x30, 100 * time.Microsecond},
		{0x20, 100 * time.Microsecond},
	}
	for _, s := range steps {
		if err := d.bus.WriteNibble(false, s.n); err != nil {
			return err
		}
		d.sleep(s.wait)
	}

	for _, c := range []byte{
		cmdFunction | 0x08, // 4-bit, 2 lines, 5x8 font
		cmdDisplay,         // display off
		cmdClear,
		cmdEntryMode | 0x02, // increment, no shift
		cmdDisplay | 0x04,   // display on, no cursor
	} {
		if err := d.writeCommand(c); err != nil {
			return err
		}
	}
	return nil
}

// Clear blanks the display and moves the cursor to (0, 0).
func (d *Dev) Clear() error {
	if d.halted {
		return errHalted
	}
	return d.writeCommand(cmdClear)
}

// SetPosition moves the cursor. Any non-zero row selects the second row;
// col is not range checked.
func (d *Dev) SetPosition(row, col byte) error {
	if d.halted {
		return errHalted
	}
	addr := byte(0)
	if row != 0 {
		addr = row1Addr
	}
	addr += col
	return d.writeCommand(cmdSetDDRAM | addr)
}

// Goto is SetPosition with 1-based line and column.
func (d *Dev) Goto(line, col byte) error {
	return d.SetPosition(line-1, col-1)
}

// PutChar writes c at the cursor, which then moves right.
//
// Control bytes are commands: '\f' clears the display, '\n' moves to the
// start of the second row (there is no wrap back to the first) and '\b' moves
// the cursor one cell left. Other bytes below 0x20 are written as data,
// showing the custom glyphs 0..7 and their mirrors 8..15.
//
// Printf and Write go through PutChar, so a '\n' in a format or an argument
// moves the cursor just as a direct PutChar('\n') does.
func (d *Dev) PutChar(c byte) error {
	if d.halted {
		return errHalted
	}
	switch {
	case c >= 0x20:
		return d.writeData(c)
	case c == '\f':
		return d.writeCommand(cmdClear)
	case c == '\n':
		return d.SetPosition(1, 0)
	case c == '\b':
		return d.writeCommand(cmdCursorLeft)
	}
	return d.writeData(c)
}

// Printf renders format at the cursor. See package lcdfmt for the supported
// conversions.
func (d *Dev) Printf(format string, args ...lcdfmt.Arg) error {
	if d.halted {
		return errHalted
	}
	return lcdfmt.Fprintf(d, format, args...)
}

// PutInt prints n in decimal.
func (d *Dev) PutInt(n int16) error {
	return d.Printf("%d", lcdfmt.Int(n))
}

// PutString prints s up to its first NUL byte.
func (d *Dev) PutString(s string) error {
	return d.Printf("%S", lcdfmt.Str(s))
}

// Write implements io.Writer. Each byte goes through PutChar.
func (d *Dev) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := d.PutChar(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// DefineGlyph loads g as custom character slot (0..7; higher bits are
// ignored). The cursor is left at (0, 0).
func (d *Dev) DefineGlyph(slot byte, g *glyph.Glyph) error {
	if d.halted {
		return errHalted
	}
	if g == nil {
		return errors.New("hd44780: glyph is required")
	}
	if err := d.writeCommand(cmdSetCGRAM | (slot&7)<<3); err != nil {
		return err
	}
	for _, row := range g.Rows() {
		if err := d.writeData(row); err != nil {
			return err
		}
	}
	return d.writeCommand(cmdSetDDRAM)
}

// Display sets the display, cursor and blink bits.
func (d *Dev) Display(on, cursor, blink bool) error {
	if d.halted {
		return errHalted
	}
	c := byte(cmdDisplay)
	if on {
		c |= 0x04
	}
	if cursor {
		c |= 0x02
	}
	if blink {
		c |= 0x01
	}
	return d.writeCommand(c)
}

// Backlight switches the backlight, on buses that control one.
func (d *Dev) Backlight(on bool) error {
	if d.halted {
		return errHalted
	}
	b, ok := d.bus.(backlighter)
	if !ok {
		return errors.New("hd44780: bus has no backlight control")
	}
	return b.SetBacklight(on)
}

// Halt turns the display off. Further calls fail until Init.
func (d *Dev) Halt() error {
	d.halted = true
	return d.writeCommand(cmdDisplay)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("hd44780.Dev{%dx%d}", Cols, Rows)
}

func (d *Dev) writeCommand(c byte) error {
	return d.write(false, c)
}

func (d *Dev) writeData(c byte) error {
	return d.write(true, c)
}

// write waits for the controller, then sends c high nibble first.
func (d *Dev) write(rs bool, c byte) error {
	if err := d.waitReady(); err != nil {
		return err
	}
	if err := d.bus.WriteNibble(rs, c&0xF0); err != nil {
		return err
	}
	return d.bus.WriteNibble(rs, c<<4)
}

// waitReady polls the busy flag. There is no timeout: a controller that
// never becomes ready blocks the caller forever.
func (d *Dev) waitReady() error {
	for {
		busy, err := d.isBusy()
		if err != nil || !busy {
			return err
		}
	}
}

func (d *Dev) isBusy() (bool, error) {
	return d.bus.ReadBusy()
}
