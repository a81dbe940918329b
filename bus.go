package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Bus is the 4-bit interface to the controller.
//
// Implementations block until each transfer is complete. They are not safe
// for concurrent use.
type Bus interface {
	// WriteNibble drives D4..D7 with the high four bits of n and RS with rs,
	// holds RW low, then latches the nibble with an E pulse.
	WriteNibble(rs bool, n byte) error
	// ReadBusy reads the busy flag: RS low, RW high, one E pulse sampling D7
	// and a second E pulse for the unused low nibble. The bus is back in write
	// mode when it returns.
	ReadBusy() (bool, error)
}

// backlighter is implemented by buses that switch a backlight.
type backlighter interface {
	SetBacklight(on bool) error
}

// Pins is the wiring of a 4-bit parallel interface. All pins are required;
// D0..D3 of the module are left unconnected.
type Pins struct {
	E  gpio.PinOut   // enable strobe
	RS gpio.PinOut   // register select: low for commands, high for data
	RW gpio.PinOut   // low to write, high to read the busy flag
	D  [4]gpio.PinIO // D4..D7
}

// gpioBus drives the controller through individual GPIO pins.
type gpioBus struct {
	pins   Pins
	settle time.Duration
}

func newGPIOBus(p *Pins, settle time.Duration) (*gpioBus, error) {
	if p == nil || p.E == nil || p.RS == nil || p.RW == nil {
		return nil, errors.New("hd44780: E, RS and RW pins are required")
	}
	for i, d := range p.D {
		if d == nil {
			return nil, fmt.Errorf("hd44780: data pin D%d is required", i+4)
		}
	}
	return &gpioBus{pins: *p, settle: settle}, nil
}

func out(p gpio.PinOut, l gpio.Level) error {
	if err := p.Out(l); err != nil {
		return fmt.Errorf("hd44780: %s: %w", p.Name(), err)
	}
	return nil
}

// strobe pulses E, holding each level for the settle time.
func (b *gpioBus) strobe() error {
	time.Sleep(b.settle)
	if err := out(b.pins.E, gpio.High); err != nil {
		return err
	}
	time.Sleep(b.settle)
	if err := out(b.pins.E, gpio.Low); err != nil {
		return err
	}
	time.Sleep(b.settle)
	return nil
}

func (b *gpioBus) WriteNibble(rs bool, n byte) error {
	if err := out(b.pins.RS, gpio.Level(rs)); err != nil {
		return err
	}
	if err := out(b.pins.RW, gpio.Low); err != nil {
		return err
	}
	for i, d := range b.pins.D {
		if err := out(d, gpio.Level(n&(0x10<<uint(i)) != 0)); err != nil {
			return err
		}
	}
	return b.strobe()
}

func (b *gpioBus) ReadBusy() (bool, error) {
	if err := out(b.pins.RS, gpio.Low); err != nil {
		return false, err
	}
	// Release the data lines before the controller starts driving them.
	for _, d := range b.pins.D {
		if err := d.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			return false, fmt.Errorf("hd44780: %s: %w", d.Name(), err)
		}
	}
	if err := out(b.pins.RW, gpio.High); err != nil {
		return false, err
	}

	time.Sleep(b.settle)
	if err := out(b.pins.E, gpio.High); err != nil {
		return false, err
	}
	time.Sleep(b.settle)
	busy := b.pins.D[3].Read() == gpio.High
	if err := out(b.pins.E, gpio.Low); err != nil {
		return false, err
	}

	// Clock out the low nibble of the status byte.
	if err := b.strobe(); err != nil {
		return false, err
	}
	if err := out(b.pins.RW, gpio.Low); err != nil {
		return false, err
	}
	return busy, nil
}

// PCF8574 port bits on the common I²C backpack.
const (
	bpRS        = 0x01
	bpRW        = 0x02
	bpE         = 0x04
	bpBacklight = 0x08
	bpData      = 0xF0
)

// i2cBus drives the controller through a PCF8574 I/O expander. Each I²C
// transaction takes far longer than the E pulse width, so no extra settle
// delay is added.
type i2cBus struct {
	dev       *i2c.Dev
	backlight byte
}

func (b *i2cBus) String() string {
	return fmt.Sprintf("%s@%#x", b.dev.Bus, b.dev.Addr)
}

func (b *i2cBus) tx(w []byte, r []byte) error {
	for i := range w {
		w[i] |= b.backlight
	}
	if err := b.dev.Tx(w, r); err != nil {
		return fmt.Errorf("hd44780: i2c: %w", err)
	}
	return nil
}

func (b *i2cBus) WriteNibble(rs bool, n byte) error {
	v := n & bpData
	if rs {
		v |= bpRS
	}
	return b.tx([]byte{v | bpE, v}, nil)
}

func (b *i2cBus) ReadBusy() (bool, error) {
	// Data lines high so the controller can pull them down.
	v := byte(bpData | bpRW)
	if err := b.tx([]byte{v}, nil); err != nil {
		return false, err
	}
	var r [1]byte
	if err := b.tx([]byte{v | bpE}, r[:]); err != nil {
		return false, err
	}
	if err := b.tx([]byte{v, v | bpE, v, 0}, nil); err != nil {
		return false, err
	}
	return r[0]&0x80 != 0, nil
}

func (b *i2cBus) SetBacklight(on bool) error {
	b.backlight = 0
	if on {
		b.backlight = bpBacklight
	}
	return b.tx([]byte{0}, nil)
}
