// Package hd44780 controls a HD44780 compatible 16x2 character LCD.
//
// The HD44780 keeps 80 bytes of display RAM (DDRAM), 64 bytes of character
// generator RAM (CGRAM) for eight custom 5x8 glyphs, and an address counter
// that doubles as the cursor. This driver talks to it in 4-bit mode and waits
// on the busy flag before every instruction or data byte.
//
// # Hardware Connection
//
// Direct GPIO wiring uses seven lines:
//
//	LCD Pin → System Pin
//	VSS     → GND
//	VDD     → 5V
//	V0      → contrast potentiometer wiper
//	RS      → GPIO (register select)
//	RW      → GPIO (read/write, needed for the busy flag)
//	E       → GPIO (enable strobe)
//	D4..D7  → GPIO, bidirectional
//	A, K    → backlight supply
//
// Most modules sold today carry a PCF8574 I²C backpack instead. Its port is
// wired as P0=RS, P1=RW, P2=E, P3=backlight and P4..P7=D4..D7, which is the
// layout NewI2C expects.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/devices/v3/hd44780"
//		"periph.io/x/devices/v3/hd44780/lcdfmt"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//		b, err := i2creg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer b.Close()
//
//		dev, err := hd44780.NewI2C(b, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.Printf("temp %+4dC\n%5.1f%%", lcdfmt.Int(21), lcdfmt.Float(48.25))
//	}
//
// # Formatted Output
//
// Printf understands a small printf dialect aimed at 8 and 16-bit values;
// see package lcdfmt. Arguments are typed with lcdfmt.Int, lcdfmt.Long,
// lcdfmt.Str and friends, and a conversion that does not match its argument
// returns *lcdfmt.ArgError instead of printing garbage.
//
// Every rendered byte passes through PutChar, so control bytes work the same
// whether they come from the format, an argument or a direct call:
//
//	'\f'  clear the display, cursor to (0, 0)
//	'\n'  cursor to the start of the second row
//	'\b'  cursor one cell left
//
// Bytes 0x00..0x07 (and 0x08..0x0F apart from '\b', '\n' and '\f') show the
// custom glyphs loaded with DefineGlyph.
//
// # Custom Characters
//
// Glyphs are drawn with package glyph, which implements draw.Image:
//
//	g := glyph.FromRows([8]byte{0x0E, 0x1B, 0x11, 0x11, 0x11, 0x11, 0x1F})
//	dev.DefineGlyph(0, g)
//	dev.PutChar(0)
//
// # Concurrency
//
// A Dev is not safe for concurrent use and must not be re-entered: a Sink or
// io.Writer that calls back into the same Dev while Printf or Write runs
// interleaves nibbles on the bus.
//
// # Busy Flag
//
// Each transfer first polls the busy flag. There is no timeout, so a module
// that is unplugged or miswired with RW tied low can block the caller
// forever.
//
// # Testing
//
// Package hd44780test models the controller in software. Its Controller
// implements Bus, so a Dev can be driven and checked without hardware.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780
