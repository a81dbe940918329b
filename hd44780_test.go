package hd44780

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"periph.io/x/devices/v3/hd44780/glyph"
	"periph.io/x/devices/v3/hd44780/hd44780test"
	"periph.io/x/devices/v3/hd44780/lcdfmt"
)

var _ Bus = (*hd44780test.Controller)(nil)

func newTestDev(t *testing.T, busyPolls int) (*Dev, *hd44780test.Controller) {
	t.Helper()
	c := hd44780test.New()
	c.BusyPolls = busyPolls
	d, err := newDev(c, func(time.Duration) {})
	if err != nil {
		t.Fatalf("newDev() error: %v", err)
	}
	return d, c
}

func cmd(v byte) hd44780test.Op  { return hd44780test.Op{Value: v} }
func data(v byte) hd44780test.Op { return hd44780test.Op{RS: true, Value: v} }

// opsSince returns the operations recorded after the first n.
func opsSince(c *hd44780test.Controller, n int) []hd44780test.Op {
	return c.Ops()[n:]
}

func equalOps(t *testing.T, got, want []hd44780test.Op) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ops[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInitSequence(t *testing.T) {
	_, c := newTestDev(t, 1)
	equalOps(t, c.Ops(), []hd44780test.Op{
		cmd(0x30), cmd(0x30), cmd(0x30), cmd(0x20),
		cmd(0x28), cmd(0x08), cmd(0x01), cmd(0x06), cmd(0x0C),
	})
	if !c.FourBit() || !c.TwoLines() {
		t.Error("controller should be in 4-bit, 2-line mode")
	}
	if on, cursor, blink := c.DisplayOn(); !on || cursor || blink {
		t.Errorf("DisplayOn() = %v, %v, %v, want true, false, false", on, cursor, blink)
	}
}

func TestInitDelays(t *testing.T) {
	type pause struct {
		nibbles int // nibbles sent before the sleep
		d       time.Duration
	}
	c := hd44780test.New()
	c.BusyPolls = 1
	var got []pause
	if _, err := newDev(c, func(d time.Duration) {
		got = append(got, pause{len(c.Ops()), d})
	}); err != nil {
		t.Fatal(err)
	}

	want := []pause{
		{0, 15 * time.Millisecond},
		{1, 4100 * time.Microsecond},
		{2, 100 * time.Microsecond},
		{3, 37 * time.Microsecond},
		{4, 37 * time.Microsecond},
	}
	if len(got) != len(want) {
		t.Fatalf("sleeps = %v, want %d", got, len(want))
	}
	for i, m := range want {
		if got[i].nibbles != m.nibbles {
			t.Errorf("sleep #%d after %d nibbles, want %d", i, got[i].nibbles, m.nibbles)
		}
		if got[i].d < m.d {
			t.Errorf("sleep #%d = %v, want at least %v", i, got[i].d, m.d)
		}
	}
}

func TestNewNilBus(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestSetPosition(t *testing.T) {
	tests := []struct {
		row, col byte
		want     byte
	}{
		{0, 0, 0x80},
		{0, 5, 0x85},
		{1, 0, 0xC0},
		{1, 15, 0xCF},
		{7, 3, 0xC3},  // any non-zero row is row 1
		{0, 40, 0xA8}, // columns are not range checked
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d,%d", tt.row, tt.col), func(t *testing.T) {
			d, c := newTestDev(t, 0)
			n := len(c.Ops())
			if err := d.SetPosition(tt.row, tt.col); err != nil {
				t.Fatal(err)
			}
			equalOps(t, opsSince(c, n), []hd44780test.Op{cmd(tt.want)})
		})
	}
}

func TestSetPositionRow1(t *testing.T) {
	d, c := newTestDev(t, 0)
	if err := d.SetPosition(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Printf("row1"); err != nil {
		t.Fatal(err)
	}
	if got := c.Line(1); got != "row1            " {
		t.Errorf("Line(1) = %q", got)
	}
	if got := c.Line(0); got != "                " {
		t.Errorf("Line(0) = %q, want blanks", got)
	}
	if row, col := c.Cursor(); row != 1 || col != 4 {
		t.Errorf("Cursor() = (%d, %d), want (1, 4)", row, col)
	}
}

func TestPutChar(t *testing.T) {
	tests := []struct {
		name string
		c    byte
		want hd44780test.Op
	}{
		{"printable", 'A', data('A')},
		{"space", ' ', data(' ')},
		{"high byte", 0xDF, data(0xDF)},
		{"form feed clears", '\f', cmd(0x01)},
		{"newline goes to row 1", '\n', cmd(0xC0)},
		{"backspace moves left", '\b', cmd(0x10)},
		{"glyph 1 is data", 0x01, data(0x01)},
		{"other control is data", '\r', data('\r')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := newTestDev(t, 0)
			n := len(c.Ops())
			if err := d.PutChar(tt.c); err != nil {
				t.Fatal(err)
			}
			equalOps(t, opsSince(c, n), []hd44780test.Op{tt.want})
		})
	}
}

func TestPrintfOnDisplay(t *testing.T) {
	tests := []struct {
		format string
		args   []lcdfmt.Arg
		want   string
	}{
		{"%05d", []lcdfmt.Arg{lcdfmt.Int(42)}, "00042"},
		{"%5d", []lcdfmt.Arg{lcdfmt.Int(42)}, "   42"},
		{"%-5d|", []lcdfmt.Arg{lcdfmt.Int(42)}, "42   |"},
		{"%#x %#X", []lcdfmt.Arg{lcdfmt.Int(255), lcdfmt.Int(255)}, "0xff 0XFF"},
		{"%ld", []lcdfmt.Arg{lcdfmt.Long(-2147483648)}, "-2147483648"},
		{"%.3s", []lcdfmt.Arg{lcdfmt.Str("hello")}, "hel"},
		{"%6.3s", []lcdfmt.Arg{lcdfmt.Str("hello")}, "   hel"},
		{"%f", []lcdfmt.Arg{lcdfmt.Float(2.5)}, "2.500"},
		{"50%", nil, "50%"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			d, c := newTestDev(t, 1)
			if err := d.Printf(tt.format, tt.args...); err != nil {
				t.Fatal(err)
			}
			want := fmt.Sprintf("%-16s", tt.want)
			if got := c.Line(0); got != want {
				t.Errorf("Line(0) = %q, want %q", got, want)
			}
		})
	}
}

func TestPrintfControlBytes(t *testing.T) {
	d, c := newTestDev(t, 0)
	// The newline in the argument is a command just like the literal one.
	if err := d.Printf("T=%d\nmsg:%s", lcdfmt.Int(21), lcdfmt.Str("a\nb")); err != nil {
		t.Fatal(err)
	}
	if got := c.Line(0); got != "T=21            " {
		t.Errorf("Line(0) = %q", got)
	}
	// "msg:a" lands on row 1, then the argument's '\n' restarts row 1.
	if got := c.Line(1); got != "bsg:a           " {
		t.Errorf("Line(1) = %q", got)
	}

	if err := d.Printf("\fX\bY"); err != nil {
		t.Fatal(err)
	}
	if got := c.Lines(); got != "Y               \n                " {
		t.Errorf("Lines() = %q", got)
	}
}

func TestPrintfLiteralMatchesPutChar(t *testing.T) {
	for _, s := range []string{"hello", "a\nb", "\fclr", "x\by", "\x02raw"} {
		d1, c1 := newTestDev(t, 0)
		d2, c2 := newTestDev(t, 0)
		if err := d1.Printf(s); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < len(s); i++ {
			if err := d2.PutChar(s[i]); err != nil {
				t.Fatal(err)
			}
		}
		equalOps(t, c1.Ops(), c2.Ops())
	}
}

func TestClearIsIdempotentReset(t *testing.T) {
	d1, c1 := newTestDev(t, 0)
	d2, c2 := newTestDev(t, 0)

	if err := d1.Printf("garbage\n0123456789abcdef"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []*Dev{d1, d2} {
		if err := d.Clear(); err != nil {
			t.Fatal(err)
		}
		if err := d.Printf("%d items\n%s", lcdfmt.Int(3), lcdfmt.Str("ok")); err != nil {
			t.Fatal(err)
		}
	}
	if c1.Lines() != c2.Lines() {
		t.Errorf("Lines() differ after Clear:\n%q\n%q", c1.Lines(), c2.Lines())
	}
}

func TestBusyPolling(t *testing.T) {
	d, c := newTestDev(t, 2)
	before := c.Polls()
	if err := d.Printf("abc"); err != nil {
		t.Fatal(err)
	}
	// Each write sees two busy reads and one ready read.
	if got := c.Polls() - before; got != 9 {
		t.Errorf("polls = %d, want 9", got)
	}
	if got := c.Line(0); got != "abc             " {
		t.Errorf("Line(0) = %q", got)
	}
}

func TestDefineGlyph(t *testing.T) {
	d, c := newTestDev(t, 0)
	rows := [8]byte{0x04, 0x0E, 0x1F, 0x04, 0x04, 0x04, 0x04, 0x00}
	if err := d.SetPosition(1, 3); err != nil {
		t.Fatal(err)
	}
	if err := d.DefineGlyph(9, glyph.FromRows(rows)); err != nil {
		t.Fatal(err)
	}
	if got := c.CGRAM(1); got != rows {
		t.Errorf("CGRAM(1) = %#v, want %#v", got, rows)
	}
	if row, col := c.Cursor(); row != 0 || col != 0 {
		t.Errorf("Cursor() = (%d, %d), want (0, 0)", row, col)
	}
	if err := d.PutChar(1); err != nil {
		t.Fatal(err)
	}
	if got := c.Line(0)[0]; got != 0x01 {
		t.Errorf("Line(0)[0] = %#x, want glyph 1", got)
	}
}

func TestDisplay(t *testing.T) {
	d, c := newTestDev(t, 0)
	n := len(c.Ops())
	if err := d.Display(true, true, true); err != nil {
		t.Fatal(err)
	}
	if err := d.Display(false, false, false); err != nil {
		t.Fatal(err)
	}
	equalOps(t, opsSince(c, n), []hd44780test.Op{cmd(0x0F), cmd(0x08)})
}

func TestGotoPutIntPutString(t *testing.T) {
	d, c := newTestDev(t, 0)
	n := len(c.Ops())
	if err := d.Goto(2, 3); err != nil {
		t.Fatal(err)
	}
	equalOps(t, opsSince(c, n), []hd44780test.Op{cmd(0xC2)})

	if err := d.PutInt(-12); err != nil {
		t.Fatal(err)
	}
	if err := d.PutString("ab\x00cd"); err != nil {
		t.Fatal(err)
	}
	if got := c.Line(1); got != "  -12ab         " {
		t.Errorf("Line(1) = %q", got)
	}
}

func TestWrite(t *testing.T) {
	d, c := newTestDev(t, 0)
	n, err := fmt.Fprintf(d, "%d|%s", 42, "go")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Fprintf wrote %d bytes, want 5", n)
	}
	if got := c.Line(0); got != "42|go           " {
		t.Errorf("Line(0) = %q", got)
	}
}

func TestPrintfArgError(t *testing.T) {
	d, c := newTestDev(t, 0)
	err := d.Printf("ok%d", lcdfmt.Str("x"))
	var ae *lcdfmt.ArgError
	if !errors.As(err, &ae) {
		t.Fatalf("Printf error = %v, want *lcdfmt.ArgError", err)
	}
	if got := c.Line(0); got != "ok              " {
		t.Errorf("Line(0) = %q", got)
	}
}

func TestBacklightUnsupported(t *testing.T) {
	d, _ := newTestDev(t, 0)
	if err := d.Backlight(true); err == nil {
		t.Error("Backlight should fail on a bus without backlight")
	}
}

func TestDevHalt(t *testing.T) {
	d, c := newTestDev(t, 2)
	if d.halted {
		t.Error("device should not be halted initially")
	}
	n := len(c.Ops())
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	equalOps(t, opsSince(c, n), []hd44780test.Op{cmd(0x08)})

	if err := d.Clear(); err != errHalted {
		t.Errorf("Clear error = %v, want %v", err, errHalted)
	}
	if err := d.SetPosition(0, 0); err != errHalted {
		t.Error("SetPosition should fail when halted")
	}
	if err := d.PutChar('x'); err != errHalted {
		t.Error("PutChar should fail when halted")
	}
	if err := d.Printf("x"); err != errHalted {
		t.Error("Printf should fail when halted")
	}
	if _, err := d.Write([]byte("x")); err != errHalted {
		t.Error("Write should fail when halted")
	}
	if err := d.DefineGlyph(0, glyph.New()); err != errHalted {
		t.Error("DefineGlyph should fail when halted")
	}
	if err := d.Display(true, false, false); err != errHalted {
		t.Error("Display should fail when halted")
	}
	if err := d.Backlight(true); err != errHalted {
		t.Error("Backlight should fail when halted")
	}

	n = len(c.Ops())
	if err := d.Init(); err != nil {
		t.Fatalf("Init after Halt: %v", err)
	}
	// In 4-bit mode the first two bring-up nibbles pair into one 8-bit
	// function set.
	equalOps(t, opsSince(c, n), []hd44780test.Op{
		cmd(0x33), cmd(0x30), cmd(0x20),
		cmd(0x28), cmd(0x08), cmd(0x01), cmd(0x06), cmd(0x0C),
	})
	if err := d.PutChar('x'); err != nil {
		t.Errorf("PutChar after Init: %v", err)
	}
	if got := c.Line(0); got != "x               " {
		t.Errorf("Line(0) after Init = %q", got)
	}
}

func TestDefineGlyphNil(t *testing.T) {
	d, c := newTestDev(t, 1)
	n := len(c.Ops())
	if err := d.DefineGlyph(0, nil); err == nil {
		t.Error("DefineGlyph(0, nil) should fail")
	}
	if len(c.Ops()) != n {
		t.Error("DefineGlyph(0, nil) must not touch the bus")
	}
}

func TestDevString(t *testing.T) {
	d := &Dev{}
	want := "hd44780.Dev{16x2}"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

type failingBus struct {
	writes int
	limit  int
}

var errBus = errors.New("bus failure")

func (b *failingBus) WriteNibble(rs bool, n byte) error {
	if b.writes == b.limit {
		return errBus
	}
	b.writes++
	return nil
}

func (b *failingBus) ReadBusy() (bool, error) { return false, nil }

func TestBusErrorPropagates(t *testing.T) {
	for _, limit := range []int{0, 3, 6} {
		if _, err := newDev(&failingBus{limit: limit}, func(time.Duration) {}); !errors.Is(err, errBus) {
			t.Errorf("New with failure after %d nibbles: error = %v, want %v", limit, err, errBus)
		}
	}
}
