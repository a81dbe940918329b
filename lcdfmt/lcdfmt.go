package lcdfmt

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
)

// Sink receives rendered bytes one at a time, in order.
type Sink interface {
	PutChar(c byte) error
}

type byteSink struct {
	w io.ByteWriter
}

func (s byteSink) PutChar(c byte) error { return s.w.WriteByte(c) }

// ByteSink adapts an io.ByteWriter, such as *bytes.Buffer or *bufio.Writer,
// to a Sink.
func ByteSink(w io.ByteWriter) Sink {
	return byteSink{w: w}
}

// Fprintf renders format and args into s.
//
// Rendering stops at the first error, either from s or from an argument that
// is missing or of the wrong kind. Bytes already passed to s stay there.
func Fprintf(s Sink, format string, args ...Arg) error {
	p := printer{s: s, args: args}
	for i := 0; i < len(format) && p.err == nil; i++ {
		if format[i] != '%' {
			p.put(format[i])
			continue
		}
		var sp conv
		i = p.parse(format, i+1, &sp)
		if p.err != nil {
			break
		}
		if sp.verb == 0 {
			// The conversion ran off the end of the format: print the '%' and
			// back up so the scan sees the terminator again.
			p.put('%')
			i--
			continue
		}
		p.convert(&sp)
	}
	return p.err
}

// Sprintf renders format and args into a string. Control bytes are kept as
// they are.
func Sprintf(format string, args ...Arg) (string, error) {
	var b bytes.Buffer
	err := Fprintf(ByteSink(&b), format, args...)
	return b.String(), err
}

const (
	flagMinus = 1 << iota
	flagPlus
	flagSpace
	flagAlt
	flagZero
)

// length is the integer size selected by a length modifier.
type length uint8

const (
	lenDefault   length = iota // 16 bits
	lenLong                    // 32 bits, l j
	lenShortLong               // 24 bits, H T Z
	lenByte                    // 8 bits, hh
)

// conv is one parsed conversion. Width and precision are 8-bit counters and
// wrap on overflow.
type conv struct {
	flags   uint8
	width   uint8
	prec    uint8
	hasPrec bool
	size    length
	verb    byte
}

const digits = "0123456789abcdef"

type printer struct {
	s    Sink
	args []Arg
	next int
	err  error
}

func (p *printer) put(c byte) {
	if p.err != nil {
		return
	}
	p.err = p.s.PutChar(c)
}

func (p *printer) pad(n int, c byte) {
	for ; n > 0 && p.err == nil; n-- {
		p.put(c)
	}
}

// arg consumes the next argument.
func (p *printer) arg(verb byte) (Arg, bool) {
	if p.next >= len(p.args) {
		p.err = fmt.Errorf("%w for %%%c", ErrMissingArg, verb)
		return Arg{}, false
	}
	a := p.args[p.next]
	p.next++
	return a, true
}

// argOf consumes the next argument and checks it is usable by verb.
func (p *printer) argOf(verb byte, ok func(Arg) bool) (Arg, bool) {
	a, found := p.arg(verb)
	if !found {
		return a, false
	}
	if !ok(a) {
		p.err = &ArgError{Index: p.next - 1, Verb: verb, Got: a.kind}
		return a, false
	}
	return a, true
}

func isInteger(a Arg) bool { return a.integer() }
func isString(a Arg) bool  { return a.kind == KindString }
func isFloat(a Arg) bool   { return a.kind == KindFloat }

// starArg consumes an int argument for a '*' width or precision.
func (p *printer) starArg() (int, bool) {
	a, ok := p.argOf('*', isInteger)
	return int(int16(a.n)), ok
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parse fills sp from the bytes following a '%' at f[i:] and returns the
// index of the conversion character. sp.verb is 0 when the format ends
// before one.
func (p *printer) parse(f string, i int, sp *conv) int {
	at := func(i int) byte {
		if i < len(f) {
			return f[i]
		}
		return 0
	}

flags:
	for ; i < len(f); i++ {
		switch f[i] {
		case '-':
			sp.flags |= flagMinus
		case '+':
			sp.flags |= flagPlus
		case ' ':
			sp.flags |= flagSpace
		case '#':
			sp.flags |= flagAlt
		case '0':
			sp.flags |= flagZero
		default:
			break flags
		}
	}

	if at(i) == '*' {
		n, ok := p.starArg()
		if !ok {
			return i
		}
		if n < 0 {
			sp.flags |= flagMinus
			n = -n
		}
		sp.width = uint8(n)
		i++
	} else {
		for ; isDigit(at(i)); i++ {
			sp.width = sp.width*10 + f[i] - '0'
		}
	}

	if sp.flags&flagMinus != 0 {
		sp.flags &^= flagZero
	}

	if at(i) == '.' {
		i++
		if at(i) == '*' {
			n, ok := p.starArg()
			if !ok {
				return i
			}
			// A negative precision is taken as omitted.
			if n >= 0 {
				sp.prec = uint8(n)
				sp.hasPrec = true
			}
			i++
		} else {
			for ; isDigit(at(i)); i++ {
				sp.prec = sp.prec*10 + f[i] - '0'
			}
			sp.hasPrec = true
		}
	}

	switch at(i) {
	case 'h':
		i++
		if at(i) == 'h' {
			sp.size = lenByte
			i++
		}
	case 't', 'z':
		i++
	case 'H', 'T', 'Z':
		sp.size = lenShortLong
		i++
	case 'l', 'j':
		sp.size = lenLong
		i++
	}

	sp.verb = at(i)
	return i
}

func (p *printer) convert(sp *conv) {
	switch sp.verb {
	case '%':
		p.put('%')
	case 'c':
		p.char(sp)
	case 's', 'S':
		p.str(sp)
	case 'd', 'i', 'o', 'u', 'x', 'X', 'b', 'B', 'p', 'P':
		p.integer(sp)
	case 'f':
		p.float(sp)
	default:
		// Unknown conversions print nothing and consume nothing.
	}
}

func (p *printer) char(sp *conv) {
	a, ok := p.argOf(sp.verb, isInteger)
	if !ok {
		return
	}
	spaces := 0
	if sp.width > 1 {
		spaces = int(sp.width) - 1
	}
	if sp.flags&flagMinus == 0 {
		p.pad(spaces, ' ')
		spaces = 0
	}
	p.put(byte(a.n))
	p.pad(spaces, ' ')
}

func (p *printer) str(sp *conv) {
	a, ok := p.argOf(sp.verb, isString)
	if !ok {
		return
	}
	s := a.s
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	n := len(s)
	if sp.hasPrec && int(sp.prec) < n {
		n = int(sp.prec)
	}
	spaces := int(sp.width) - n
	if sp.flags&flagMinus == 0 {
		p.pad(spaces, ' ')
		spaces = 0
	}
	for i := 0; i < n; i++ {
		p.put(s[i])
	}
	p.pad(spaces, ' ')
}

// widen reads the bits of n selected by size, sign-extending when signed.
func widen(n int64, size length, signed bool) uint32 {
	switch size {
	case lenLong:
		return uint32(n)
	case lenByte:
		if signed {
			return uint32(int32(int8(n)))
		}
		return uint32(uint8(n))
	case lenShortLong:
		v := uint32(n) & 0xffffff
		if signed && v&0x800000 != 0 {
			v |= 0xff000000
		}
		return v
	}
	if signed {
		return uint32(int32(int16(n)))
	}
	return uint32(uint16(n))
}

func (p *printer) integer(sp *conv) {
	a, ok := p.argOf(sp.verb, isInteger)
	if !ok {
		return
	}

	verb := sp.verb
	signed := verb == 'd' || verb == 'i'
	v := widen(a.n, sp.size, signed)

	flags := sp.flags
	if !signed {
		flags &^= flagPlus | flagSpace
	}

	base := uint32(10)
	switch verb {
	case 'b', 'B':
		base = 2
	case 'o':
		base = 8
	case 'p', 'P':
		verb += 'x' - 'p'
		base = 16
	case 'x', 'X':
		base = 16
	}

	var sign byte
	switch {
	case signed && int32(v) < 0:
		// Unsigned negation keeps the most negative value intact.
		v = -v
		sign = '-'
	case flags&flagPlus != 0:
		sign = '+'
	case flags&flagSpace != 0:
		sign = ' '
	}

	prec := 1
	if sp.hasPrec {
		prec = int(sp.prec)
	}

	var buf [33]byte
	q := len(buf)
	prefix := 0
	if prec != 0 || v != 0 {
		for {
			d := digits[v%base]
			if verb == 'X' && d >= 'a' {
				d -= 'a' - 'A'
			}
			q--
			buf[q] = d
			v /= base
			if v == 0 {
				break
			}
		}
		if flags&flagAlt != 0 {
			switch verb {
			case 'o':
				if nd := len(buf) - q; buf[q] != '0' && prec <= nd {
					prec = nd + 1
				}
			case 'x', 'X', 'b', 'B':
				prefix = 2
			}
		}
	}
	nd := len(buf) - q

	signLen := 0
	if sign != 0 {
		signLen = 1
	}
	// Precision, like a zero-padded width, counts the sign and the prefix.
	zeros := prec - signLen - prefix - nd
	if flags&flagZero != 0 && !sp.hasPrec {
		if fill := int(sp.width) - signLen - prefix - nd; fill > zeros {
			zeros = fill
		}
	}
	if zeros < 0 {
		zeros = 0
	}
	spaces := int(sp.width) - signLen - prefix - zeros - nd

	if flags&flagMinus == 0 {
		p.pad(spaces, ' ')
		spaces = 0
	}
	if sign != 0 {
		p.put(sign)
	}
	if prefix != 0 {
		p.put('0')
		p.put(verb)
	}
	p.pad(zeros, '0')
	for ; q < len(buf); q++ {
		p.put(buf[q])
	}
	p.pad(spaces, ' ')
}

// float prints the integer part and prec fractional digits of a float,
// truncating rather than rounding the last digit.
func (p *printer) float(sp *conv) {
	a, ok := p.argOf(sp.verb, isFloat)
	if !ok {
		return
	}
	x := a.f
	if math.IsInf(x, 0) || math.IsNaN(x) {
		p.err = ErrNonFinite
		return
	}

	var sign byte
	switch {
	case x < 0:
		sign = '-'
		x = -x
	case sp.flags&flagPlus != 0:
		sign = '+'
	case sp.flags&flagSpace != 0:
		sign = ' '
	}

	// Scale x below 1, counting integer digits.
	i := 0
	for ; x >= 1; i++ {
		x /= 10
	}

	width := int(sp.width)
	prec := int(sp.prec)
	hasPrec := sp.hasPrec
	if !hasPrec && width == 0 {
		prec = 3
		hasPrec = true
	}
	w := prec + i
	if prec > 0 {
		w++
	}
	if sign != 0 {
		w++
	}
	if i == 0 {
		w++
	}
	if !hasPrec && width > w+1 {
		prec = width - (w + 1)
		w = width
	}

	switch {
	case sp.flags&flagMinus != 0:
		if sign != 0 {
			p.put(sign)
		}
	case sp.flags&flagZero != 0:
		if sign != 0 {
			p.put(sign)
		}
		p.pad(width-w, '0')
	default:
		p.pad(width-w, ' ')
		if sign != 0 {
			p.put(sign)
		}
	}

	if i == 0 {
		p.put('0')
	}
	for ; i > 0; i-- {
		p.put(nextDigit(&x))
	}
	if prec > 0 {
		p.put('.')
	}
	for j := 0; j < prec; j++ {
		p.put(nextDigit(&x))
	}

	if sp.flags&flagMinus != 0 {
		p.pad(width-w, ' ')
	}
}

// nextDigit shifts one decimal digit out of the fraction x.
func nextDigit(x *float64) byte {
	*x *= 10
	k := int(*x)
	if k > 9 {
		k = 9
	}
	*x -= float64(k)
	return '0' + byte(k)
}
