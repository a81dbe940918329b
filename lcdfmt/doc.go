// Package lcdfmt is a small printf engine for byte-oriented displays.
//
// It understands the C conversions d i o u x X b B p P c s S f and %, with
// the flags - + space # 0, a width and precision given literally or with *,
// and the length modifiers hh h H T Z t z l j. Integers default to 16 bits.
// %f truncates instead of rounding and has no exponent form.
// An integer precision includes the sign and any 0x or 0b prefix, so %.3d
// of -7 prints -07.
//
// Every rendered byte, padding included, goes through Sink.PutChar. A device
// sink that gives control bytes a meaning (newline, form feed) applies that
// meaning to rendered text as well.
//
// Arguments are typed: build them with Int, Uint, Long, Str, Float and Char.
//
//	lcdfmt.Fprintf(dev, "T=%3d%c %-6s", lcdfmt.Int(21), lcdfmt.Char('C'), lcdfmt.Str("ok"))
package lcdfmt
