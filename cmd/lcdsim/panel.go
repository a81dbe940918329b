package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/devices/v3/hd44780"
	"periph.io/x/devices/v3/hd44780/hd44780test"
	"periph.io/x/devices/v3/hd44780/lcdfmt"
)

const (
	originX = 2
	originY = 1
)

var (
	frameStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	lcdStyle    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreenYellow)
	cursorStyle = lcdStyle.Reverse(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errorStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// panel draws the controller's DDRAM and feeds keys to the driver.
type panel struct {
	dev  *hd44780.Dev
	ctrl *hd44780test.Controller
	err  error
}

// cellRune maps a DDRAM byte to what the panel shows for it.
func cellRune(c byte) rune {
	switch {
	case c < 0x10:
		return '▒' // custom glyph slot
	case c < 0x20 || c >= 0x7F:
		return '?'
	}
	return rune(c)
}

func (p *panel) draw(s tcell.Screen) {
	// Frame
	for x := 0; x < hd44780.Cols+2; x++ {
		s.SetContent(originX+x, originY, '─', nil, frameStyle)
		s.SetContent(originX+x, originY+hd44780.Rows+1, '─', nil, frameStyle)
	}
	for y := 0; y < hd44780.Rows+2; y++ {
		s.SetContent(originX, originY+y, '│', nil, frameStyle)
		s.SetContent(originX+hd44780.Cols+1, originY+y, '│', nil, frameStyle)
	}
	s.SetContent(originX, originY, '┌', nil, frameStyle)
	s.SetContent(originX+hd44780.Cols+1, originY, '┐', nil, frameStyle)
	s.SetContent(originX, originY+hd44780.Rows+1, '└', nil, frameStyle)
	s.SetContent(originX+hd44780.Cols+1, originY+hd44780.Rows+1, '┘', nil, frameStyle)

	on, cursor, blink := p.ctrl.DisplayOn()
	crow, ccol := p.ctrl.Cursor()
	for row := 0; row < hd44780.Rows; row++ {
		line := p.ctrl.Line(row)
		for col := 0; col < hd44780.Cols; col++ {
			r := cellRune(line[col])
			if !on {
				r = ' '
			}
			style := lcdStyle
			if on && (cursor || blink) && int(crow) == row && int(ccol) == col {
				style = cursorStyle
			}
			s.SetContent(originX+1+col, originY+1+row, r, nil, style)
		}
	}

	status := fmt.Sprintf("row %d col %-2d  polls %d", crow, ccol, p.ctrl.Polls())
	drawText(s, originX, originY+hd44780.Rows+3, status, statusStyle)
	if p.err != nil {
		drawText(s, originX, originY+hd44780.Rows+4, p.err.Error(), errorStyle)
	}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// handleKey sends a key to the display. It returns false when the panel
// should close.
func (p *panel) handleKey(ev *tcell.EventKey) bool {
	var c byte
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		c = '\n'
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		c = '\b'
	case tcell.KeyCtrlL:
		c = '\f'
	case tcell.KeyRune:
		r := ev.Rune()
		if r < 0x20 || r > 0x7E {
			return true
		}
		c = byte(r)
	default:
		return true
	}
	p.err = p.dev.PutChar(c)
	return true
}

// parseArgs turns command line words into Printf arguments.
func parseArgs(words []string) []lcdfmt.Arg {
	args := make([]lcdfmt.Arg, 0, len(words))
	for _, w := range words {
		args = append(args, parseArg(w))
	}
	return args
}

func parseArg(w string) lcdfmt.Arg {
	if len(w) == 3 && w[0] == '\'' && w[2] == '\'' {
		return lcdfmt.Char(w[1])
	}
	if n, err := strconv.ParseInt(w, 0, 16); err == nil {
		return lcdfmt.Int(int16(n))
	}
	if n, err := strconv.ParseInt(w, 0, 32); err == nil {
		return lcdfmt.Long(int32(n))
	}
	if strings.ContainsRune(w, '.') {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return lcdfmt.Float(f)
		}
	}
	return lcdfmt.Str(w)
}

// unescape interprets Go string escapes in s.
func unescape(s string) (string, error) {
	return strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
}
