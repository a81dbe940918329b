// lcdsim runs the HD44780 driver against a software controller and shows the
// result in a terminal.
//
// Usage:
//
//	lcdsim [flags] [format [args...]]
//
// The optional format is rendered with Printf before the panel opens.
// Arguments that parse as integers become 16-bit ints (32-bit longs when
// they do not fit), arguments with a decimal point become floats, 'c' is a
// char and anything else a string. Escapes such as \n and \f in the format
// are interpreted.
//
// In the panel, printable keys are sent with PutChar, Enter sends '\n',
// Backspace sends '\b' and Ctrl-L sends '\f'. Esc or Ctrl-C quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"periph.io/x/devices/v3/hd44780"
	"periph.io/x/devices/v3/hd44780/hd44780test"
)

var (
	busyPolls = flag.Int("busy", 1, "Busy flag reads reported after each write")
	plain     = flag.Bool("plain", false, "Print the display contents and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	ctrl := hd44780test.New()
	ctrl.BusyPolls = *busyPolls
	dev, err := hd44780.New(ctrl)
	if err != nil {
		log.Fatalf("lcdsim: %v", err)
	}

	if flag.NArg() > 0 {
		format, err := unescape(flag.Arg(0))
		if err != nil {
			log.Fatalf("lcdsim: format: %v", err)
		}
		if err := dev.Printf(format, parseArgs(flag.Args()[1:])...); err != nil {
			log.Fatalf("lcdsim: %v", err)
		}
	}

	if *plain {
		fmt.Fprintln(os.Stdout, ctrl.Lines())
		return
	}
	if err := run(dev, ctrl); err != nil {
		log.Fatalf("lcdsim: %v", err)
	}
}

func run(dev *hd44780.Dev, ctrl *hd44780test.Controller) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	p := &panel{dev: dev, ctrl: ctrl}
	for {
		screen.Clear()
		p.draw(screen)
		screen.Show()

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !p.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case nil:
			return nil
		}
	}
}
