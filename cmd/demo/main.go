package main

import (
	"io"
	"log"
	"os"
	"time"

	xterm "golang.org/x/term"

	"pixelterm/internal/scene"
	"pixelterm/internal/term"
)

const (
	fallbackCols = 80
	fallbackRows = 24
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	cols, rows := fallbackCols, fallbackRows
	outFd := int(os.Stdout.Fd())
	if xterm.IsTerminal(outFd) {
		if w, h, err := xterm.GetSize(outFd); err == nil {
			cols, rows = w, h
		}
	}

	// Raw mode so a single q quits without Enter. Non-tty stdin (piped
	// runs) just renders until the pipe closes.
	quitCh := make(chan struct{})
	inFd := int(os.Stdin.Fd())
	if xterm.IsTerminal(inFd) {
		oldState, err := xterm.MakeRaw(inFd)
		if err != nil {
			log.Fatalf("raw mode: %v", err)
		}
		defer xterm.Restore(inFd, oldState)
	}
	go func() {
		buf := make([]byte, 16)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(quitCh)
				return
			}
			for _, b := range buf[:n] {
				if b == 'q' || b == 'Q' || b == 0x03 {
					close(quitCh)
					return
				}
			}
		}
	}()

	out := os.Stdout
	io.WriteString(out, term.EnableAltScreen())
	io.WriteString(out, term.HideCursor())
	io.WriteString(out, term.ClearScreen())
	defer func() {
		io.WriteString(out, term.ShowCursor())
		io.WriteString(out, term.DisableAltScreen())
	}()

	renderer := scene.NewRenderer(cols, rows, time.Now().UnixNano())
	ticker := time.NewTicker(time.Second / scene.TickRate)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-quitCh:
			return
		case <-ticker.C:
			frame, err := renderer.Frame(tick)
			if err != nil {
				log.Fatalf("render: %v", err)
			}
			tick++
			io.WriteString(out, term.Home())
			out.Write(frame)
		}
	}
}
