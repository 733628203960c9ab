// Package server streams rendered frames to terminals over SSH. Every
// session gets its own scene renderer, so concurrent viewers never share a
// destination surface or encoder.
package server

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"

	"pixelterm/internal/scene"
	"pixelterm/internal/term"
)

// Server wraps the SSH listener and per-session render loops.
type Server struct {
	addr    string
	hostKey string
}

// New creates a server bound to the given address.
func New(addr, hostKey string) *Server {
	return &Server{addr: addr, hostKey: hostKey}
}

// Start begins listening for SSH connections. Blocks.
func (s *Server) Start() error {
	srv := &ssh.Server{
		Addr: s.addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}

	if err := srv.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}

	log.Printf("SSH server listening on %s", s.addr)
	return srv.ListenAndServe()
}

func (s *Server) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	user := sess.User()
	if user == "" {
		user = "anonymous"
	}
	log.Printf("Viewer connected: %s", user)
	defer log.Printf("Viewer disconnected: %s", user)

	termW := ptyReq.Window.Width
	termH := ptyReq.Window.Height
	var termMu sync.Mutex

	renderer := scene.NewRenderer(termW, termH, time.Now().UnixNano())

	io.WriteString(sess, term.EnableAltScreen())
	io.WriteString(sess, term.HideCursor())
	io.WriteString(sess, term.ClearScreen())
	defer func() {
		io.WriteString(sess, term.ShowCursor())
		io.WriteString(sess, term.DisableAltScreen())
	}()

	quitCh := make(chan struct{})

	// Goroutine: read input, quit on q / Ctrl-C
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				close(quitCh)
				return
			}
			if wantsQuit(buf[:n]) {
				close(quitCh)
				return
			}
		}
	}()

	// Goroutine: track window resizes
	go func() {
		for win := range winCh {
			termMu.Lock()
			termW = win.Width
			termH = win.Height
			termMu.Unlock()
		}
	}()

	ticker := time.NewTicker(time.Second / scene.TickRate)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-quitCh:
			return
		case <-sess.Context().Done():
			return
		case <-ticker.C:
			termMu.Lock()
			w, h := termW, termH
			termMu.Unlock()
			renderer.Resize(w, h)

			frame, err := renderer.Frame(tick)
			if err != nil {
				log.Printf("render for %s: %v", user, err)
				return
			}
			tick++

			if _, err := io.WriteString(sess, term.Home()); err != nil {
				return
			}
			if _, err := sess.Write(frame); err != nil {
				return
			}
		}
	}
}

// wantsQuit reports whether the raw input contains a quit key.
func wantsQuit(data []byte) bool {
	for _, b := range data {
		switch b {
		case 'q', 'Q', 0x03: // q, Ctrl-C
			return true
		}
	}
	return false
}
