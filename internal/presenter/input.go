package presenter

import (
	"context"
	"os"
	"sync"

	"golang.org/x/term"

	"rcrd/internal/session"
)

// Keyboard reads single keystrokes from a terminal in raw mode and turns
// them into session commands. When the input is not a terminal the reader
// is inert and the command channel simply never delivers.
type Keyboard struct {
	in       *os.File
	commands chan session.Command

	mu       sync.Mutex
	oldState *term.State
}

// NewKeyboard wraps in, normally os.Stdin.
func NewKeyboard(in *os.File) *Keyboard {
	return &Keyboard{
		in:       in,
		commands: make(chan session.Command, 8),
	}
}

// Commands delivers decoded commands. Closed when Run returns.
func (k *Keyboard) Commands() <-chan session.Command {
	return k.commands
}

// Run switches the terminal to raw mode and reads until ctx is cancelled
// or input closes. The terminal state is restored before returning.
func (k *Keyboard) Run(ctx context.Context) error {
	defer close(k.commands)

	fd := int(k.in.Fd())
	if !term.IsTerminal(fd) {
		<-ctx.Done()
		return nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	k.mu.Lock()
	k.oldState = oldState
	k.mu.Unlock()
	defer k.Restore()

	buf := make([]byte, 1)
	for {
		n, err := k.in.Read(buf)
		if err != nil {
			return nil
		}
		if n == 0 {
			continue
		}
		cmd, ok := DecodeKey(buf[0])
		if !ok {
			continue
		}
		select {
		case k.commands <- cmd:
		case <-ctx.Done():
			return nil
		default:
			// The session loop owns pacing; drop rather than block input.
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

// Restore puts the terminal back into its pre-raw state. Safe to call more
// than once and while Run is still blocked in a read; the session teardown
// path calls it so the shell never inherits raw mode.
func (k *Keyboard) Restore() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.oldState == nil {
		return
	}
	_ = term.Restore(int(k.in.Fd()), k.oldState)
	k.oldState = nil
}

// DecodeKey maps a keystroke to a session command. Unbound keys are ignored.
func DecodeKey(b byte) (session.Command, bool) {
	switch b {
	case 'q', 'Q', 0x1b, 0x03: // q, Esc, Ctrl-C (raw mode swallows the signal)
		return session.CommandStop, true
	case 'm', 'M':
		return session.CommandToggleMic, true
	case 'b', 'B':
		return session.CommandMark, true
	default:
		return 0, false
	}
}
