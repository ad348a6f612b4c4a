// Package shellhost runs a child command under a pseudo-terminal and
// adapts it to the host contract: pty output becomes Output events on the
// activity stream, and injected input is typed into the pty. It is the
// host the bridge embeds into when no real agent is linked in.
package shellhost

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

const readBufferSize = 4096

// ShellHost owns the child process and its pty.
type ShellHost struct {
	rt  *host.Runtime
	log logging.Logger

	command []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	ptmx *os.File

	stopOnce sync.Once
	done     chan struct{}
}

// New prepares a ShellHost for the given command line. An empty command
// falls back to $SHELL, then to /bin/sh.
func New(sessionID string, command []string, log logging.Logger) *ShellHost {
	if len(command) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		command = []string{shell}
	}
	return &ShellHost{
		rt:      host.NewRuntime(sessionID),
		log:     log,
		command: command,
		done:    make(chan struct{}),
	}
}

// Runtime returns the host surface the bridge attaches to.
func (s *ShellHost) Runtime() *host.Runtime { return s.rt }

// Start launches the child under a pty and begins streaming its output.
func (s *ShellHost) Start() error {
	cmd := exec.Command(s.command[0], s.command[1:]...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start %s under pty: %w", s.command[0], err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.ptmx = ptmx
	s.mu.Unlock()

	// Peer prompts are typed into the pty; the pty's echo flows back out
	// through the event stream, so every peer sees injected input.
	s.rt.OnInput(func(text string) {
		s.mu.Lock()
		f := s.ptmx
		s.mu.Unlock()
		if f == nil {
			return
		}
		if _, err := f.WriteString(text + "\r"); err != nil {
			s.log.Warn("write to pty", "error", err)
		}
	})

	s.rt.EmitHookStart("session")
	s.rt.EmitConsoleLog("info", fmt.Sprintf("started %s (pid %d)", s.command[0], cmd.Process.Pid))

	go s.readLoop(ptmx, cmd)
	return nil
}

func (s *ShellHost) readLoop(ptmx *os.File, cmd *exec.Cmd) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.rt.EmitOutput(chunk, false)
		}
		if err != nil {
			// A closed pty on child exit reads as EIO; not worth reporting.
			break
		}
	}

	err := cmd.Wait()
	if err != nil {
		s.rt.EmitConsoleLog("warn", fmt.Sprintf("child exited: %v", err))
	} else {
		s.rt.EmitConsoleLog("info", "child exited")
	}
	s.rt.EmitHookEnd("session", err == nil)
	close(s.done)
}

// Done is closed once the child has exited and its output is drained.
func (s *ShellHost) Done() <-chan struct{} { return s.done }

// Stop closes the pty and, if the child lingers, kills it. Idempotent.
func (s *ShellHost) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		ptmx := s.ptmx
		cmd := s.cmd
		s.mu.Unlock()

		if ptmx != nil {
			_ = ptmx.Close()
		}
		if cmd == nil || cmd.Process == nil {
			return
		}
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			_ = cmd.Process.Kill()
			<-s.done
		}
	})
}
