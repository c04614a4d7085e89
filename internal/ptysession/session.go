// Package ptysession owns one child process attached to a pseudo-terminal.
//
// A dedicated reader goroutine drains the pty into a bounded channel so the
// render loop only ever performs non-blocking receives. Exactly one owner
// holds a Session and must call Close on every exit path.
package ptysession

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"pkt.systems/pslog"
)

const (
	// ReadChunkSize is the largest single read from the pty master.
	ReadChunkSize = 1024
	// DefaultDrainLimit bounds how many bytes one Poll returns.
	DefaultDrainLimit = 16 * 1024
	// DefaultQueueDepth is the chunk channel capacity. A full queue stalls
	// the reader, which in turn stalls the child on its pty writes.
	DefaultQueueDepth = 256
	// DefaultShell runs every command line.
	DefaultShell = "sh"
)

// ErrSpawn reports that the pty or the child could not be created.
var ErrSpawn = errors.New("spawn failed")

// Size is a pty viewport in character cells.
type Size struct {
	Cols int
	Rows int
}

func (s Size) winsize() *pty.Winsize {
	return &pty.Winsize{Cols: clampUint16(s.Cols), Rows: clampUint16(s.Rows)}
}

type options struct {
	shell      string
	dir        string
	env        []string
	drainLimit int
	queueDepth int
	log        pslog.Logger
}

// Option customises Open.
type Option func(*options)

// WithShell replaces the shell used as "<shell> -c argv".
func WithShell(shell string) Option {
	return func(o *options) {
		if shell != "" {
			o.shell = shell
		}
	}
}

// WithDir sets the child's working directory. The default is the current
// directory of this process.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(o *options) { o.env = append(o.env, env...) }
}

// WithDrainLimit sets the per-Poll byte cap.
func WithDrainLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.drainLimit = n
		}
	}
}

// WithQueueDepth sets the chunk channel capacity.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log pslog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Session is a running child bound to a pty.
type Session struct {
	ptmx *os.File
	pid  int

	chunks     chan []byte
	quit       chan struct{}
	readerDone chan struct{}

	drainLimit int
	reaped     bool
	exitCode   int
	reported   bool
	closed     bool

	log pslog.Logger
}

// Open spawns "<shell> -c argv" on a new pty of the given size. A command
// that does not exist still spawns; the shell reports it as output.
func Open(size Size, argv string, opts ...Option) (*Session, error) {
	o := options{
		shell:      DefaultShell,
		drainLimit: DefaultDrainLimit,
		queueDepth: DefaultQueueDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: working directory: %v", ErrSpawn, err)
		}
		o.dir = wd
	}

	cmd := exec.Command(o.shell, "-c", argv)
	cmd.Dir = o.dir
	cmd.Env = append(envWithout(os.Environ(), "TERM"), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, o.env...)

	ptmx, err := pty.StartWithSize(cmd, size.winsize())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, argv, err)
	}

	s := &Session{
		ptmx:       ptmx,
		pid:        cmd.Process.Pid,
		chunks:     make(chan []byte, o.queueDepth),
		quit:       make(chan struct{}),
		readerDone: make(chan struct{}),
		drainLimit: o.drainLimit,
		log:        o.log,
	}
	// The session reaps the child itself with wait4; drop the os.Process
	// handle so nothing else waits on it.
	_ = cmd.Process.Release()

	go s.read()
	if s.log != nil {
		s.log.Debug("pty session started", "pid", s.pid, "argv", argv, "cols", size.Cols, "rows", size.Rows)
	}
	return s, nil
}

func (s *Session) read() {
	defer close(s.readerDone)
	defer close(s.chunks)
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.chunks <- chunk:
			case <-s.quit:
				return
			}
		}
		if err != nil {
			// EIO once the slave side closes; any error ends the stream.
			return
		}
	}
}

// Pid returns the child's process id.
func (s *Session) Pid() int {
	return s.pid
}

// Poll drains queued output without blocking. It stops once more than the
// drain limit has accumulated; the remainder is returned by later calls.
// The first call that observes the child's exit appends an exit marker.
func (s *Session) Poll() []byte {
	var buf []byte
drain:
	for len(buf) <= s.drainLimit {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				break drain
			}
			buf = append(buf, chunk...)
		default:
			break drain
		}
	}

	if code, exited := s.tryReap(); exited && !s.reported {
		s.reported = true
		buf = append(buf, fmt.Sprintf("[process exited with %d]", code)...)
		if s.log != nil {
			s.log.Debug("pty child exited", "pid", s.pid, "code", code)
		}
	}
	return buf
}

// Exited reports the child's exit status if it has been observed.
func (s *Session) Exited() (int, bool) {
	return s.tryReap()
}

// Resize updates the pty window size.
func (s *Session) Resize(size Size) error {
	if s.closed {
		return nil
	}
	return pty.Setsize(s.ptmx, size.winsize())
}

// Close tears the session down: close the pty master, kill the child's
// process group, reap the child, then join the reader.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.ptmx.Close()

	// The child leads its own session, so its pgid is its pid. The group
	// outlives the child when it left background jobs behind.
	if err := unix.Kill(-s.pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) && !s.reaped {
		_ = unix.Kill(s.pid, unix.SIGKILL)
	}
	if !s.reaped {
		s.reap(0)
	}

	close(s.quit)
	<-s.readerDone

	if s.log != nil {
		s.log.Debug("pty session closed", "pid", s.pid, "code", s.exitCode)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return closeErr
	}
	return nil
}

func (s *Session) tryReap() (int, bool) {
	if !s.reaped {
		s.reap(unix.WNOHANG)
	}
	return s.exitCode, s.reaped
}

func (s *Session) reap(flags int) {
	var status unix.WaitStatus
	for {
		pid, err := unix.Wait4(s.pid, &status, flags, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			// ECHILD: already reaped elsewhere; nothing left to wait for.
			if errors.Is(err, unix.ECHILD) {
				s.reaped = true
				s.exitCode = -1
			}
			return
		}
		if pid == 0 {
			return
		}
		break
	}
	s.reaped = true
	switch {
	case status.Exited():
		s.exitCode = status.ExitStatus()
	case status.Signaled():
		s.exitCode = 128 + int(status.Signal())
	default:
		s.exitCode = -1
	}
}

func clampUint16(n int) uint16 {
	if n < 1 {
		return 1
	}
	if n > 0xffff {
		return 0xffff
	}
	return uint16(n)
}
