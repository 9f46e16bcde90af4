package oracle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/chesslegends/internal/logger"
)

const (
	defaultDepth   = 14
	defaultTimeout = 8 * time.Second
)

// Engine drives one UCI engine process. Calls are serialized.
type Engine struct {
	log     *logger.Logger
	timeout time.Duration

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout *bufio.Reader
	skill  int
	// broken is set once the stream failed; the pool discards such engines.
	broken bool

	writeMu sync.Mutex
	stdin   io.Writer
}

var _ Oracle = (*Engine)(nil)

// NewEngine starts the engine binary at path and completes the UCI handshake.
func NewEngine(path string) (*Engine, error) {
	log := logger.Default().WithPrefix("stockfish")

	if path == "" {
		path = "stockfish"
	}

	log.Info("starting stockfish engine: %s", path)
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Error("failed to create stdin pipe: %v", err)
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("failed to create stdout pipe: %v", err)
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		log.Error("failed to start stockfish: %v", err)
		return nil, err
	}

	e := newEngine(log, stdout, stdin)
	e.cmd = cmd
	if err := e.init(); err != nil {
		log.Error("failed to initialize UCI: %v", err)
		_ = cmd.Process.Kill()
		return nil, err
	}

	log.Info("stockfish engine ready")
	return e, nil
}

// NewEngineIO speaks UCI over already connected streams.
func NewEngineIO(r io.Reader, w io.Writer) (*Engine, error) {
	e := newEngine(logger.Default().WithPrefix("uci"), r, w)
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine(log *logger.Logger, r io.Reader, w io.Writer) *Engine {
	return &Engine{
		log:     log,
		timeout: defaultTimeout,
		stdout:  bufio.NewReader(r),
		stdin:   w,
		skill:   -1,
	}
}

// Broken reports whether the engine's stream has failed.
func (e *Engine) Broken() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.broken
}

// SetTimeout bounds a single search.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.timeout = d
	}
}

func (e *Engine) init() error {
	e.log.Debug("initializing UCI protocol")
	if err := e.send("uci"); err != nil {
		return err
	}
	if _, err := e.waitFor("uciok", 2*time.Second); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	_, err := e.waitFor("readyok", 2*time.Second)
	return err
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_ = e.send("quit")
	if e.cmd == nil {
		return nil
	}

	e.log.Debug("closing stockfish engine")
	err := e.cmd.Wait()
	e.cmd = nil
	if err != nil {
		e.log.Debug("stockfish process exited: %v", err)
	}
	return err
}

// BestMove searches fen at the given strength.
func (e *Engine) BestMove(ctx context.Context, fen string, s Strength) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	depth := s.Depth
	if depth <= 0 {
		depth = defaultDepth
	}
	log := e.log.WithField("depth", depth)
	start := time.Now()

	if s.SkillLevel > 0 && s.SkillLevel != e.skill {
		if err := e.send(fmt.Sprintf("setoption name Skill Level value %d", s.SkillLevel)); err != nil {
			return Evaluation{}, err
		}
		e.skill = s.SkillLevel
	}
	for _, cmd := range []string{"ucinewgame", "position fen " + fen, fmt.Sprintf("go depth %d", depth)} {
		if err := e.send(cmd); err != nil {
			log.Error("failed to send %q: %v", cmd, err)
			e.broken = true
			return Evaluation{}, err
		}
	}

	// Cancellation and the timeout both stop the search. The engine still answers with
	// bestmove, which is read and discarded so the next request starts on a clean stream.
	stop := context.AfterFunc(ctx, func() { _ = e.send("stop") })
	defer stop()
	var timedOut atomic.Bool
	timer := time.AfterFunc(e.timeout, func() {
		timedOut.Store(true)
		_ = e.send("stop")
	})
	defer timer.Stop()

	fields := strings.Fields(fen)
	blackToMove := len(fields) > 1 && fields[1] == "b"
	var best Evaluation
	for {
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			log.Error("failed to read from stockfish: %v", err)
			e.broken = true
			return Evaluation{}, err
		}
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "info") {
			if v, mate, ok := parseScore(line); ok {
				if blackToMove {
					v = -v
				}
				if mate {
					best.Mate, best.CP = v, mateCP(v)
				} else {
					best.Mate, best.CP = 0, v
				}
			}
			continue
		}
		if !strings.HasPrefix(line, "bestmove") {
			continue
		}

		if err := ctx.Err(); err != nil {
			log.Debug("search cancelled: %v", err)
			return Evaluation{}, err
		}
		if timedOut.Load() {
			log.Error("evaluation timed out after %v, discarding %q", e.timeout, line)
			return Evaluation{}, ErrTimeout
		}
		parts := strings.Fields(line)
		if len(parts) < 2 || parts[1] == "(none)" || parts[1] == "0000" {
			return Evaluation{}, ErrNoLegalMove
		}
		best.BestMove = parts[1]
		log.Debug("evaluation completed in %v: cp=%d mate=%d bestmove=%s", time.Since(start), best.CP, best.Mate, best.BestMove)
		return best, nil
	}
}

func mateCP(mate int) int {
	if mate < 0 {
		return -(10000 + mate*10)
	}
	return 10000 - mate*10
}

// parseScore reads "score cp N" or "score mate N" from an info line, from the side to
// move's perspective.
func parseScore(line string) (v int, mate, ok bool) {
	parts := strings.Fields(line)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "score" {
			continue
		}
		n, err := strconv.Atoi(parts[i+2])
		if err != nil {
			return 0, false, false
		}
		switch parts[i+1] {
		case "cp":
			return n, false, true
		case "mate":
			return n, true, true
		}
	}
	return 0, false, false
}

func (e *Engine) send(cmd string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	_, err := io.WriteString(e.stdin, cmd+"\n")
	return err
}

func (e *Engine) waitFor(marker string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			e.log.Error("timeout waiting for %s", marker)
			return "", fmt.Errorf("timeout waiting for %s", marker)
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return "", err
		}
		if strings.Contains(line, marker) {
			return line, nil
		}
	}
}
