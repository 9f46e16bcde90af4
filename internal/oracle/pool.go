package oracle

import (
	"context"
	"sync"

	"github.com/vytor/chesslegends/internal/logger"
)

// EnginePool manages a fixed set of reusable engines.
type EnginePool struct {
	engines chan *Engine
	mu      sync.Mutex
	closed  bool
	path    string
	log     *logger.Logger
}

var _ Oracle = (*EnginePool)(nil)

// NewEnginePool starts size engines from path.
func NewEnginePool(path string, size int) (*EnginePool, error) {
	if size <= 0 {
		size = 2
	}
	pool := newPool(size)
	pool.path = path

	pool.log.Info("initializing engine pool with %d engines", size)
	for i := 0; i < size; i++ {
		engine, err := NewEngine(path)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.engines <- engine
	}
	pool.log.Info("engine pool ready")
	return pool, nil
}

// PoolOf wraps already started engines.
func PoolOf(engines ...*Engine) *EnginePool {
	pool := newPool(len(engines))
	for _, e := range engines {
		pool.engines <- e
	}
	return pool
}

func newPool(size int) *EnginePool {
	return &EnginePool{
		engines: make(chan *Engine, size),
		log:     logger.Default().WithPrefix("stockfish-pool"),
	}
}

// Acquire gets an engine from the pool, blocking if none are available.
func (p *EnginePool) Acquire(ctx context.Context) (*Engine, error) {
	select {
	case engine, ok := <-p.engines:
		if !ok {
			return nil, ErrPoolClosed
		}
		return engine, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an engine to the pool. A broken engine is closed and, for pools
// started from a binary, replaced by a fresh process.
func (p *EnginePool) Release(engine *Engine) {
	if engine == nil {
		return
	}
	if engine.Broken() {
		_ = engine.Close()
		engine = p.replacement()
		if engine == nil {
			return
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		engine.Close()
		return
	}
	select {
	case p.engines <- engine:
	default:
		engine.Close()
	}
}

func (p *EnginePool) replacement() *Engine {
	if p.path == "" {
		p.log.Warn("dropping broken engine, %d left", len(p.engines))
		return nil
	}
	engine, err := NewEngine(p.path)
	if err != nil {
		p.log.Error("failed to replace broken engine: %v", err)
		return nil
	}
	return engine
}

// BestMove acquires an engine, searches and releases it back.
func (p *EnginePool) BestMove(ctx context.Context, fen string, s Strength) (Evaluation, error) {
	engine, err := p.Acquire(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	defer p.Release(engine)

	return engine.BestMove(ctx, fen, s)
}

// Close shuts down all idle engines. Engines still in use are closed on Release.
func (p *EnginePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	p.log.Info("closing engine pool")
	close(p.engines)
	for engine := range p.engines {
		engine.Close()
	}
}

// Available returns how many engines are currently idle.
func (p *EnginePool) Available() int {
	return len(p.engines)
}
