package game

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/nfc"
)

var (
	ErrStopped = errors.New("runtime stopped")
	// ErrPanicked wraps a panic raised inside a Do request.
	ErrPanicked = errors.New("runtime request panicked")
)

type RuntimeOptions struct {
	// Frame is the period of scene stepping and tag polling.
	Frame time.Duration
	// CheckInterval is the period of the reset check.
	CheckInterval time.Duration
	// Ephemeral selects the ledger-less top-up spawner.
	Ephemeral bool
	Tags      nfc.Reader
	Logger    *logx.Logger
}

type op struct {
	fn  func(*Engine) error
	res chan error
}

// Runtime owns an Engine and drives it from a single goroutine: frames,
// reset checks and outside requests are all serialized through Run.
type Runtime struct {
	engine *Engine
	opts   RuntimeOptions
	poller *nfc.Poller
	ops    chan op
	done   chan struct{}
}

func NewRuntime(e *Engine, opts RuntimeOptions) *Runtime {
	if opts.Frame <= 0 {
		opts.Frame = time.Second / 60
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 60 * time.Second
	}
	r := &Runtime{
		engine: e,
		opts:   opts,
		ops:    make(chan op),
		done:   make(chan struct{}),
	}
	if opts.Tags != nil {
		r.poller = nfc.NewPoller(opts.Tags, opts.Logger)
	}
	return r
}

// Run starts the engine and loops until ctx is done. The ledger is flushed
// on the way out.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.done)
	log := r.opts.Logger

	if !r.opts.Ephemeral {
		if err := r.engine.Start(); err != nil {
			log.Error("engine_start_failed", logx.Fields{"error": err})
		}
	}

	frames := time.NewTicker(r.opts.Frame)
	defer frames.Stop()
	checks := time.NewTicker(r.opts.CheckInterval)
	defer checks.Stop()

	log.Info("runtime_started", logx.Fields{
		"frame_ms":       r.opts.Frame.Milliseconds(),
		"check_interval": r.opts.CheckInterval.String(),
		"ephemeral":      r.opts.Ephemeral,
	})

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			if err := r.engine.Flush(); err != nil {
				log.Error("ledger_flush_failed", logx.Fields{"error": err})
			}
			log.Info("runtime_stopped", nil)
			return nil
		case now := <-frames.C:
			dt := now.Sub(last)
			last = now
			r.frame(ctx, dt)
		case <-checks.C:
			if !r.opts.Ephemeral {
				r.engine.Tick()
			}
		case o := <-r.ops:
			o.res <- r.dispatch(o.fn)
		}
	}
}

// dispatch runs fn on the engine and returns a panic as ErrPanicked.
func (r *Runtime) dispatch(fn func(*Engine) error) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		r.opts.Logger.Error("runtime_request_panic", logx.Fields{
			"panic": fmt.Sprint(rec),
			"stack": string(debug.Stack()),
		})
		err = fmt.Errorf("%w: %v", ErrPanicked, rec)
	}()
	return fn(r.engine)
}

func (r *Runtime) frame(ctx context.Context, dt time.Duration) {
	r.engine.Step(dt)
	if r.opts.Ephemeral {
		r.engine.TopUp()
	}
	if r.poller == nil {
		return
	}
	if tag, ok := r.poller.Poll(ctx); ok {
		_, _ = r.engine.ScanTag(tag)
		r.poller.Reset()
	}
}

// Do runs fn on the loop goroutine and returns its error. It fails with
// ErrStopped once Run has returned.
func (r *Runtime) Do(ctx context.Context, fn func(*Engine) error) error {
	o := op{fn: fn, res: make(chan error, 1)}
	select {
	case r.ops <- o:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (r *Runtime) Done() <-chan struct{} { return r.done }
