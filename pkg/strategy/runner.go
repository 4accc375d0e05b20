package strategy

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Outcome is one strategy's contribution to a recall.
type Outcome struct {
	Strategy string
	Memories []*storage.Memory
	Err      error
}

// Runner fans a query out across all registered strategies concurrently.
// Each strategy gets its own time budget; slow or failing strategies are
// reported in their Outcome and never block the others.
type Runner struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewRunner creates a runner. timeout is the per-strategy budget; a
// non-positive value means strategies run under the caller's context alone.
func NewRunner(strategies []Strategy, timeout time.Duration, logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{
		strategies: strategies,
		timeout:    timeout,
		logger:     logger,
	}
}

// Strategies returns the registered strategies in execution order.
func (r *Runner) Strategies() []Strategy {
	return r.strategies
}

// Run executes all strategies concurrently and collects their outcomes. It
// returns one Outcome per strategy, in registration order. Run itself only
// fails when the caller's context expires before collection finishes; in
// that case the outcomes gathered so far are still returned.
func (r *Runner) Run(ctx context.Context, query string, scope Scope, limit int) ([]Outcome, error) {
	return r.run(ctx, query, scope, limit, r.strategies)
}

// RunOnly executes just the named strategies.
func (r *Runner) RunOnly(ctx context.Context, query string, scope Scope, limit int, names ...string) ([]Outcome, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []Strategy
	for _, s := range r.strategies {
		if wanted[s.Name()] {
			selected = append(selected, s)
		}
	}
	return r.run(ctx, query, scope, limit, selected)
}

func (r *Runner) run(ctx context.Context, query string, scope Scope, limit int, strategies []Strategy) ([]Outcome, error) {
	type indexed struct {
		pos     int
		outcome Outcome
	}

	results := make(chan indexed, len(strategies))

	for i, s := range strategies {
		go func(pos int, s Strategy) {
			runCtx := ctx
			cancel := context.CancelFunc(func() {})
			if r.timeout > 0 {
				runCtx, cancel = context.WithTimeout(ctx, r.timeout)
			}
			defer cancel()

			start := time.Now()
			memories, err := s.Search(runCtx, query, scope, limit)
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				err = ErrTimeout
			}

			if err != nil {
				r.logger.WithFields(logrus.Fields{
					"strategy": s.Name(),
					"elapsed":  time.Since(start).String(),
					"error":    err.Error(),
				}).Warn("recall strategy failed")
			} else {
				r.logger.WithFields(logrus.Fields{
					"strategy": s.Name(),
					"elapsed":  time.Since(start).String(),
					"found":    len(memories),
				}).Debug("recall strategy finished")
			}

			results <- indexed{pos: pos, outcome: Outcome{
				Strategy: s.Name(),
				Memories: memories,
				Err:      err,
			}}
		}(i, s)
	}

	outcomes := make([]Outcome, len(strategies))
	collected := 0
	for collected < len(strategies) {
		select {
		case res := <-results:
			outcomes[res.pos] = res.outcome
			collected++
		case <-ctx.Done():
			// Mark everything still running as timed out so the caller
			// sees a complete outcome list.
			for i, s := range strategies {
				if outcomes[i].Strategy == "" {
					outcomes[i] = Outcome{Strategy: s.Name(), Err: ErrTimeout}
				}
			}
			return outcomes, ctx.Err()
		}
	}

	return outcomes, nil
}
