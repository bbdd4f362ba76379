package insights

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Executor runs a plan with the push-down strategy and recomputes it in memory when
// push-down fails. Strategies never run concurrently for the same plan.
type Executor struct {
	pushdown Strategy
	fallback Strategy
	logger   *zap.Logger
}

// NewExecutor creates an Executor. pushdown may be nil, in which case every plan is
// answered by the fallback strategy.
func NewExecutor(pushdown, fallback Strategy, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		pushdown: pushdown,
		fallback: fallback,
		logger:   logger.Named("executor"),
	}
}

// Run executes the plan. A nil result means neither strategy produced an answer.
// An error is returned only when the fallback strategy itself fails.
func (e *Executor) Run(ctx context.Context, plan Plan) (*Result, error) {
	if e.pushdown != nil {
		res, err := e.pushdown.Execute(ctx, plan)
		if err == nil {
			if res != nil {
				res.Strategy = e.pushdown.Name()
			}
			return res, nil
		}
		e.logger.Warn("Push-down aggregation failed, recomputing in memory",
			zap.String("file_id", plan.FileID.String()),
			zap.String("intent", string(plan.Intent)),
			zap.String("strategy", e.pushdown.Name()),
			zap.Error(err))
	}

	if e.fallback == nil {
		return nil, fmt.Errorf("no fallback strategy configured")
	}
	res, err := e.fallback.Execute(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s for file %s: %w", plan.Intent, plan.FileID, err)
	}
	if res != nil {
		res.Strategy = e.fallback.Name()
	}
	return res, nil
}
