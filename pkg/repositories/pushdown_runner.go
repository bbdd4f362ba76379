package repositories

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
)

// PushdownRunner executes push-down aggregation queries against the row store.
// Every selected column is expected to be text; NULL scans to a nil pointer.
type PushdownRunner struct {
	db     database.Querier
	logger *zap.Logger
}

// NewPushdownRunner creates a runner over the given pool or transaction.
func NewPushdownRunner(db database.Querier, logger *zap.Logger) *PushdownRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushdownRunner{db: db, logger: logger.Named("pushdown-runner")}
}

var _ insights.SQLRunner = (*PushdownRunner)(nil)

// QueryText runs query and returns every row as nullable text cells.
func (r *PushdownRunner) QueryText(ctx context.Context, query string, args ...any) ([][]*string, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Debug("Push-down query failed",
			zap.String("sql", logging.SanitizeQuery(query)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to run push-down query: %w", err)
	}
	defer rows.Close()

	width := len(rows.FieldDescriptions())
	var out [][]*string
	for rows.Next() {
		cells := make([]*string, width)
		dest := make([]any, width)
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan push-down row: %w", err)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push-down rows: %w", err)
	}

	r.logger.Debug("Push-down query",
		zap.String("sql", logging.SanitizeQuery(query)),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
