package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/retry"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/workpool"
)

// FileCatalog lists files and their columns.
type FileCatalog interface {
	GetFile(ctx context.Context, fileID uuid.UUID) (*models.FileInfo, error)
	ListColumns(ctx context.Context, fileID uuid.UUID) ([]string, error)
	ListFilesInProject(ctx context.Context, projectID uuid.UUID) ([]models.FileInfo, error)
}

// ProfileProvider returns a cached or freshly built profile. A nil profile without an
// error means none is available.
type ProfileProvider interface {
	GetOrBuildFileProfile(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error)
}

// Engine answers questions over one file or every file of a project.
type Engine interface {
	Ask(ctx context.Context, q models.Question) (*models.AnswerResult, error)
}

type engine struct {
	catalog  FileCatalog
	rows     RowSource
	profiles ProfileProvider
	executor *Executor
	cfg      Config
	retry    *retry.Config
	pool     *workpool.Pool
	logger   *zap.Logger
}

var _ Engine = (*engine)(nil)

// NewEngine creates an Engine. profiles may be nil, in which case column kinds are
// classified ad hoc from a row sample.
func NewEngine(catalog FileCatalog, rows RowSource, profiles ProfileProvider, executor *Executor, cfg Config, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.Normalize()
	return &engine{
		catalog:  catalog,
		rows:     rows,
		profiles: profiles,
		executor: executor,
		cfg:      cfg,
		retry:    retry.DefaultConfig().Logged(logger.Named("insights"), "sample_rows"),
		pool:     workpool.New(workpool.Config{MaxConcurrent: cfg.FileConcurrency}, logger),
		logger:   logger.Named("insights"),
	}
}

// Ask answers a question. Errors are returned only for invalid input, unknown scope
// and I/O failures; anything the heuristics cannot resolve is a soft answer.
func (e *engine) Ask(ctx context.Context, q models.Question) (*models.AnswerResult, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, apperrors.ErrInvalidQuestion
	}
	if !q.Scope.IsFile() && !q.Scope.IsProject() {
		return nil, apperrors.ErrMissingScope
	}

	files, err := e.scopeFiles(ctx, q.Scope)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &models.AnswerResult{
			Answer: "There are no files in this project yet. Upload a file and ask again.",
			Intent: models.IntentUnknown,
		}, nil
	}

	result, err := e.ask(ctx, q, files)
	if err != nil {
		return nil, err
	}

	if q.ForcedIntent == "" && result.Intent == models.IntentUnknown && HasCompareSyntax(q.Text) {
		e.logger.Debug("Retrying question as compare", zap.String("question", q.Text))
		retried := q
		retried.ForcedIntent = models.IntentCompare
		return e.ask(ctx, retried, files)
	}
	return result, nil
}

func (e *engine) ask(ctx context.Context, q models.Question, files []models.FileInfo) (*models.AnswerResult, error) {
	cls := Classify(q.Text, e.cfg)
	if q.ForcedIntent != "" {
		cls.Intent = q.ForcedIntent
	}

	answers, err := e.answerFiles(ctx, q.Text, cls, files)
	if err != nil {
		return nil, err
	}

	merged := mergeAnswers(cls, answers)
	result := formatAnswer(merged, q.Scope.IsProject())

	e.logger.Info("Answered question",
		zap.String("intent", string(result.Intent)),
		zap.String("classified", string(cls.Intent)),
		zap.Int("matched_files", merged.matched),
		zap.Int("total_files", merged.total),
		zap.String("strategy", result.Strategy))
	return result, nil
}

// answerFiles answers each file independently. Answers keep the order of files so the
// merge sees the first file first.
func (e *engine) answerFiles(ctx context.Context, question string, cls Classification, files []models.FileInfo) ([]*fileAnswer, error) {
	if len(files) == 1 || e.cfg.FileConcurrency <= 1 {
		answers := make([]*fileAnswer, 0, len(files))
		for _, f := range files {
			a, err := e.answerFile(ctx, question, cls, f)
			if err != nil {
				return nil, err
			}
			answers = append(answers, a)
		}
		return answers, nil
	}

	items := make([]workpool.Item[*fileAnswer], len(files))
	for i, f := range files {
		items[i] = workpool.Item[*fileAnswer]{
			ID: f.ID.String(),
			Execute: func(ctx context.Context) (*fileAnswer, error) {
				return e.answerFile(ctx, question, cls, f)
			},
		}
	}
	results := workpool.Process(ctx, e.pool, items)
	if err := workpool.FirstError(results); err != nil {
		return nil, err
	}

	answers := make([]*fileAnswer, len(results))
	for i, r := range results {
		answers[i] = r.Result
	}
	return answers, nil
}

func (e *engine) scopeFiles(ctx context.Context, scope models.Scope) ([]models.FileInfo, error) {
	if scope.IsFile() {
		f, err := e.catalog.GetFile(ctx, scope.FileID)
		if err != nil {
			return nil, fmt.Errorf("failed to get file %s: %w", scope.FileID, err)
		}
		return []models.FileInfo{*f}, nil
	}
	files, err := e.catalog.ListFilesInProject(ctx, scope.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for project %s: %w", scope.ProjectID, err)
	}
	return files, nil
}

type answerStatus int

const (
	statusAnswered answerStatus = iota
	statusNoColumn
	statusNoValues
	statusCompareUnresolved
	statusNeedsMeasure
)

// fileAnswer is the outcome of a question against one file.
type fileAnswer struct {
	file    models.FileInfo
	status  answerStatus
	plan    Plan
	result  *Result
	columns []string
	profile *models.FileProfile
	// available is every column of the file, listed when nothing matched.
	available []string
	// suggestion is a near-miss column name for soft failures.
	suggestion string
}

func (a *fileAnswer) contributed() bool {
	if a.status != statusAnswered {
		return false
	}
	return a.result != nil || a.columns != nil || a.profile != nil
}

func (e *engine) answerFile(ctx context.Context, question string, cls Classification, file models.FileInfo) (*fileAnswer, error) {
	columns, err := e.catalog.ListColumns(ctx, file.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns for file %s: %w", file.ID, err)
	}
	fc := &fileContext{engine: e, file: file, columns: columns}
	out := &fileAnswer{
		file:      file,
		plan:      Plan{FileID: file.ID, Intent: cls.Intent, TopN: cls.TopN},
		available: columns,
	}

	switch cls.Intent {
	case models.IntentColumns:
		out.columns = append([]string{}, columns...)
		return out, nil

	case models.IntentSummary, models.IntentTypes:
		profile, err := fc.fullProfile(ctx)
		if err != nil {
			return nil, err
		}
		out.profile = profile
		return out, nil

	case models.IntentCompare:
		kinds, err := fc.kinds(ctx)
		if err != nil {
			return nil, err
		}
		cc, ok := ResolveCompare(question, columns, kinds)
		if !ok {
			out.status = statusCompareUnresolved
			return out, nil
		}
		out.plan.Column, out.plan.CompareColumn, out.plan.GroupBy = cc.Left, cc.Right, cc.GroupBy
		if f, ok := ExtractFilter(question, columns); ok {
			out.plan.Filter = f
		}

	case models.IntentRows:
		out.plan.Filter, _ = ExtractFilter(question, columns)
		out.plan.GroupBy = groupByExcludingFilter(question, columns, out.plan.Filter)

	case models.IntentCount:
		if err := e.planCount(ctx, fc, question, out); err != nil {
			return nil, err
		}

	case models.IntentTop, models.IntentDistinct:
		if err := e.planColumn(ctx, fc, question, out, ""); err != nil {
			return nil, err
		}

	case models.IntentSum, models.IntentAvg, models.IntentMin, models.IntentMax:
		out.plan.Filter, _ = ExtractFilter(question, columns)
		groupBy := groupByExcludingFilter(question, columns, out.plan.Filter)
		if err := e.planColumn(ctx, fc, question, out, groupBy); err != nil {
			return nil, err
		}
		if groupBy != "" {
			out.plan.GroupBy = groupBy
			if out.status == statusNoColumn {
				out.status = statusNeedsMeasure
			}
		}

	default:
		out.status = statusNoColumn
	}

	if out.status != statusAnswered {
		out.suggestion = suggestColumn(question, columns)
		return out, nil
	}

	res, err := e.executor.Run(ctx, out.plan)
	if err != nil {
		return nil, err
	}
	if res == nil {
		out.status = statusNoValues
		return out, nil
	}
	out.result = res
	return out, nil
}

// planCount resolves count questions: a direct column, then the column a filter
// implies, then value-driven inference.
func (e *engine) planCount(ctx context.Context, fc *fileContext, question string, out *fileAnswer) error {
	filter, _ := ExtractFilter(question, fc.columns)
	out.plan.Filter = filter
	out.plan.GroupBy = groupByExcludingFilter(question, fc.columns, filter)

	exclude := []string{out.plan.GroupBy}
	if filter != nil {
		exclude = append(exclude, filter.Column)
	}
	if m, ok := ResolveColumn(question, without(fc.columns, exclude...)); ok {
		out.plan.Column = m.Column
		return nil
	}
	if filter != nil {
		out.plan.Column = filter.Column
		return nil
	}
	if out.plan.GroupBy != "" {
		return nil
	}

	sample, err := fc.sample(ctx, e.cfg.InferenceSampleRows)
	if err != nil {
		return err
	}
	if f, ok := InferValueFilter(question, fc.columns, sample, e.cfg.InferenceMaxColumns); ok {
		out.plan.Column = f.Column
		out.plan.Filter = f
		return nil
	}
	out.status = statusNoColumn
	return nil
}

// planColumn resolves the target column for top, distinct and numeric intents,
// falling back to the column kinds when the question names none.
func (e *engine) planColumn(ctx context.Context, fc *fileContext, question string, out *fileAnswer, groupBy string) error {
	if out.plan.Filter == nil {
		out.plan.Filter, _ = ExtractFilter(question, fc.columns)
	}
	exclude := []string{groupBy}
	if out.plan.Filter != nil {
		exclude = append(exclude, out.plan.Filter.Column)
	}
	candidates := without(fc.columns, exclude...)
	if m, ok := ResolveColumn(question, candidates); ok {
		out.plan.Column = m.Column
		return nil
	}

	kinds, err := fc.kinds(ctx)
	if err != nil {
		return err
	}
	first := fc.firstColumn()
	if col := FallbackColumn(out.plan.Intent, kinds.Without(exclude...), first); col != "" && contains(candidates, col) {
		out.plan.Column = col
		return nil
	}
	out.status = statusNoColumn
	return nil
}

func groupByExcludingFilter(question string, columns []string, filter *models.Filter) string {
	var exclude []string
	if filter != nil {
		exclude = append(exclude, filter.Column)
	}
	g, _ := DetectGroupBy(question, columns, exclude...)
	return g
}

// fileContext caches what one question needs from one file.
type fileContext struct {
	engine  *engine
	file    models.FileInfo
	columns []string

	rows        []models.Row
	rowsLoaded  bool
	profile     *models.FileProfile
	profileRead bool
}

func (fc *fileContext) sample(ctx context.Context, n int) ([]models.Row, error) {
	if !fc.rowsLoaded {
		cfg := fc.engine.cfg
		rows, err := LoadRows(ctx, fc.engine.rows, fc.file.ID, max(n, fc.sampleSize()), cfg.FetchBatchSize, fc.engine.retry)
		if err != nil {
			return nil, err
		}
		fc.rows, fc.rowsLoaded = rows, true
	}
	if len(fc.rows) > n {
		return fc.rows[:n], nil
	}
	return fc.rows, nil
}

// sampleSize is the largest sample any resolver step asks for.
func (fc *fileContext) sampleSize() int {
	cfg := fc.engine.cfg
	return max(cfg.ResolverSampleRows, cfg.InferenceSampleRows)
}

func (fc *fileContext) cachedProfile(ctx context.Context) *models.FileProfile {
	if fc.profileRead {
		return fc.profile
	}
	fc.profileRead = true
	if fc.engine.profiles == nil {
		return nil
	}
	p, err := fc.engine.profiles.GetOrBuildFileProfile(ctx, fc.file.ID)
	if err != nil {
		fc.engine.logger.Warn("Failed to load file profile, classifying columns ad hoc",
			zap.String("file_id", fc.file.ID.String()),
			zap.Error(err))
		return nil
	}
	fc.profile = p
	return p
}

func (fc *fileContext) kinds(ctx context.Context) (ColumnKinds, error) {
	if p := fc.cachedProfile(ctx); p != nil {
		return KindsFromProfile(p), nil
	}
	sample, err := fc.sample(ctx, fc.engine.cfg.ResolverSampleRows)
	if err != nil {
		return ColumnKinds{}, err
	}
	return ClassifyColumns(fc.columns, sample, fc.engine.cfg.NumericThreshold, fc.engine.cfg.CategoricalThreshold), nil
}

func (fc *fileContext) firstColumn() string {
	if p := fc.profile; p != nil && p.FirstColumn() != "" {
		return p.FirstColumn()
	}
	if len(fc.columns) > 0 {
		return fc.columns[0]
	}
	return ""
}

// fullProfile returns the provider's profile or builds one from a sample and a row count.
func (fc *fileContext) fullProfile(ctx context.Context) (*models.FileProfile, error) {
	if p := fc.cachedProfile(ctx); p != nil {
		return p, nil
	}
	cfg := fc.engine.cfg
	sample, err := LoadRows(ctx, fc.engine.rows, fc.file.ID, cfg.ProfileSampleRows, cfg.FetchBatchSize, fc.engine.retry)
	if err != nil {
		return nil, err
	}
	res, err := fc.engine.executor.Run(ctx, Plan{FileID: fc.file.ID, Intent: models.IntentRows})
	if err != nil {
		return nil, err
	}
	var rowCount int64
	if res != nil {
		rowCount = int64(res.Value)
	}
	fc.profile = BuildProfile(fc.file.ID, fc.columns, sample, rowCount, cfg)
	return fc.profile, nil
}
