package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/jsonutil"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// FileRepository provides data access for uploaded files and their rows.
// It is the row store behind both aggregation strategies.
type FileRepository interface {
	insights.FileCatalog
	insights.RowSource

	// CreateProject inserts a project. An existing project with the same id is left untouched.
	CreateProject(ctx context.Context, id uuid.UUID, name string) error

	// Create stores a file, its ordered columns and its rows in one transaction.
	Create(ctx context.Context, file *models.FileInfo, columns []string, rows []models.Row) error

	// Delete removes a file and, by cascade, its rows and profile.
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepository struct {
	db       *database.DB
	dataPath []string
	logger   *zap.Logger
}

// NewFileRepository creates a file repository. dataPath is the JSON path prefix under
// which each stored row keeps its cells; nil means the row object itself.
func NewFileRepository(db *database.DB, dataPath []string, logger *zap.Logger) FileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileRepository{
		db:       db,
		dataPath: append([]string(nil), dataPath...),
		logger:   logger.Named("file-repository"),
	}
}

var _ FileRepository = (*fileRepository)(nil)

func (r *fileRepository) GetFile(ctx context.Context, id uuid.UUID) (*models.FileInfo, error) {
	query := `SELECT id, project_id, name, created_at FROM dataset_files WHERE id = $1`

	var f models.FileInfo
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.ProjectID, &f.Name, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file %s: %w", id, err)
	}
	return &f, nil
}

func (r *fileRepository) ListColumns(ctx context.Context, id uuid.UUID) ([]string, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT columns FROM dataset_files WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to list columns for file %s: %w", id, err)
	}

	var columns []string
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns for file %s: %w", id, err)
	}
	return columns, nil
}

func (r *fileRepository) ListFilesInProject(ctx context.Context, projectID uuid.UUID) ([]models.FileInfo, error) {
	query := `
		SELECT id, project_id, name, created_at
		FROM dataset_files
		WHERE project_id = $1
		ORDER BY created_at, name`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files for project %s: %w", projectID, err)
	}
	defer rows.Close()

	files := []models.FileInfo{}
	for rows.Next() {
		var f models.FileInfo
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating files: %w", err)
	}
	return files, nil
}

// ListRows returns rows in upload order. Cells are decoded the way Postgres ->> renders them
// so the in-memory strategy sees the same text as the push-down strategy.
func (r *fileRepository) ListRows(ctx context.Context, fileID uuid.UUID, limit, offset int) ([]models.Row, error) {
	query := `
		SELECT data
		FROM file_rows
		WHERE file_id = $1
		ORDER BY row_index
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, fileID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	out := make([]models.Row, 0, limit)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells, err := jsonutil.DecodeRow(data, r.dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to decode row of file %s: %w", fileID, err)
		}
		out = append(out, models.Row(cells))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func (r *fileRepository) CreateProject(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, name)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *fileRepository) Create(ctx context.Context, file *models.FileInfo, columns []string, rows []models.Row) error {
	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	cols, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("failed to marshal columns: %w", err)
	}

	err = r.db.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO dataset_files (id, project_id, name, columns, row_count)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			file.ID, file.ProjectID, file.Name, cols, len(rows)).Scan(&file.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert file: %w", err)
		}

		batch := &pgx.Batch{}
		for i, row := range rows {
			data, err := jsonutil.EncodeRow(row)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", i, err)
			}
			data = wrapPath(data, r.dataPath)
			batch.Queue(`INSERT INTO file_rows (file_id, row_index, data) VALUES ($1, $2, $3)`, file.ID, i, data)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Stored file",
		zap.String("file_id", file.ID.String()),
		zap.String("name", file.Name),
		zap.Int("columns", len(columns)),
		zap.Int("rows", len(rows)))
	return nil
}

func (r *fileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM dataset_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// wrapPath nests a row object under the configured path prefix.
func wrapPath(data []byte, path []string) []byte {
	for i := len(path) - 1; i >= 0; i-- {
		key, _ := json.Marshal(path[i])
		wrapped := make([]byte, 0, len(data)+len(key)+3)
		wrapped = append(wrapped, '{')
		wrapped = append(wrapped, key...)
		wrapped = append(wrapped, ':')
		wrapped = append(wrapped, data...)
		wrapped = append(wrapped, '}')
		data = wrapped
	}
	return data
}
