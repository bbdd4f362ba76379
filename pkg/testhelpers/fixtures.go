package testhelpers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
)

// SeedProject inserts a project row and returns its id.
func SeedProject(t *testing.T, db *database.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO projects (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	return id
}

// SeedFile inserts a file with its rows, storing each row as a top-level JSON object.
// Rows are any JSON-encodable values so tests can store numbers, booleans and nulls.
func SeedFile(t *testing.T, db *database.DB, projectID uuid.UUID, name string, columns []string, rows []map[string]any) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()

	cols, err := json.Marshal(columns)
	if err != nil {
		t.Fatalf("failed to encode columns: %v", err)
	}

	err = db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO dataset_files (id, project_id, name, columns, row_count) VALUES ($1, $2, $3, $4, $5)`,
			id, projectID, name, cols, len(rows)); err != nil {
			return err
		}
		for i, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO file_rows (file_id, row_index, data) VALUES ($1, $2, $3)`,
				id, i, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to seed file %s: %v", name, err)
	}
	return id
}
