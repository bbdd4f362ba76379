// Package csvstore serves CSV files from disk as an in-memory dataset catalog.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// namespace seeds deterministic file ids, so a path maps to the same id across runs
// and cached profiles stay addressable.
var namespace = uuid.MustParse("6b1f6f0e-3c8a-4d5e-9a57-2f61c3e0b8d4")

// ProjectID is the project every locally loaded file belongs to.
var ProjectID = uuid.NewSHA1(namespace, []byte("local-project"))

type file struct {
	info    models.FileInfo
	columns []string
	rows    []models.Row
}

// Store is a read-only catalog of CSV files held in memory.
type Store struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*file
	order []uuid.UUID
}

// New creates an empty store.
func New() *Store {
	return &Store{files: map[uuid.UUID]*file{}}
}

var (
	_ insights.FileCatalog = (*Store)(nil)
	_ insights.RowSource   = (*Store)(nil)
)

// FileID returns the id a path is loaded under.
func FileID(path string) uuid.UUID {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(namespace, []byte(abs))
}

// LoadFile reads a CSV file and adds it to the store.
func (s *Store) LoadFile(path string) (models.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var created time.Time
	if st, err := f.Stat(); err == nil {
		created = st.ModTime().UTC()
	}
	info := models.FileInfo{
		ID:        FileID(path),
		ProjectID: ProjectID,
		Name:      filepath.Base(path),
		CreatedAt: created,
	}
	if err := s.Load(info, f); err != nil {
		return models.FileInfo{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return info, nil
}

// Load parses CSV content with a header row and stores it under info.
// Duplicate or empty header names are made unique so no column is shadowed.
func (s *Store) Load(info models.FileInfo, r io.Reader) error {
	columns, rows, err := Parse(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[info.ID]; !ok {
		s.order = append(s.order, info.ID)
	}
	s.files[info.ID] = &file{info: info, columns: columns, rows: rows}
	return nil
}

// Parse reads CSV content with a header row into ordered columns and rows.
func Parse(r io.Reader) ([]string, []models.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty CSV: no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := uniqueColumns(header)

	var rows []models.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+2, err)
		}
		row := make(models.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return columns, rows, nil
}

func uniqueColumns(header []string) []string {
	seen := map[string]int{}
	out := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = fmt.Sprintf("%s (%d)", base, seen[base])
		}
		seen[name]++
		out[i] = name
	}
	return out
}

func (s *Store) get(id uuid.UUID) (*file, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return f, nil
}

func (s *Store) GetFile(_ context.Context, id uuid.UUID) (*models.FileInfo, error) {
	f, err := s.get(id)
	if err != nil {
		return nil, err
	}
	info := f.info
	return &info, nil
}

func (s *Store) ListColumns(_ context.Context, id uuid.UUID) ([]string, error) {
	f, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), f.columns...), nil
}

func (s *Store) ListFilesInProject(_ context.Context, projectID uuid.UUID) ([]models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := []models.FileInfo{}
	for _, id := range s.order {
		if f := s.files[id]; f.info.ProjectID == projectID {
			files = append(files, f.info)
		}
	}
	return files, nil
}

func (s *Store) ListRows(_ context.Context, fileID uuid.UUID, limit, offset int) ([]models.Row, error) {
	f, err := s.get(fileID)
	if err != nil {
		return nil, err
	}
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := len(f.rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return f.rows[offset:end], nil
}

// Rows returns the ordered columns and all rows of a file.
func (s *Store) Rows(id uuid.UUID) ([]string, []models.Row, error) {
	f, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	return append([]string(nil), f.columns...), f.rows, nil
}
