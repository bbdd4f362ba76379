package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/csvstore"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/repositories"
)

// fileImporter is the part of the file repository the load command writes through.
type fileImporter interface {
	CreateProject(ctx context.Context, id uuid.UUID, name string) error
	Create(ctx context.Context, file *models.FileInfo, columns []string, rows []models.Row) error
}

func newLoadCmd(opts *rootOptions) *cobra.Command {
	var projectName, projectID string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import CSV files into the server's Postgres row store",
		Long: `Import each --file into a project so the server can answer questions about it.
The database comes from the server configuration (config.yaml and PG* variables).
Migrations are applied first. Prints the id of every imported file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			pid := uuid.New()
			if projectID != "" {
				id, err := uuid.Parse(projectID)
				if err != nil {
					return fmt.Errorf("invalid --project-id: %w", err)
				}
				pid = id
			}

			ctx := cmd.Context()
			connStr := opts.cfg.Database.ConnectionString()

			sqlDB, err := sql.Open("pgx", connStr)
			if err != nil {
				return fmt.Errorf("failed to open migration connection: %w", err)
			}
			err = database.RunMigrations(sqlDB, opts.logger)
			sqlDB.Close()
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			db, err := database.NewConnection(ctx, &database.Config{
				URL:              connStr,
				MaxConnections:   2,
				MaxConnLifetime:  time.Hour,
				MaxConnIdleTime:  time.Minute,
				ApplicationName:  "tabq",
				StatementTimeout: opts.cfg.Database.StatementTimeout(),
			})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			repo := repositories.NewFileRepository(db, opts.cfg.Insights.EngineConfig().RowDataPath, opts.logger)
			files, err := importFiles(ctx, repo, pid, projectName, opts.files)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != "text" {
				return writeStructured(out, opts.output, map[string]any{"projectId": pid, "files": files})
			}
			fmt.Fprintf(out, "project %s\n", pid)
			for _, f := range files {
				fmt.Fprintf(out, "  %s  %s\n", f.ID, f.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectName, "project-name", "", "name of the project to create")
	cmd.Flags().StringVar(&projectID, "project-id", "", "existing project to add files to (default: new project)")
	return cmd
}

// importFiles parses every path before writing anything, so a malformed file
// leaves the store untouched.
func importFiles(ctx context.Context, repo fileImporter, projectID uuid.UUID, projectName string, paths []string) ([]models.FileInfo, error) {
	type parsed struct {
		name    string
		columns []string
		rows    []models.Row
	}
	all := make([]parsed, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		columns, rows, err := csvstore.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		all = append(all, parsed{name: filepath.Base(path), columns: columns, rows: rows})
	}

	if projectName == "" {
		projectName = all[0].name
	}
	if err := repo.CreateProject(ctx, projectID, projectName); err != nil {
		return nil, err
	}

	files := make([]models.FileInfo, 0, len(all))
	for _, p := range all {
		info := models.FileInfo{ProjectID: projectID, Name: p.name}
		if err := repo.Create(ctx, &info, p.columns, p.rows); err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", p.name, err)
		}
		files = append(files, info)
	}
	return files, nil
}
