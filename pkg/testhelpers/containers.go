// Package testhelpers provides shared fixtures for integration tests.
package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
)

// PostgresImage is the stock PostgreSQL image used for integration tests.
const PostgresImage = "postgres:17-alpine"

// Credentials of the container superuser. Tests that need a restricted role create their own.
const (
	SuperUser     = "rms"
	SuperPassword = "test_password"

	bootstrapDB = "rms_test"
	engineDB    = "rms_engine_test"
)

// TestDB is the shared PostgreSQL container with a superuser pool on its bootstrap database.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	ConnStr   string
}

// EngineDB is a database on the shared container with all migrations applied.
// Repositories and services are tested against it.
type EngineDB struct {
	DB      *database.DB
	ConnStr string
}

var (
	testDBOnce sync.Once
	testDB     *TestDB
	testDBErr  error

	engineDBOnce sync.Once
	engine       *EngineDB
	engineErr    error
)

// GetTestDB returns the shared container, starting it on first use.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipShort(t)

	testDBOnce.Do(func() {
		testDB, testDBErr = startContainer(context.Background())
	})
	if testDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", testDBErr)
	}
	return testDB
}

// GetEngineDB returns the shared migrated database, creating it on first use.
func GetEngineDB(t *testing.T) *EngineDB {
	t.Helper()
	tdb := GetTestDB(t)

	engineDBOnce.Do(func() {
		engine, engineErr = createEngineDB(context.Background(), tdb)
	})
	if engineErr != nil {
		t.Fatalf("Failed to setup engine database: %v", engineErr)
	}
	return engine
}

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
}

func startContainer(ctx context.Context) (*TestDB, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        PostgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       bootstrapDB,
				"POSTGRES_USER":     SuperUser,
				"POSTGRES_PASSWORD": SuperPassword,
			},
			// The server restarts once after initdb, so the ready line appears twice.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	tdb := &TestDB{Container: container}
	tdb.ConnStr, err = tdb.DSN(ctx, SuperUser, SuperPassword, bootstrapDB)
	if err != nil {
		return nil, err
	}
	tdb.Pool, err = pgxpool.New(ctx, tdb.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pingWithRetry(ctx, tdb.Pool, 10, 500*time.Millisecond); err != nil {
		tdb.Pool.Close()
		return nil, err
	}
	return tdb, nil
}

func pingWithRetry(ctx context.Context, pool *pgxpool.Pool, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		time.Sleep(delay)
	}
	return fmt.Errorf("database not reachable after %d attempts: %w", attempts, err)
}

// DSN builds a connection string for another database or user on the shared container.
func (tdb *TestDB) DSN(ctx context.Context, user, password, dbName string) (string, error) {
	host, err := tdb.Container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := tdb.Container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("failed to get container port: %w", err)
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName), nil
}

func createEngineDB(ctx context.Context, tdb *TestDB) (*EngineDB, error) {
	if _, err := tdb.Pool.Exec(ctx, "CREATE DATABASE "+engineDB); err != nil {
		return nil, fmt.Errorf("failed to create engine database: %w", err)
	}
	connStr, err := tdb.DSN(ctx, SuperUser, SuperPassword, engineDB)
	if err != nil {
		return nil, err
	}

	// golang-migrate needs database/sql
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:              connStr,
		MaxConnections:   5,
		ApplicationName:  "rms-insights-test",
		StatementTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to engine database: %w", err)
	}
	return &EngineDB{DB: db, ConnStr: connStr}, nil
}
