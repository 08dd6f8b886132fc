package database

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/keirin-edge/internal/config"
)

// testTables lists every table the repositories touch, children before
// parents so truncation order never trips a foreign key.
var testTables = []string{
	"settlements",
	"outcomes",
	"recommendations",
	"riders",
	"races",
}

// SetupTestDB connects to the test database described by
// config/config.yaml.test and verifies the connection.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	cfg, err := config.Load("../../config/config.yaml.test")
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()

	if err := db.Ping(verifyCtx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return db
}

// TruncateTestTables wipes analysis data between test cases
func TruncateTestTables(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stmt := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(testTables, ", "))
	if _, err := db.Exec(ctx, stmt); err != nil {
		t.Fatalf("failed to truncate test tables: %v", err)
	}
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Close(ctx); err != nil {
		t.Logf("warning: failed to close test database: %v", err)
	}
}

// RunMigrations is a placeholder for programmatic schema setup. The
// integration suite expects the schema to exist already:
//
//	migrate -path migrations -database "postgres://..." up
func RunMigrations(ctx context.Context, db *DB) error {
	return fmt.Errorf("use migrate CLI: migrate -path migrations -database \"your_dsn\" up")
}
