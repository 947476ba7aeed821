// Package testutil provides testing utilities for database integration tests.
//
// Integration tests only run when TEST_INTEGRATION is set. Connection strings
// can be customized via environment variables:
//   - TEST_POSTGRES_DSN: PostgreSQL connection string; when empty a disposable
//     postgres container is started with testcontainers
//   - TEST_MYSQL_DSN: MySQL connection string (default: testuser:testpassword@tcp(localhost:3307)/testdb?parseTime=true&multiStatements=true)
//
// Database Setup:
//
//	db := testutil.SetupPostgresDB(t)
//	defer testutil.TeardownDB(t, db)
//
// Test Fixtures (for foreign key constraints):
//
//	userID := testutil.CreateTestUser(t, db, "postgres", "editor")
//	postID := testutil.CreateTestPost(t, db, "postgres", userID, "published")
//
// Migration Path:
//
// Migrations are automatically discovered by walking up from the current
// working directory until a "migrations/{dbType}" directory is found.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	//nolint:gosec // test database credentials
	defaultMySQLTestDSN = "testuser:testpassword@tcp(localhost:3307)/testdb?parseTime=true&multiStatements=true"

	postgresImage = "docker.io/postgres:17-alpine"
)

// SkipIfNotIntegration skips the test unless TEST_INTEGRATION is set.
func SkipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}
}

// GetMySQLTestDSN returns the MySQL test DSN, checking environment variable first.
func GetMySQLTestDSN() string {
	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		return dsn
	}
	return defaultMySQLTestDSN
}

// postgresDSN returns TEST_POSTGRES_DSN or the connection string of a fresh container
// that is terminated when the test finishes.
func postgresDSN(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("warden_test"),
		tcpostgres.WithUsername("warden"),
		tcpostgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get postgres connection string")
	return dsn
}

// SetupPostgresDB opens a migrated, empty PostgreSQL database.
func SetupPostgresDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNotIntegration(t)

	db, err := sql.Open("postgres", postgresDSN(t))
	require.NoError(t, err, "failed to connect to postgres")
	require.NoError(t, db.Ping(), "failed to ping postgres database")

	runMigrations(t, db, "postgres")
	CleanupPostgresDB(t, db)

	return db
}

// SetupMySQLDB opens a migrated, empty MySQL database.
func SetupMySQLDB(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNotIntegration(t)

	db, err := sql.Open("mysql", GetMySQLTestDSN())
	require.NoError(t, err, "failed to connect to mysql")
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	runMigrations(t, db, "mysql")
	CleanupMySQLDB(t, db)

	return db
}

// TeardownDB closes the database connection.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		require.NoError(t, db.Close(), "failed to close database connection")
	}
}

// CleanupPostgresDB truncates all tables in the PostgreSQL database.
func CleanupPostgresDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE TABLE posts, audit_logs, refresh_tokens, users RESTART IDENTITY CASCADE")
	require.NoError(t, err, "failed to truncate postgres tables")
}

// CleanupMySQLDB truncates all tables in the MySQL database.
func CleanupMySQLDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err, "failed to disable foreign key checks")

	for _, table := range []string{"posts", "audit_logs", "refresh_tokens", "users"} {
		_, err = db.Exec("TRUNCATE TABLE " + table)
		require.NoError(t, err, "failed to truncate "+table+" table")
	}

	_, err = db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err, "failed to enable foreign key checks")
}

// runMigrations applies all pending migrations for driver ("postgres" or "mysql").
func runMigrations(t *testing.T, db *sql.DB, driver string) {
	t.Helper()

	var m *migrate.Migrate
	if driver == "postgres" {
		migrationsPath, err := getMigrationsPath("postgresql")
		require.NoError(t, err, "failed to find postgresql migrations path")
		d, err := postgres.WithInstance(db, &postgres.Config{})
		require.NoError(t, err, "failed to create postgres driver")
		m, err = migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", d)
		require.NoError(t, err, "failed to create migrate instance for postgres")
	} else {
		migrationsPath, err := getMigrationsPath("mysql")
		require.NoError(t, err, "failed to find mysql migrations path")
		d, err := mysql.WithInstance(db, &mysql.Config{})
		require.NoError(t, err, "failed to create mysql driver")
		m, err = migrate.NewWithDatabaseInstance("file://"+migrationsPath, "mysql", d)
		require.NoError(t, err, "failed to create migrate instance for mysql")
	}

	// The migrate instance is not closed: closing it would close db, which the caller owns.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "failed to run "+driver+" migrations")
	}
}

// getMigrationsPath walks up from the working directory until migrations/{dbType} is found.
func getMigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", dbType)
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found for %s (started from %s)", dbType, dir)
		}
		dir = parent
	}
}

// UUIDValue converts a UUID to the value expected by the driver.
// PostgreSQL uses UUID natively, MySQL requires binary encoding.
func UUIDValue(id uuid.UUID, driver string) (any, error) {
	if driver == "postgres" {
		return id, nil
	}
	return id.MarshalBinary()
}

func placeholders(driver string, n int) []string {
	out := make([]string, n)
	for i := range out {
		if driver == "postgres" {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// CreateTestUser inserts an active user with the given role and returns its ID.
func CreateTestUser(t *testing.T, db *sql.DB, driver, role string) uuid.UUID {
	t.Helper()

	userID := uuid.Must(uuid.NewV7())
	id, err := UUIDValue(userID, driver)
	require.NoError(t, err, "failed to convert user UUID for driver "+driver)

	p := placeholders(driver, 7)
	query := fmt.Sprintf(
		`INSERT INTO users (id, name, email, password_hash, role, is_active, created_at, updated_at)
		 VALUES (%s, %s, %s, %s, %s, TRUE, %s, %s)`,
		p[0], p[1], p[2], p[3], p[4], p[5], p[6],
	)
	now := time.Now().UTC()
	_, err = db.ExecContext(
		context.Background(),
		query,
		id,
		"Test "+role,
		userID.String()+"@example.com",
		"test-password-hash",
		role,
		now,
		now,
	)
	require.NoError(t, err, "failed to create test user")
	return userID
}

// CreateTestPost inserts a post owned by ownerID and returns its ID.
func CreateTestPost(t *testing.T, db *sql.DB, driver string, ownerID uuid.UUID, status string) uuid.UUID {
	t.Helper()

	postID := uuid.Must(uuid.NewV7())
	id, err := UUIDValue(postID, driver)
	require.NoError(t, err, "failed to convert post UUID for driver "+driver)
	owner, err := UUIDValue(ownerID, driver)
	require.NoError(t, err, "failed to convert owner UUID for driver "+driver)

	p := placeholders(driver, 7)
	query := fmt.Sprintf(
		`INSERT INTO posts (id, title, body, status, owner_id, created_at, updated_at)
		 VALUES (%s, %s, %s, %s, %s, %s, %s)`,
		p[0], p[1], p[2], p[3], p[4], p[5], p[6],
	)
	now := time.Now().UTC()
	_, err = db.ExecContext(context.Background(), query, id, "Test post", "Body", status, owner, now, now)
	require.NoError(t, err, "failed to create test post")
	return postID
}
