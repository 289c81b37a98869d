package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/logging"
)

// migrationsTable records which files under the migrations directory ran.
const migrationsTable = "vidtube_schema_migrations"

// retryPolicy retries work that failed with a transient PostgreSQL error,
// doubling the pause between attempts up to max.
type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

var migrationRetry = retryPolicy{attempts: 3, base: 100 * time.Millisecond, max: 3 * time.Second}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base
	for i := 1; i < attempt && d < p.max; i++ {
		d *= 2
	}
	return min(d, p.max)
}

func (p retryPolicy) do(ctx context.Context, logger *slog.Logger, what string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(p.backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = fn(ctx); err == nil || !isTransient(err) {
			return err
		}
		logger.Warn("transient database error", "work", what, "attempt", attempt, "of", p.attempts, "error", err)
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", what, p.attempts, err)
}

// SQLSTATE classes worth retrying a migration for.
var transientCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, pgx.ErrTxClosed) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && transientCodes[pgErr.Code]
}

// resolveDir anchors a relative directory at the working directory.
func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine working directory: %w", err)
	}
	return filepath.Join(wd, dir), nil
}

// sqlFiles lists the .sql files directly under dir in lexical order.
func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// seedFileName maps "dev" onto "dev_seed.sql"; explicit file names pass through.
func seedFileName(name string) string {
	if strings.HasSuffix(name, ".sql") {
		return name
	}
	return name + "_seed.sql"
}

// connect opens a pool and holds one connection for the CLI commands.
func connect(ctx context.Context, cfg config.Config) (*pgxpool.Conn, func(), error) {
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxConns: 1, ConnectTimeout: cfg.DBConnTimeout})
	if err != nil {
		return nil, nil, err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, func() {
		conn.Release()
		pool.Close()
	}, nil
}

type migrator struct {
	conn   *pgxpool.Conn
	dir    string
	logger *slog.Logger
}

func (m migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationsTable+` (
        name       TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`)
	if err != nil {
		return fmt.Errorf("create %s: %w", migrationsTable, err)
	}
	return nil
}

func (m migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.conn.Query(ctx, `SELECT name FROM `+migrationsTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}
	done := make(map[string]bool, len(names))
	for _, name := range names {
		done[name] = true
	}
	return done, nil
}

// apply runs one migration file and records it in the same serializable
// transaction.
func (m migrator) apply(ctx context.Context, name string) error {
	contents, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	return migrationRetry.do(ctx, m.logger, "migration "+name, func(ctx context.Context) error {
		return pgx.BeginTxFunc(ctx, m.conn, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(contents)); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			if _, err := tx.Exec(ctx, `INSERT INTO `+migrationsTable+` (name) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			return nil
		})
	})
}

// printStatus writes one "[x] name" or "[ ] name" line per migration file.
func printStatus(out io.Writer, files []string, done map[string]bool) {
	for _, name := range files {
		mark := " "
		if done[name] {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s\n", mark, name)
	}
}

// runMigrations implements "migrate [up|status]".
func runMigrations(ctx context.Context, args []string) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}
	if command != "up" && command != "status" {
		return fmt.Errorf("unknown migrate command %q (want up or status)", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	dir, err := resolveDir(cfg.MigrationDir)
	if err != nil {
		return err
	}
	files, err := sqlFiles(dir)
	if err != nil {
		return err
	}

	conn, release, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	m := migrator{conn: conn, dir: dir, logger: logger}
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	if command == "status" {
		printStatus(os.Stdout, files, done)
		return nil
	}

	pending := 0
	for _, name := range files {
		if done[name] {
			continue
		}
		if err := m.apply(ctx, name); err != nil {
			return err
		}
		pending++
		logger.Info("migration applied", "name", name)
	}
	logger.Info("migrations up to date", "applied", pending, "total", len(files))
	return nil
}

// runSeed implements "seed [name]". Without a name it lists the available seeds.
func runSeed(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	dir, err := resolveDir(cfg.SeedDir)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		files, err := sqlFiles(dir)
		if err != nil {
			return err
		}
		for _, name := range files {
			fmt.Fprintln(os.Stdout, strings.TrimSuffix(strings.TrimSuffix(name, ".sql"), "_seed"))
		}
		return nil
	}

	name := seedFileName(args[0])
	contents, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read seed %s: %w", name, err)
	}

	conn, release, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, string(contents))
		return err
	})
	if err != nil {
		return fmt.Errorf("apply seed %s: %w", name, err)
	}

	logger.Info("seed applied", "name", name)
	return nil
}
