package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Probe reachability before handing the DSN to the pool, with retries
	// to ride out container start ordering.
	var conn net.Conn
	var err error

	tryDial := func() (net.Conn, error) {
		addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
		force4 := os.Getenv("DB_DIAL_FORCE_IPV4") == "1"
		force6 := os.Getenv("DB_DIAL_FORCE_IPV6") == "1"

		if force4 {
			return net.DialTimeout("tcp4", addr, defaultConnTimeout)
		}
		if force6 {
			return net.DialTimeout("tcp6", addr, defaultConnTimeout)
		}

		// Prefer IPv4, then fall back to IPv6
		if c, e := net.DialTimeout("tcp4", addr, defaultConnTimeout); e == nil {
			return c, nil
		}
		return net.DialTimeout("tcp6", addr, defaultConnTimeout)
	}

	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = tryDial()
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	defer conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	return createDB(ctx, poolConfig)
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func createDB(ctx context.Context, poolConfig *pgxpool.Config) (*DB, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	bunDB := newBunDB(pool)
	return &DB{pool: pool, bunDB: bunDB}, nil
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	// Default to disabling SSL for Bun unless explicitly overridden by env
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return rows, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "query"),
		slog.String("query", sql),
		slog.Duration("took", duration),
	)
	return rows, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required database tables and indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.Employee)(nil),
		(*models.Admin)(nil),
		(*models.ClockIn)(nil),
		(*models.Sale)(nil),
		(*models.QuizQuestion)(nil),
		(*models.QuizAttempt)(nil),
		(*models.QuizSettings)(nil),
	}

	for _, model := range tables {
		query := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists()

		_, err := query.Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_telegram_id ON employees(telegram_id);",
		// The uniqueness constraint that makes concurrent same-day
		// clock-ins safe; the service-level existence check only exists
		// to produce a friendly error ahead of it.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_clock_ins_employee_date ON clock_ins(employee_id, date);",
		"CREATE INDEX IF NOT EXISTS idx_clock_ins_date ON clock_ins(date);",
		"CREATE INDEX IF NOT EXISTS idx_clock_ins_open ON clock_ins(employee_id, date) WHERE clock_out_time IS NULL;",
		"CREATE INDEX IF NOT EXISTS idx_sales_employee_date ON sales(employee_id, date);",
		"CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);",
		"CREATE INDEX IF NOT EXISTS idx_quiz_questions_active ON quiz_questions(active, position);",
		"CREATE INDEX IF NOT EXISTS idx_quiz_attempts_employee_question ON quiz_attempts(employee_id, question_id);",
		"CREATE INDEX IF NOT EXISTS idx_quiz_attempts_question ON quiz_attempts(question_id);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.SeedQuizQuestions(ctx); err != nil {
		return fmt.Errorf("failed to seed quiz questions: %w", err)
	}

	return nil
}

// SeedQuizQuestions inserts the starter question set on a fresh database.
// A non-empty quiz_questions table is left untouched.
func (db *DB) SeedQuizQuestions(ctx context.Context) error {
	var count int
	if err := db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quiz_questions").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		slog.Debug("Quiz questions already present, skipping seed",
			slog.String("type", "db"),
			slog.Int("count", count))
		return nil
	}

	type seedQuestion struct {
		Question string
		A        string
		B        string
		C        string
		D        string
		Correct  string
	}

	questions := []seedQuestion{
		{
			Question: "What should you do if a customer asks for a refund?",
			A:        "Give them the refund immediately",
			B:        "Check company policy and process appropriately",
			C:        "Ignore the request",
			D:        "Ask them to come back tomorrow",
			Correct:  "B",
		},
		{
			Question: "How should you handle customer complaints?",
			A:        "Argue with the customer",
			B:        "Listen actively and try to resolve the issue",
			C:        "Tell them it's not your problem",
			D:        "Hang up immediately",
			Correct:  "B",
		},
		{
			Question: "What is the most important thing when dealing with customers?",
			A:        "Making sales quickly",
			B:        "Building trust and good relationships",
			C:        "Following scripts exactly",
			D:        "Ending calls as fast as possible",
			Correct:  "B",
		},
		{
			Question: "When should you clock in for work?",
			A:        "When you arrive at your desk",
			B:        "When you start your shift as scheduled",
			C:        "Whenever you feel like it",
			D:        "After your break",
			Correct:  "B",
		},
		{
			Question: "How should you record sales transactions?",
			A:        "Only when you remember",
			B:        "Immediately after each transaction",
			C:        "At the end of the week",
			D:        "Never, it's automatic",
			Correct:  "B",
		},
	}

	insertSQL := `
		INSERT INTO quiz_questions (question, option_a, option_b, option_c, option_d, correct_answer, active, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, $7, CURRENT_TIMESTAMP);
	`

	for i, q := range questions {
		if _, err := db.ExecWithLog(ctx, insertSQL,
			q.Question, q.A, q.B, q.C, q.D, q.Correct, i+1); err != nil {
			return fmt.Errorf("failed to insert seed question %d: %w", i+1, err)
		}
	}

	slog.Info("Seed quiz questions inserted", slog.Int("count", len(questions)))
	return nil
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}

	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}

	return nil
}
