package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"factorbench/internal/config"
	"factorbench/internal/result"
)

// Store 封装 SQLite 连接，保存每次因子评测的结果树。
type Store struct {
	db *sql.DB
}

// NewSQLite 根据配置初始化 SQLite 存储并建表。
func NewSQLite(cfg config.DatabaseConfig) (*Store, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else {
		if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite WAL 模式失败: %w", err)
	}

	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite 同步级别失败: %w", err)
	}

	store := &Store{db: conn}
	if err := store.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS factor_runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	factor_name TEXT    NOT NULL,
	start_date  TEXT    NOT NULL,
	end_date    TEXT    NOT NULL,
	created_at  TEXT    NOT NULL,
	bundle      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_factor_runs_name ON factor_runs (factor_name, created_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("初始化结果表失败: %w", err)
	}
	return nil
}

// SaveRun 序列化结果树并落库，返回自增主键。
func (s *Store) SaveRun(ctx context.Context, factorName string, start, end time.Time, bundle *result.Node) (int64, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return 0, fmt.Errorf("序列化结果树失败: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO factor_runs (factor_name, start_date, end_date, created_at, bundle) VALUES (?, ?, ?, ?, ?)`,
		factorName,
		start.Format(time.DateOnly),
		end.Format(time.DateOnly),
		time.Now().UTC().Format(time.RFC3339),
		string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("写入评测结果失败: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("读取评测结果主键失败: %w", err)
	}
	return id, nil
}

// RunSummary 是一次落库评测的概要。
type RunSummary struct {
	ID         int64
	FactorName string
	StartDate  string
	EndDate    string
	CreatedAt  string
}

// ListRuns 按时间倒序返回最近的评测记录。
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, factor_name, start_date, end_date, created_at FROM factor_runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("查询评测记录失败: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.FactorName, &r.StartDate, &r.EndDate, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取评测记录失败: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadBundle 取回一次评测的原始结果树 JSON。
func (s *Store) LoadBundle(ctx context.Context, id int64) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle FROM factor_runs WHERE id = ?`, id,
	).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("读取评测结果 %d 失败: %w", id, err)
	}
	return []byte(payload), nil
}

// DB 返回底层 *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("创建目录 %q 失败: %w", path, err)
	}
	return nil
}
