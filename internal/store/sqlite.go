package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quantlab/internal/backtest"
	"quantlab/internal/config"
)

// Store 封装 SQLite 连接，持久化回测运行记录。
type Store struct {
	db *sql.DB
}

// RunRecord 为一次回测运行的持久化形态。
type RunRecord struct {
	ID             int64
	Strategy       string
	Params         map[string]interface{}
	DataSource     string
	InitialCapital float64
	FinalEquity    float64
	Periods        int
	Metrics        backtest.Metrics
	CreatedAt      time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy TEXT NOT NULL,
	params TEXT NOT NULL,
	data_source TEXT NOT NULL,
	initial_capital REAL NOT NULL,
	final_equity REAL NOT NULL,
	periods INTEGER NOT NULL,
	total_return REAL,
	annualized_return REAL,
	sharpe_ratio REAL,
	max_drawdown REAL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy);
`

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

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("初始化 runs 表失败: %w", err)
	}

	return &Store{db: conn}, nil
}

// SaveRun 写入一次回测运行记录并返回自增ID。
// NaN 指标（如零方差时的夏普比率）存为 NULL。
func (s *Store) SaveRun(ctx context.Context, rec RunRecord) (int64, error) {
	params, err := json.Marshal(rec.Params)
	if err != nil {
		return 0, fmt.Errorf("序列化策略参数失败: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
INSERT INTO runs (strategy, params, data_source, initial_capital, final_equity, periods,
	total_return, annualized_return, sharpe_ratio, max_drawdown)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Strategy, string(params), rec.DataSource,
		rec.InitialCapital, rec.FinalEquity, rec.Periods,
		nullableFloat(rec.Metrics.TotalReturn),
		nullableFloat(rec.Metrics.AnnualizedReturn),
		nullableFloat(rec.Metrics.SharpeRatio),
		nullableFloat(rec.Metrics.MaxDrawdown),
	)
	if err != nil {
		return 0, fmt.Errorf("写入回测记录失败: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取回测记录ID失败: %w", err)
	}
	return id, nil
}

// ListRuns 按时间倒序返回最近的回测记录。
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, strategy, params, data_source, initial_capital, final_equity, periods,
	total_return, annualized_return, sharpe_ratio, max_drawdown, created_at
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询回测记录失败: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			rawParams string
			total     sql.NullFloat64
			annual    sql.NullFloat64
			sharpe    sql.NullFloat64
			drawdown  sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &rec.Strategy, &rawParams, &rec.DataSource,
			&rec.InitialCapital, &rec.FinalEquity, &rec.Periods,
			&total, &annual, &sharpe, &drawdown, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取回测记录失败: %w", err)
		}
		if err := json.Unmarshal([]byte(rawParams), &rec.Params); err != nil {
			return nil, fmt.Errorf("解析策略参数失败: %w", err)
		}
		rec.Metrics = backtest.Metrics{
			TotalReturn:      floatOrNaN(total),
			AnnualizedReturn: floatOrNaN(annual),
			SharpeRatio:      floatOrNaN(sharpe),
			MaxDrawdown:      floatOrNaN(drawdown),
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历回测记录失败: %w", err)
	}
	return records, nil
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
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
