package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/searchlens/searchlens/internal/model"
)

// Postgres 分析历史存储。可选组件：未配置数据库时编排器直接收到 nil。
type Postgres struct {
	db *sql.DB
}

// 建表语句。首次连接时执行，已存在则跳过。
const schemaDDL = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id         BIGSERIAL PRIMARY KEY,
	site_url   TEXT NOT NULL,
	model_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS analysis_sections (
	id       BIGSERIAL PRIMARY KEY,
	run_id   BIGINT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	section  TEXT NOT NULL,
	position INT NOT NULL,
	content  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS suggestions (
	id             BIGSERIAL PRIMARY KEY,
	run_id         BIGINT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	position       INT NOT NULL,
	category       TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL,
	priority       TEXT NOT NULL,
	impact         TEXT NOT NULL,
	implementation TEXT NOT NULL
);
`

// NewPostgres 打开连接并初始化表结构
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// CreateRun 新建一次分析运行记录
func (p *Postgres) CreateRun(ctx context.Context, siteURL string, modelName string) (int64, error) {
	var id int64
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO analysis_runs (site_url, model_name) VALUES ($1, $2) RETURNING id`,
		siteURL, modelName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create run failed: %w", err)
	}
	return id, nil
}

// SaveAnalysis 把分析结果的各段落逐条落库
func (p *Postgres) SaveAnalysis(ctx context.Context, runID int64, result model.AnalysisResult) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	insert := func(section string, position int, content string) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_sections (run_id, section, position, content) VALUES ($1, $2, $3, $4)`,
			runID, section, position, content)
		return err
	}

	if err := insert("summary", 0, result.Summary); err != nil {
		tx.Rollback()
		return err
	}
	for section, items := range map[string][]string{
		"trend":          result.Trends,
		"opportunity":    result.Opportunities,
		"issue":          result.Issues,
		"recommendation": result.Recommendations,
	} {
		for i, item := range items {
			if err := insert(section, i, item); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// SaveSuggestions 批量保存建议，保持生成顺序
func (p *Postgres) SaveSuggestions(ctx context.Context, runID int64, suggestions []model.Suggestion) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i, s := range suggestions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO suggestions (run_id, position, category, title, description, priority, impact, implementation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			runID, i, s.Category, s.Title, s.Description, s.Priority, s.Impact, s.Implementation)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save suggestion failed: %w", err)
		}
	}
	return tx.Commit()
}
