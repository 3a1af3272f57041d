package sheets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/claude-usage/internal/stats"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_summaries (
	date TEXT PRIMARY KEY,
	sessions INTEGER NOT NULL DEFAULT 0,
	active_time_hours REAL NOT NULL DEFAULT 0,
	user_prompts INTEGER NOT NULL DEFAULT 0,
	api_calls INTEGER NOT NULL DEFAULT 0,
	total_cost_usd REAL NOT NULL DEFAULT 0,
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	cache_read_tokens INTEGER NOT NULL DEFAULT 0,
	cache_creation_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens INTEGER NOT NULL DEFAULT 0,
	lines_added INTEGER NOT NULL DEFAULT 0,
	lines_removed INTEGER NOT NULL DEFAULT 0,
	commits INTEGER NOT NULL DEFAULT 0,
	pull_requests INTEGER NOT NULL DEFAULT 0,
	tool_calls INTEGER NOT NULL DEFAULT 0,
	tool_success_rate_pct REAL NOT NULL DEFAULT 0,
	top_tools TEXT NOT NULL DEFAULT '',
	api_errors INTEGER NOT NULL DEFAULT 0,
	avg_api_duration_ms REAL NOT NULL DEFAULT 0,
	model_breakdown TEXT NOT NULL DEFAULT ''
)`

// LibSQLStore keeps summary rows in a Turso/libsql table, one row per
// date, the same 21 columns as the flat sheet.
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore connects to Turso and ensures the summary table exists.
// Pool settings stay minimal because Turso aggressively closes idle
// Hrana streams.
func NewLibSQLStore(databaseURL, authToken string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", databaseURL+"?authToken="+authToken)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &LibSQLStore{db: db}, nil
}

func (s *LibSQLStore) Close() error {
	return s.db.Close()
}

func (s *LibSQLStore) Append(ctx context.Context, row stats.DailySummary) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT date FROM daily_summaries WHERE date = ?`, row.Date).Scan(&existing)
	switch {
	case err == nil:
		log.Printf("date %s already exists in daily_summaries, skipping", row.Date)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check duplicate: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (
			date, sessions, active_time_hours, user_prompts, api_calls,
			total_cost_usd, input_tokens, output_tokens, cache_read_tokens,
			cache_creation_tokens, total_tokens, lines_added, lines_removed,
			commits, pull_requests, tool_calls, tool_success_rate_pct,
			top_tools, api_errors, avg_api_duration_ms, model_breakdown
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Date, row.Sessions, row.ActiveTimeHours, row.UserPrompts, row.APICalls,
		row.TotalCostUSD, row.InputTokens, row.OutputTokens, row.CacheReadTokens,
		row.CacheCreationTokens, row.TotalTokens, row.LinesAdded, row.LinesRemoved,
		row.Commits, row.PullRequests, row.ToolCalls, row.ToolSuccessRatePct,
		row.TopTools, row.APIErrors, row.AvgAPIDurationMS, row.ModelBreakdown,
	)
	if err != nil {
		return fmt.Errorf("insert row for %s: %w", row.Date, err)
	}
	return nil
}

func (s *LibSQLStore) ReadMonth(ctx context.Context, year, month int) (map[string]stats.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, sessions, active_time_hours, user_prompts, api_calls,
			total_cost_usd, input_tokens, output_tokens, cache_read_tokens,
			cache_creation_tokens, total_tokens, lines_added, lines_removed,
			commits, pull_requests, tool_calls, tool_success_rate_pct,
			top_tools, api_errors, avg_api_duration_ms, model_breakdown
		FROM daily_summaries WHERE date LIKE ?`, monthPrefix(year, month)+"%")
	if err != nil {
		return nil, fmt.Errorf("read month: %w", err)
	}
	defer rows.Close()

	out := make(map[string]stats.DailySummary)
	for rows.Next() {
		var d stats.DailySummary
		if err := rows.Scan(
			&d.Date, &d.Sessions, &d.ActiveTimeHours, &d.UserPrompts, &d.APICalls,
			&d.TotalCostUSD, &d.InputTokens, &d.OutputTokens, &d.CacheReadTokens,
			&d.CacheCreationTokens, &d.TotalTokens, &d.LinesAdded, &d.LinesRemoved,
			&d.Commits, &d.PullRequests, &d.ToolCalls, &d.ToolSuccessRatePct,
			&d.TopTools, &d.APIErrors, &d.AvgAPIDurationMS, &d.ModelBreakdown,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out[d.Date] = d
	}
	return out, rows.Err()
}
