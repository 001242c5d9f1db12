// Package ledger persists one row per completed task in a local sqlite
// database, plus content-addressed copies of the prompt and scaffold
// bodies each cycle ran with. Rows are append-only; nothing in the
// write path updates or deletes.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hash TEXT UNIQUE NOT NULL,
    body TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS scaffolds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hash TEXT UNIQUE NOT NULL,
    body TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cycles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    cycle INTEGER NOT NULL,
    task_id TEXT NOT NULL,
    persona TEXT NOT NULL,
    success INTEGER NOT NULL,
    final_state TEXT NOT NULL,
    expected_url TEXT NOT NULL,
    predicted_url TEXT,
    prompt_id INTEGER NOT NULL,
    scaffold_id INTEGER NOT NULL,
    attempts INTEGER NOT NULL,
    subagent_tokens_in INTEGER,
    subagent_tokens_out INTEGER,
    subagent_cost REAL,
    critique_tokens_in INTEGER,
    critique_tokens_out INTEGER,
    critique_cost REAL,
    total_cost REAL,
    wall_time_ms INTEGER,
    critique_state TEXT,
    critique_justification TEXT,
    raw_response TEXT,
    raw_critique TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Entry is one persisted task outcome. Pointer fields distinguish
// "provider did not report it" from zero.
type Entry struct {
	RunID        string
	Cycle        int
	TaskID       string
	Persona      string
	Success      bool
	FinalState   string
	ExpectedURL  string
	PredictedURL *string
	PromptID     int64
	ScaffoldID   int64
	Attempts     int

	SubagentTokensIn  *int
	SubagentTokensOut *int
	SubagentCost      *float64
	CritiqueTokensIn  *int
	CritiqueTokensOut *int
	CritiqueCost      *float64
	TotalCost         float64
	WallTime          time.Duration

	CritiqueState         string
	CritiqueJustification string
	RawResponse           json.RawMessage
	RawCritique           json.RawMessage
}

// Store wraps the sqlite handle. It is opened once per run and written
// to sequentially; there is no concurrent writer.
type Store struct {
	db *sql.DB
}

// Open creates the database (and parent directory) if needed and
// initializes the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create ledger directory: %w", err)
			}
		}
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite3: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SavePrompt stores a prompt body content-addressed and returns its row
// id. Saving the same body twice returns the same id.
func (s *Store) SavePrompt(ctx context.Context, body string) (int64, error) {
	return s.saveVersioned(ctx, "prompts", body)
}

// SaveScaffold stores a serialized scaffolding body content-addressed.
func (s *Store) SaveScaffold(ctx context.Context, body string) (int64, error) {
	return s.saveVersioned(ctx, "scaffolds", body)
}

func (s *Store) saveVersioned(ctx context.Context, table, body string) (int64, error) {
	sum := sha256.Sum256([]byte(body))
	digest := hex.EncodeToString(sum[:])
	var id int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id FROM %s WHERE hash = ?", table), digest).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup %s: %w", table, err)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (hash, body) VALUES (?, ?)", table), digest, body)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return res.LastInsertId()
}

// LogTask appends one cycles row.
func (s *Store) LogTask(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycles (
			run_id, cycle, task_id, persona, success, final_state,
			expected_url, predicted_url, prompt_id, scaffold_id, attempts,
			subagent_tokens_in, subagent_tokens_out, subagent_cost,
			critique_tokens_in, critique_tokens_out, critique_cost,
			total_cost, wall_time_ms,
			critique_state, critique_justification,
			raw_response, raw_critique
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Cycle, e.TaskID, e.Persona, boolToInt(e.Success), e.FinalState,
		e.ExpectedURL, e.PredictedURL, e.PromptID, e.ScaffoldID, e.Attempts,
		e.SubagentTokensIn, e.SubagentTokensOut, e.SubagentCost,
		e.CritiqueTokensIn, e.CritiqueTokensOut, e.CritiqueCost,
		e.TotalCost, e.WallTime.Milliseconds(),
		e.CritiqueState, e.CritiqueJustification,
		nullableText(e.RawResponse), nullableText(e.RawCritique),
	)
	if err != nil {
		return fmt.Errorf("insert cycles row: %w", err)
	}
	return nil
}

// CountTasks returns the number of cycles rows, used by tests and the
// end-of-run summary.
func (s *Store) CountTasks(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cycles").Scan(&n)
	return n, err
}

// nullableText keeps a raw column NULL when no payload was captured,
// so "no response" stays distinguishable from an empty response.
func nullableText(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
