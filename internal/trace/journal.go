// Package trace provides an append-only telemetry journal for circuit
// activity. The journal records observability events (plasticity decisions,
// transmission samples, node failures) in a SQLite database. It is never
// read back to reconstruct a circuit; graph state lives only in memory.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Event kinds recorded by the engine and the run loop.
const (
	KindPrune      = "prune"
	KindStrengthen = "strengthen"
	KindRewire     = "rewire"
	KindFailover   = "failover"
	KindCompensate = "compensate"
	KindTransmit   = "transmit"
	KindNodeFailed = "node_failed"
)

// Event is a single journal entry. Detail carries event-specific fields and
// is stored as JSON.
type Event struct {
	Time   time.Time      `json:"time"`
	Kind   string         `json:"kind"`
	NodeID string         `json:"node_id,omitempty"`
	EdgeID string         `json:"edge_id,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// Sink accepts journal events. The engine writes through this interface so
// that callers without a database can pass nil.
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// Journal is a SQLite-backed Sink.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	time    TEXT NOT NULL,
	kind    TEXT NOT NULL,
	node_id TEXT NOT NULL DEFAULT '',
	edge_id TEXT NOT NULL DEFAULT '',
	detail  TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
`

// Open creates or opens the journal database at dir/synaptic.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	dbPath := filepath.Join(dir, "synaptic.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends an event. A zero Time is stamped with the current time.
func (j *Journal) Record(ctx context.Context, ev Event) error {
	if ev.Kind == "" {
		return fmt.Errorf("event kind is required")
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	detail := "{}"
	if len(ev.Detail) > 0 {
		data, err := json.Marshal(ev.Detail)
		if err != nil {
			return fmt.Errorf("marshal event detail: %w", err)
		}
		detail = string(data)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (time, kind, node_id, edge_id, detail) VALUES (?, ?, ?, ?, ?)`,
		ev.Time.Format(time.RFC3339Nano), ev.Kind, ev.NodeID, ev.EdgeID, detail)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns the newest events, most recent first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		`SELECT time, kind, node_id, edge_id, detail FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ts, kind, nodeID, edgeID, detail string
		)
		if err := rows.Scan(&ts, &kind, &nodeID, &edgeID, &detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		ev := Event{Kind: kind, NodeID: nodeID, EdgeID: edgeID}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.Time = t
		}
		if detail != "" && detail != "{}" {
			var fields map[string]any
			if err := json.Unmarshal([]byte(detail), &fields); err == nil {
				ev.Detail = fields
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountByKind returns the number of recorded events per kind.
func (j *Journal) CountByKind(ctx context.Context) (map[string]int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM events GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
