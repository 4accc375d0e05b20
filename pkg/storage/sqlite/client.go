// Package sqlite provides the SQLite implementation of the memory store.
//
// SQLite is a lightweight, file-based database suitable for local development
// and small deployments. Derived list fields (keywords, tags) and the optional
// embedding are stored as JSON strings in TEXT columns; token and tag filters
// are applied in memory after loading candidate rows so that all backends
// share identical filter semantics.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Client implements storage.MemoryStore using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB

	// tableName is the name of the table storing memories.
	tableName string
}

// Config contains configuration for creating a SQLite memory store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use. Defaults to "memories".
	TableName string
}

// NewClient creates a new SQLite memory store client.
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", storage.ErrUnavailable)
	}

	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	client := &Client{
		db:        db,
		tableName: tableName,
	}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			owner_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			memory_type TEXT NOT NULL DEFAULT '',
			importance REAL NOT NULL DEFAULT 0.5,
			keywords TEXT,
			emotion_tags TEXT,
			belief_tags TEXT,
			embedding TEXT,
			metadata TEXT,
			created_at DATETIME NOT NULL,
			recall_count INTEGER NOT NULL DEFAULT 0,
			last_recalled_at DATETIME
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_owner_session ON %s(owner_id, session_id)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert inserts a memory into the SQLite database.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, session_id, content, memory_type, importance,
		 keywords, emotion_tags, belief_tags, embedding, metadata,
		 created_at, recall_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	cols, err := marshalColumns(memory)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	_, err = c.db.ExecContext(ctx, query,
		memory.ID,
		memory.OwnerID,
		memory.SessionID,
		memory.Content,
		memory.MemoryType,
		memory.Importance,
		cols.keywords,
		cols.emotionTags,
		cols.beliefTags,
		cols.embedding,
		cols.metadata,
		memory.CreatedAt,
		memory.RecallCount,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", wrapUnavailable(err))
	}

	return nil
}

// ScanByFilter returns memories matching the filter.
//
// Owner, session and time-range conditions are pushed into the SQL query;
// token and tag conditions are applied in memory via Filter.Matches.
func (c *Client) ScanByFilter(ctx context.Context, filter *storage.Filter, sort storage.Sort, limit int) ([]*storage.Memory, error) {
	whereClause, args := buildWhereClause(filter)

	query := fmt.Sprintf(`
		SELECT id, owner_id, session_id, content, memory_type, importance,
		       keywords, emotion_tags, belief_tags, embedding, metadata,
		       created_at, recall_count, last_recalled_at
		FROM %s
		%s
		ORDER BY created_at DESC, id ASC
	`, c.tableName, whereClause)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ScanByFilter: %w", wrapUnavailable(err))
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		memory, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		if filter.Matches(memory) {
			memories = append(memories, memory)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return storage.SortMemories(memories, sort, limit), nil
}

// Count returns the number of memories matching the filter.
func (c *Client) Count(ctx context.Context, filter *storage.Filter) (int, error) {
	memories, err := c.ScanByFilter(ctx, filter, storage.SortNone, 0)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return len(memories), nil
}

// TouchRecalled updates recall bookkeeping for the given IDs in one statement.
func (c *Client) TouchRecalled(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := []interface{}{at}
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET recall_count = recall_count + 1, last_recalled_at = ?
		WHERE id IN (%s)
	`, c.tableName, strings.Join(placeholders, ", "))

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("TouchRecalled: %w", wrapUnavailable(err))
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// scanMemory scans a memory from a database row set.
func scanMemory(rows *sql.Rows) (*storage.Memory, error) {
	var memory storage.Memory
	var keywordsStr, emotionStr, beliefStr, embeddingStr, metadataStr sql.NullString
	var lastRecalledAt sql.NullTime

	err := rows.Scan(
		&memory.ID,
		&memory.OwnerID,
		&memory.SessionID,
		&memory.Content,
		&memory.MemoryType,
		&memory.Importance,
		&keywordsStr,
		&emotionStr,
		&beliefStr,
		&embeddingStr,
		&metadataStr,
		&memory.CreatedAt,
		&memory.RecallCount,
		&lastRecalledAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalColumns(&memory, keywordsStr, emotionStr, beliefStr, embeddingStr, metadataStr); err != nil {
		return nil, err
	}

	if lastRecalledAt.Valid {
		memory.LastRecalledAt = &lastRecalledAt.Time
	}

	return &memory, nil
}

// jsonColumns holds the JSON-encoded list and map fields for one row.
type jsonColumns struct {
	keywords    string
	emotionTags string
	beliefTags  string
	embedding   string
	metadata    string
}

func marshalColumns(memory *storage.Memory) (*jsonColumns, error) {
	keywords, err := json.Marshal(memory.Keywords)
	if err != nil {
		return nil, err
	}
	emotionTags, err := json.Marshal(memory.EmotionTags)
	if err != nil {
		return nil, err
	}
	beliefTags, err := json.Marshal(memory.BeliefTags)
	if err != nil {
		return nil, err
	}
	embedding, err := json.Marshal(memory.Embedding)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(memory.Metadata)
	if err != nil {
		return nil, err
	}
	return &jsonColumns{
		keywords:    string(keywords),
		emotionTags: string(emotionTags),
		beliefTags:  string(beliefTags),
		embedding:   string(embedding),
		metadata:    string(metadata),
	}, nil
}

func unmarshalColumns(memory *storage.Memory, keywords, emotionTags, beliefTags, embedding, metadata sql.NullString) error {
	if keywords.Valid && keywords.String != "" {
		if err := json.Unmarshal([]byte(keywords.String), &memory.Keywords); err != nil {
			return fmt.Errorf("parse keywords: %w", err)
		}
	}
	if emotionTags.Valid && emotionTags.String != "" {
		if err := json.Unmarshal([]byte(emotionTags.String), &memory.EmotionTags); err != nil {
			return fmt.Errorf("parse emotion tags: %w", err)
		}
	}
	if beliefTags.Valid && beliefTags.String != "" {
		if err := json.Unmarshal([]byte(beliefTags.String), &memory.BeliefTags); err != nil {
			return fmt.Errorf("parse belief tags: %w", err)
		}
	}
	if embedding.Valid && embedding.String != "" {
		if err := json.Unmarshal([]byte(embedding.String), &memory.Embedding); err != nil {
			return fmt.Errorf("parse embedding: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &memory.Metadata); err != nil {
			return fmt.Errorf("parse metadata: %w", err)
		}
	}
	return nil
}

// wrapUnavailable maps connection-level failures to storage.ErrUnavailable so
// the fallback store can recognize them. Context cancellation passes through.
func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "unable to open") ||
		strings.Contains(msg, "no such table") || strings.Contains(msg, "closed") {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}
