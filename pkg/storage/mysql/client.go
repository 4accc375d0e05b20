// Package mysql provides the MySQL implementation of the memory store.
//
// Derived list fields and the optional embedding are stored as JSON columns;
// token and tag filters are applied in memory after loading candidate rows so
// that all backends share identical filter semantics.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Client implements storage.MemoryStore using MySQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains MySQL connection configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewClient creates a new MySQL memory store client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", storage.ErrUnavailable)
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
			id BIGINT PRIMARY KEY,
			owner_id VARCHAR(128) NOT NULL DEFAULT '',
			session_id VARCHAR(128) NOT NULL DEFAULT '',
			content LONGTEXT NOT NULL,
			memory_type VARCHAR(64) NOT NULL DEFAULT '',
			importance DOUBLE NOT NULL DEFAULT 0.5,
			keywords JSON,
			emotion_tags JSON,
			belief_tags JSON,
			embedding JSON,
			metadata JSON,
			created_at DATETIME(6) NOT NULL,
			recall_count INT NOT NULL DEFAULT 0,
			last_recalled_at DATETIME(6),
			INDEX idx_owner_session (owner_id, session_id)
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert inserts a memory into the MySQL database.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, session_id, content, memory_type, importance,
		 keywords, emotion_tags, belief_tags, embedding, metadata,
		 created_at, recall_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	keywords, err := json.Marshal(memory.Keywords)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	emotionTags, err := json.Marshal(memory.EmotionTags)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	beliefTags, err := json.Marshal(memory.BeliefTags)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	embedding, err := json.Marshal(memory.Embedding)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	metadata, err := json.Marshal(memory.Metadata)
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
		string(keywords),
		string(emotionTags),
		string(beliefTags),
		string(embedding),
		string(metadata),
		memory.CreatedAt,
		memory.RecallCount,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", wrapUnavailable(err))
	}

	return nil
}

// ScanByFilter returns memories matching the filter.
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

	if err := unmarshalInto(&memory.Keywords, keywordsStr); err != nil {
		return nil, fmt.Errorf("parse keywords: %w", err)
	}
	if err := unmarshalInto(&memory.EmotionTags, emotionStr); err != nil {
		return nil, fmt.Errorf("parse emotion tags: %w", err)
	}
	if err := unmarshalInto(&memory.BeliefTags, beliefStr); err != nil {
		return nil, fmt.Errorf("parse belief tags: %w", err)
	}
	if err := unmarshalInto(&memory.Embedding, embeddingStr); err != nil {
		return nil, fmt.Errorf("parse embedding: %w", err)
	}
	if err := unmarshalInto(&memory.Metadata, metadataStr); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	if lastRecalledAt.Valid {
		memory.LastRecalledAt = &lastRecalledAt.Time
	}

	return &memory, nil
}

func unmarshalInto(dst interface{}, col sql.NullString) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

// wrapUnavailable maps connection-level failures to storage.ErrUnavailable so
// the fallback store can recognize them.
func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "invalid connection") ||
		strings.Contains(msg, "bad connection") || strings.Contains(msg, "closed") {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}
