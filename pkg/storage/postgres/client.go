// Package postgres provides the PostgreSQL implementation of the memory store.
//
// List-valued derived fields and the optional embedding are stored as JSONB;
// token and tag filters are applied in memory after loading candidate rows so
// that all backends share identical filter semantics.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/eora-ai/recall-go/pkg/storage"
)

// Client implements storage.MemoryStore using PostgreSQL as the backend.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains PostgreSQL connection configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
	SSLMode   string
}

// NewClient creates a new PostgreSQL memory store client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", storage.ErrUnavailable)
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
			owner_id TEXT NOT NULL DEFAULT '',
			session_id TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			memory_type TEXT NOT NULL DEFAULT '',
			importance DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			keywords JSONB,
			emotion_tags JSONB,
			belief_tags JSONB,
			embedding JSONB,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			recall_count INTEGER NOT NULL DEFAULT 0,
			last_recalled_at TIMESTAMPTZ
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

// Insert inserts a memory into the PostgreSQL database.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, session_id, content, memory_type, importance,
		 keywords, emotion_tags, belief_tags, embedding, metadata,
		 created_at, recall_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.tableName)

	keywords, emotionTags, beliefTags, embedding, metadata, err := marshalColumns(memory)
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
		keywords,
		emotionTags,
		beliefTags,
		embedding,
		metadata,
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
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET recall_count = recall_count + 1, last_recalled_at = $1
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

func marshalColumns(memory *storage.Memory) (keywords, emotionTags, beliefTags, embedding, metadata []byte, err error) {
	if keywords, err = json.Marshal(memory.Keywords); err != nil {
		return
	}
	if emotionTags, err = json.Marshal(memory.EmotionTags); err != nil {
		return
	}
	if beliefTags, err = json.Marshal(memory.BeliefTags); err != nil {
		return
	}
	if embedding, err = json.Marshal(memory.Embedding); err != nil {
		return
	}
	metadata, err = json.Marshal(memory.Metadata)
	return
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
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "bad connection") || strings.Contains(msg, "closed") {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}
