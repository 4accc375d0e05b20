package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eora-ai/recall-go/pkg/analysis"
	"github.com/eora-ai/recall-go/pkg/embedder"
	embmock "github.com/eora-ai/recall-go/pkg/embedder/mock"
	embopenai "github.com/eora-ai/recall-go/pkg/embedder/openai"
	"github.com/eora-ai/recall-go/pkg/recall"
	"github.com/eora-ai/recall-go/pkg/storage"
	"github.com/eora-ai/recall-go/pkg/storage/inmemory"
	"github.com/eora-ai/recall-go/pkg/storage/mysql"
	"github.com/eora-ai/recall-go/pkg/storage/postgres"
	"github.com/eora-ai/recall-go/pkg/storage/sqlite"
	"github.com/eora-ai/recall-go/pkg/strategy"
	"github.com/eora-ai/recall-go/pkg/vector"
	vchromem "github.com/eora-ai/recall-go/pkg/vector/chromem"
)

// maxScopeIDLen bounds owner and session identifiers.
const maxScopeIDLen = 256

// Service is the memory recall engine.
//
// A Service stores memories with derived recall metadata and answers recall
// queries by fanning them out across eight concurrent strategies, then
// merging, temporally adjusting and ranking the combined results.
//
// All methods are safe for concurrent use.
type Service struct {
	config   *Config
	store    *storage.FallbackStore
	provider embedder.Provider
	index    vector.Index
	runner   *strategy.Runner
	adjuster *recall.TemporalAdjuster
	logger   *logrus.Logger
	node     *snowflake.Node
	caches   []*strategy.Cached

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// ServiceOption configures a Service at construction time.
type ServiceOption func(*Service)

// WithLogger sets the logger used by the service and its strategies.
func WithLogger(logger *logrus.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a recall service from the configuration.
//
// The durable store named in config.Store is opened eagerly; if it is
// unreachable the service still starts with the in-process store alone and
// logs the degradation.
func NewService(config *Config, opts ...ServiceOption) (*Service, error) {
	if config == nil {
		return nil, NewRecallError("NewService", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.Recall = config.Recall.withDefaults()

	svc := &Service{
		config:   config,
		adjuster: recall.NewTemporalAdjuster(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewRecallError("NewService", err)
	}
	svc.node = node

	durable, err := svc.initStore()
	if err != nil {
		svc.logger.WithField("error", err.Error()).
			Warn("durable store unavailable at startup, running on in-process memory only")
		durable = nil
	}
	svc.store = storage.NewFallbackStore(durable, inmemory.New(), svc.logger)

	if err := svc.initEmbedder(); err != nil {
		_ = svc.store.Close()
		return nil, err
	}
	if config.Vector.Enabled {
		svc.index = vchromem.New()
	}

	if err := svc.initRunner(); err != nil {
		_ = svc.store.Close()
		return nil, err
	}

	return svc, nil
}

// initStore opens the configured durable store. The "memory" provider has
// no durable backend; the in-process store carries everything.
func (s *Service) initStore() (storage.MemoryStore, error) {
	cfg := s.config.Store.Config

	switch s.config.Store.Provider {
	case "memory":
		return nil, nil
	case "sqlite":
		return sqlite.NewClient(&sqlite.Config{
			DBPath:    configString(cfg, "db_path", "./recall.db"),
			TableName: configString(cfg, "table_name", "memories"),
		})
	case "postgres":
		return postgres.NewClient(&postgres.Config{
			Host:      configString(cfg, "host", "localhost"),
			Port:      configInt(cfg, "port", 5432),
			User:      configString(cfg, "user", "postgres"),
			Password:  configString(cfg, "password", ""),
			DBName:    configString(cfg, "db_name", "recall"),
			TableName: configString(cfg, "table_name", "memories"),
			SSLMode:   configString(cfg, "ssl_mode", "disable"),
		})
	case "mysql":
		return mysql.NewClient(&mysql.Config{
			Host:      configString(cfg, "host", "127.0.0.1"),
			Port:      configInt(cfg, "port", 3306),
			User:      configString(cfg, "user", "root"),
			Password:  configString(cfg, "password", ""),
			DBName:    configString(cfg, "db_name", "recall"),
			TableName: configString(cfg, "table_name", "memories"),
		})
	default:
		return nil, NewRecallError("initStore", ErrInvalidConfig)
	}
}

func (s *Service) initEmbedder() error {
	if s.config.Embedder == nil {
		return nil
	}

	switch s.config.Embedder.Provider {
	case "openai":
		client, err := embopenai.NewClient(&embopenai.Config{
			APIKey:     s.config.Embedder.APIKey,
			Model:      s.config.Embedder.Model,
			BaseURL:    s.config.Embedder.BaseURL,
			Dimensions: s.config.Embedder.Dimensions,
		})
		if err != nil {
			return NewRecallError("initEmbedder", err)
		}
		s.provider = client
	case "mock":
		s.provider = embmock.New(s.config.Embedder.Dimensions)
	default:
		return NewRecallError("initEmbedder", ErrInvalidConfig)
	}
	return nil
}

// initRunner builds the eight strategies over the fallback store, wrapping
// each in a result cache when caching is configured.
func (s *Service) initRunner() error {
	strategies := []strategy.Strategy{
		strategy.NewLexical(s.store),
		strategy.NewSemantic(s.store, s.provider, s.index),
		strategy.NewEmotion(s.store),
		strategy.NewBelief(s.store),
		strategy.NewContext(s.store),
		strategy.NewTemporal(s.store),
		strategy.NewAssociation(s.store),
		strategy.NewPattern(s.store),
	}

	if ttl := s.config.Recall.CacheTTL; ttl > 0 {
		for i, st := range strategies {
			cached, err := strategy.NewCached(st, ttl)
			if err != nil {
				return NewRecallError("initRunner", err)
			}
			strategies[i] = cached
			if c, ok := cached.(*strategy.Cached); ok {
				s.caches = append(s.caches, c)
			}
		}
	}

	s.runner = strategy.NewRunner(strategies, s.config.Recall.StrategyTimeout, s.logger)
	return nil
}

// Store saves a memory and returns its ID.
//
// Keywords, emotion tags and belief tags are derived from the content at
// store time. When an embedder and vector index are configured the content
// is embedded and indexed as well; embedding failures degrade the memory to
// term-based recall rather than failing the call.
func (s *Service) Store(ctx context.Context, content string, opts ...StoreOption) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, NewRecallError("Store", err)
	}
	if strings.TrimSpace(content) == "" {
		return 0, NewRecallError("Store", ErrInvalidInput)
	}

	options := applyStoreOptions(opts)
	if err := validateScopeID(options.OwnerID); err != nil {
		return 0, NewRecallError("Store", err)
	}
	if err := validateScopeID(options.SessionID); err != nil {
		return 0, NewRecallError("Store", err)
	}

	memory := &storage.Memory{
		ID:          s.node.Generate().Int64(),
		OwnerID:     options.OwnerID,
		SessionID:   options.SessionID,
		Content:     content,
		MemoryType:  options.MemoryType,
		Importance:  options.Importance,
		Keywords:    analysis.ExtractKeywords(content),
		EmotionTags: analysis.DetectEmotions(content),
		BeliefTags:  analysis.DetectBeliefs(content),
		Metadata:    options.Metadata,
		CreatedAt:   time.Now(),
	}

	if s.provider != nil && s.index != nil {
		embedding, err := s.provider.Embed(ctx, content)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"memory_id": memory.ID,
				"error":     err.Error(),
			}).Warn("embedding failed, memory stored without vector")
		} else {
			memory.Embedding = embedding
		}
	}

	if err := s.store.Insert(ctx, memory); err != nil {
		return 0, NewRecallError("Store", err)
	}

	if s.index != nil && memory.Embedding != nil {
		if err := s.index.Add(ctx, memory.ID, memory.OwnerID, content, memory.Embedding); err != nil {
			s.logger.WithFields(logrus.Fields{
				"memory_id": memory.ID,
				"error":     err.Error(),
			}).Warn("vector indexing failed, memory recallable by terms only")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"memory_id": memory.ID,
		"owner_id":  memory.OwnerID,
		"type":      memory.MemoryType,
	}).Debug("memory stored")

	return memory.ID, nil
}

// StoreInteraction saves one user/assistant exchange as two conversation
// memories and returns their IDs in that order.
func (s *Service) StoreInteraction(ctx context.Context, userMessage, assistantMessage string, opts ...StoreOption) ([]int64, error) {
	userID, err := s.Store(ctx, userMessage, append(opts, WithMemoryType(MemoryTypeConversation))...)
	if err != nil {
		return nil, err
	}
	assistantID, err := s.Store(ctx, assistantMessage, append(opts, WithMemoryType(MemoryTypeConversation))...)
	if err != nil {
		return []int64{userID}, err
	}
	return []int64{userID, assistantID}, nil
}

// Recall answers a query with ranked memories.
//
// All eight strategies run concurrently under individual time budgets; a
// whole-call timeout bounds the worst case. Strategies that fail or time
// out are skipped, so a recall returns whatever the surviving strategies
// found. An empty query recalls by recency alone.
func (s *Service) Recall(ctx context.Context, query string, opts ...RecallOption) ([]RecallResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, NewRecallError("Recall", err)
	}

	options := applyRecallOptions(opts)
	if err := validateScopeID(options.OwnerID); err != nil {
		return nil, NewRecallError("Recall", err)
	}
	if err := validateScopeID(options.SessionID); err != nil {
		return nil, NewRecallError("Recall", err)
	}

	limit := options.Limit
	if limit <= 0 {
		limit = s.config.Recall.DefaultLimit
	}
	if limit > s.config.Recall.MaxLimit {
		limit = s.config.Recall.MaxLimit
	}

	scope := strategy.Scope{OwnerID: options.OwnerID, SessionID: options.SessionID}
	log := s.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"owner_id":   scope.OwnerID,
		"limit":      limit,
	})

	runCtx, cancel := context.WithTimeout(ctx, s.config.Recall.OverallTimeout)
	defer cancel()

	// Strategies over-fetch so that merging and ranking have slack to
	// reorder before the final cut.
	fetch := limit * 2

	var outcomes []strategy.Outcome
	var err error
	if strings.TrimSpace(query) == "" {
		outcomes, err = s.runner.RunOnly(runCtx, query, scope, fetch, strategy.NameTemporal)
	} else {
		outcomes, err = s.runner.Run(runCtx, query, scope, fetch)
	}
	if err != nil && len(outcomes) == 0 {
		return nil, NewRecallError("Recall", err)
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	if failed == len(outcomes) {
		log.Warn("all recall strategies failed")
		return []RecallResult{}, nil
	}

	results := recall.Merge(outcomes)
	s.adjuster.Adjust(query, results)
	recall.Rank(query, results)
	if len(results) > limit {
		results = results[:limit]
	}

	log.WithFields(logrus.Fields{
		"found":             len(results),
		"failed_strategies": failed,
	}).Debug("recall finished")

	s.touchRecalled(results)

	return toPublicResults(results), nil
}

// touchRecalled bumps recall bookkeeping in the background so it never
// delays the response. Close waits for in-flight updates.
func (s *Service) touchRecalled(results []*recall.Result) {
	if len(results) == 0 {
		return
	}

	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.Memory.ID
	}
	at := time.Now()

	// A concurrent Close may already be waiting on the group; Add only
	// while still open, under the same lock Close takes.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.store.TouchRecalled(ctx, ids, at)
	}()
}

// CountMemories returns the number of stored memories in the given scope.
func (s *Service) CountMemories(ctx context.Context, opts ...RecallOption) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, NewRecallError("CountMemories", err)
	}

	options := applyRecallOptions(opts)
	count, err := s.store.Count(ctx, &storage.Filter{
		OwnerID:   options.OwnerID,
		SessionID: options.SessionID,
	})
	if err != nil {
		return 0, NewRecallError("CountMemories", err)
	}
	return count, nil
}

// Stats summarizes the service's stored memories and capabilities.
func (s *Service) Stats(ctx context.Context, opts ...RecallOption) (*Stats, error) {
	if err := s.checkOpen(); err != nil {
		return nil, NewRecallError("Stats", err)
	}

	options := applyRecallOptions(opts)
	scope := storage.Filter{OwnerID: options.OwnerID, SessionID: options.SessionID}

	total, err := s.store.Count(ctx, &scope)
	if err != nil {
		return nil, NewRecallError("Stats", err)
	}

	byType := make(map[string]int)
	for _, memoryType := range []string{
		MemoryTypeConversation, MemoryTypeFact, MemoryTypePreference, MemoryTypeHabit,
	} {
		typed := scope
		typed.MemoryTypes = []string{memoryType}
		count, err := s.store.Count(ctx, &typed)
		if err != nil {
			return nil, NewRecallError("Stats", err)
		}
		if count > 0 {
			byType[memoryType] = count
		}
	}

	return &Stats{
		TotalMemories:      total,
		MemoriesByType:     byType,
		VectorIndexEnabled: s.index != nil,
		EmbedderEnabled:    s.provider != nil,
	}, nil
}

// Close releases all resources. It waits for background recall bookkeeping
// to finish first. Close is idempotent.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()

	for _, cache := range s.caches {
		cache.Close()
	}

	var firstErr error
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			firstErr = err
		}
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return NewRecallError("Close", firstErr)
}

func (s *Service) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// validateScopeID rejects identifiers with control characters or excessive
// length. Empty identifiers are valid and mean "unscoped".
func validateScopeID(id string) error {
	if len(id) > maxScopeIDLen {
		return fmt.Errorf("%w: identifier longer than %d bytes", ErrInvalidScope, maxScopeIDLen)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: identifier contains control characters", ErrInvalidScope)
		}
	}
	return nil
}

func configString(cfg map[string]interface{}, key, fallback string) string {
	if cfg == nil {
		return fallback
	}
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func configInt(cfg map[string]interface{}, key string, fallback int) int {
	if cfg == nil {
		return fallback
	}
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}
