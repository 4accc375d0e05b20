package core

// StoreOption is a function type for configuring Store operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type StoreOption func(*StoreOptions)

// StoreOptions contains configuration options for Store operations.
type StoreOptions struct {
	// OwnerID identifies who the memory belongs to.
	OwnerID string

	// SessionID identifies the conversation session.
	SessionID string

	// MemoryType categorizes the memory (conversation, fact, preference, habit).
	MemoryType string

	// Importance is the caller-assigned weight in [0, 1].
	Importance float64

	// Metadata contains additional metadata about the memory.
	Metadata map[string]interface{}
}

// WithOwnerID sets the owner for Store operations.
//
// Example:
//
//	id, _ := svc.Store(ctx, "content", core.WithOwnerID("user_001"))
func WithOwnerID(ownerID string) StoreOption {
	return func(opts *StoreOptions) {
		opts.OwnerID = ownerID
	}
}

// WithSessionID sets the session for Store operations.
func WithSessionID(sessionID string) StoreOption {
	return func(opts *StoreOptions) {
		opts.SessionID = sessionID
	}
}

// WithMemoryType sets the memory type for Store operations.
//
// Example:
//
//	id, _ := svc.Store(ctx, "content", core.WithMemoryType(core.MemoryTypeFact))
func WithMemoryType(memoryType string) StoreOption {
	return func(opts *StoreOptions) {
		opts.MemoryType = memoryType
	}
}

// WithImportance sets the importance weight for Store operations.
// Values outside [0, 1] are clamped.
func WithImportance(importance float64) StoreOption {
	return func(opts *StoreOptions) {
		opts.Importance = importance
	}
}

// WithMetadata sets metadata for Store operations.
//
// Example:
//
//	id, _ := svc.Store(ctx, "content",
//	    core.WithMetadata(map[string]interface{}{
//	        "source": "conversation",
//	    }),
//	)
func WithMetadata(metadata map[string]interface{}) StoreOption {
	return func(opts *StoreOptions) {
		opts.Metadata = metadata
	}
}

// RecallOption is a function type for configuring Recall operations.
type RecallOption func(*RecallOptions)

// RecallOptions contains configuration options for Recall operations.
type RecallOptions struct {
	// OwnerID restricts recall to one owner's memories.
	OwnerID string

	// SessionID restricts recall to one conversation session.
	SessionID string

	// Limit sets the maximum number of results to return.
	// Zero selects the service default; values above the configured
	// maximum are clamped.
	Limit int
}

// WithOwner restricts Recall to one owner's memories.
//
// Example:
//
//	results, _ := svc.Recall(ctx, "query", core.WithOwner("user_001"))
func WithOwner(ownerID string) RecallOption {
	return func(opts *RecallOptions) {
		opts.OwnerID = ownerID
	}
}

// WithSession restricts Recall to one conversation session.
func WithSession(sessionID string) RecallOption {
	return func(opts *RecallOptions) {
		opts.SessionID = sessionID
	}
}

// WithLimit sets the maximum number of results for Recall operations.
//
// Example:
//
//	results, _ := svc.Recall(ctx, "query", core.WithLimit(10))
func WithLimit(limit int) RecallOption {
	return func(opts *RecallOptions) {
		opts.Limit = limit
	}
}

// applyStoreOptions applies Store options to create StoreOptions.
func applyStoreOptions(opts []StoreOption) *StoreOptions {
	options := &StoreOptions{
		MemoryType: MemoryTypeConversation,
		Importance: 0.5,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Importance < 0 {
		options.Importance = 0
	}
	if options.Importance > 1 {
		options.Importance = 1
	}
	return options
}

// applyRecallOptions applies Recall options to create RecallOptions.
func applyRecallOptions(opts []RecallOption) *RecallOptions {
	options := &RecallOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
