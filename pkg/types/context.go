package types

// ContextKey is the type used for values stored on a request context.
type ContextKey string

const (
	// ContextKeyUserID carries the authenticated user ID.
	ContextKeyUserID ContextKey = "user_id"
	// ContextKeySessionID carries the client session ID.
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyRequestSource marks where a request entered the system.
	ContextKeyRequestSource ContextKey = "request_source"
	// ContextKeyIngestionSource marks which ingestion run produced a log entry.
	ContextKeyIngestionSource ContextKey = "ingestion_source"
)
