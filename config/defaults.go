package config

import "time"

// Default runtime limits and guardrails for the document engine. These
// values are conservative and can be overridden by future configuration
// mechanisms (env, CLI, or files). They are referenced by internal/guard
// and internal/docmanager.

const (
	// Concurrency
	DefaultMaxConcurrentCommands = 16
	DefaultMaxOpenDocuments      = 8

	// Payload and row limits
	DefaultMaxPayloadBytes  = 256 * 1024
	DefaultMaxCellsPerOp    = 50_000
	DefaultSearchPageCells  = 5_000
	DefaultSearchPageRows   = 1_000
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Document lifecycle
	DefaultDocumentIdleTTL      = 30 * time.Minute
	DefaultDocumentCleanupEvery = time.Minute

	// Selection-command coalescing window
	DefaultSelectionCoalesceWindow = 500 * time.Millisecond
)
