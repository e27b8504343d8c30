// Package guard provides concurrency guardrails for the document engine:
// a weighted-semaphore cap on concurrently executing commands, and a
// separate cap on simultaneously open Documents, so a command surface
// (cmd/documentd or any other embedder) cannot overrun memory or
// spill-disk capacity.
package guard

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/eruostudio/sheetcore/config"
)

// Limits captures the concurrency and sizing guardrails for a running
// engine instance.
type Limits struct {
	MaxConcurrentCommands int
	MaxOpenDocuments      int

	MaxPayloadBytes int
	MaxCellsPerOp   int
	SearchPageCells int
	SearchPageRows  int

	OperationTimeout      time.Duration
	AcquireRequestTimeout time.Duration
}

// NewLimits initializes Limits with the package defaults when the caller
// supplies non-positive concurrency values.
func NewLimits(maxConcurrentCommands, maxOpenDocuments int) Limits {
	if maxConcurrentCommands <= 0 {
		maxConcurrentCommands = config.DefaultMaxConcurrentCommands
	}
	if maxOpenDocuments <= 0 {
		maxOpenDocuments = config.DefaultMaxOpenDocuments
	}
	return Limits{
		MaxConcurrentCommands: maxConcurrentCommands,
		MaxOpenDocuments:      maxOpenDocuments,
		MaxPayloadBytes:       config.DefaultMaxPayloadBytes,
		MaxCellsPerOp:         config.DefaultMaxCellsPerOp,
		SearchPageCells:       config.DefaultSearchPageCells,
		SearchPageRows:        config.DefaultSearchPageRows,
		OperationTimeout:      config.DefaultOperationTimeout,
		AcquireRequestTimeout: config.DefaultAcquireRequestTimeout,
	}
}

// Controller coordinates the weighted semaphores backing Limits.
type Controller struct {
	limits           Limits
	commandSemaphore *semaphore.Weighted
	documentSemaphore *semaphore.Weighted
}

// NewController constructs a Controller for the given limits.
func NewController(limits Limits) *Controller {
	return &Controller{
		limits:            limits,
		commandSemaphore:  semaphore.NewWeighted(int64(limits.MaxConcurrentCommands)),
		documentSemaphore: semaphore.NewWeighted(int64(limits.MaxOpenDocuments)),
	}
}

// AcquireCommand reserves capacity for one in-flight command.
func (c *Controller) AcquireCommand(ctx context.Context) error {
	return c.commandSemaphore.Acquire(ctx, 1)
}

// ReleaseCommand frees previously-acquired command capacity.
func (c *Controller) ReleaseCommand() {
	c.commandSemaphore.Release(1)
}

// AcquireDocument reserves an open-document slot.
func (c *Controller) AcquireDocument(ctx context.Context) error {
	return c.documentSemaphore.Acquire(ctx, 1)
}

// ReleaseDocument frees an open-document slot.
func (c *Controller) ReleaseDocument() {
	c.documentSemaphore.Release(1)
}

// LimitsSnapshot exposes the configured guardrails for telemetry and
// discovery.
func (c *Controller) LimitsSnapshot() Limits {
	return c.limits
}
