package guard

import (
	"context"
	"testing"
	"time"
)

func TestNewLimits_NonPositiveValuesFallBackToDefaults(t *testing.T) {
	l := NewLimits(0, -1)
	if l.MaxConcurrentCommands <= 0 {
		t.Error("MaxConcurrentCommands should fall back to a positive default")
	}
	if l.MaxOpenDocuments <= 0 {
		t.Error("MaxOpenDocuments should fall back to a positive default")
	}
}

func TestNewLimits_PositiveValuesPreserved(t *testing.T) {
	l := NewLimits(3, 5)
	if l.MaxConcurrentCommands != 3 || l.MaxOpenDocuments != 5 {
		t.Errorf("limits = %+v, want MaxConcurrentCommands=3 MaxOpenDocuments=5", l)
	}
}

func TestController_CommandSemaphoreBlocksAtCapacity(t *testing.T) {
	c := NewController(NewLimits(1, 1))
	ctx := context.Background()
	if err := c.AcquireCommand(ctx); err != nil {
		t.Fatalf("first AcquireCommand failed: %v", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := c.AcquireCommand(ctxTimeout); err == nil {
		t.Error("second AcquireCommand should block until the context deadline since capacity is 1")
	}

	c.ReleaseCommand()
	if err := c.AcquireCommand(ctx); err != nil {
		t.Errorf("AcquireCommand after Release should succeed: %v", err)
	}
}

func TestController_DocumentSemaphoreIndependentOfCommandSemaphore(t *testing.T) {
	c := NewController(NewLimits(1, 2))
	ctx := context.Background()
	if err := c.AcquireCommand(ctx); err != nil {
		t.Fatalf("AcquireCommand failed: %v", err)
	}
	if err := c.AcquireDocument(ctx); err != nil {
		t.Errorf("AcquireDocument should not be blocked by command capacity: %v", err)
	}
	if err := c.AcquireDocument(ctx); err != nil {
		t.Errorf("second AcquireDocument within its own cap of 2 should succeed: %v", err)
	}
	c.ReleaseCommand()
	c.ReleaseDocument()
	c.ReleaseDocument()
}

func TestController_LimitsSnapshotReflectsConstruction(t *testing.T) {
	c := NewController(NewLimits(4, 9))
	snap := c.LimitsSnapshot()
	if snap.MaxConcurrentCommands != 4 || snap.MaxOpenDocuments != 9 {
		t.Errorf("snapshot = %+v, want 4/9", snap)
	}
}
