package docmanager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eruostudio/sheetcore/internal/document"
)

func newDoc() *document.Document {
	return document.New(nil, 500*time.Millisecond, nil)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type countingGate struct {
	mu         sync.Mutex
	acquired   int
	alwaysDeny bool
}

func (g *countingGate) AcquireDocument(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.alwaysDeny {
		return errors.New("capacity exceeded")
	}
	g.acquired++
	return nil
}

func (g *countingGate) ReleaseDocument() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquired--
}

func TestAdopt_RegistersHandleAndReservesGateCapacity(t *testing.T) {
	gate := &countingGate{}
	m := NewManager(time.Hour, time.Hour, gate, time.Now)
	id, err := m.Adopt(context.Background(), newDoc())
	if err != nil {
		t.Fatalf("Adopt failed: %v", err)
	}
	if id == "" {
		t.Fatal("Adopt returned an empty ID")
	}
	if gate.acquired != 1 {
		t.Errorf("gate.acquired = %d, want 1", gate.acquired)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestAdopt_NilDocumentFails(t *testing.T) {
	m := NewManager(time.Hour, time.Hour, nil, nil)
	if _, err := m.Adopt(context.Background(), nil); err == nil {
		t.Fatal("Adopt(nil) should fail")
	}
}

func TestAdopt_GateDenialPropagates(t *testing.T) {
	gate := &countingGate{alwaysDeny: true}
	m := NewManager(time.Hour, time.Hour, gate, nil)
	if _, err := m.Adopt(context.Background(), newDoc()); err == nil {
		t.Fatal("expected the gate's denial to propagate")
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after a denied Adopt", m.Count())
	}
}

func TestWithRead_UnknownHandleReturnsErrHandleNotFound(t *testing.T) {
	m := NewManager(time.Hour, time.Hour, nil, nil)
	err := m.WithRead("missing", func(*document.Document) error { return nil })
	if !errors.Is(err, ErrHandleNotFound) {
		t.Errorf("err = %v, want ErrHandleNotFound", err)
	}
}

func TestWithWrite_InvokesCallbackWithTheDocument(t *testing.T) {
	m := NewManager(time.Hour, time.Hour, nil, nil)
	doc := newDoc()
	id, _ := m.Adopt(context.Background(), doc)

	var got *document.Document
	err := m.WithWrite(id, func(d *document.Document) error {
		got = d
		return nil
	})
	if err != nil {
		t.Fatalf("WithWrite failed: %v", err)
	}
	if got != doc {
		t.Error("WithWrite did not pass through the adopted document")
	}
}

func TestCloseHandle_RemovesAndReleasesGateCapacity(t *testing.T) {
	gate := &countingGate{}
	m := NewManager(time.Hour, time.Hour, gate, nil)
	id, _ := m.Adopt(context.Background(), newDoc())

	if err := m.CloseHandle(id); err != nil {
		t.Fatalf("CloseHandle failed: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
	if gate.acquired != 0 {
		t.Errorf("gate.acquired = %d, want 0 after CloseHandle", gate.acquired)
	}
	if err := m.CloseHandle(id); !errors.Is(err, ErrHandleNotFound) {
		t.Errorf("closing twice should return ErrHandleNotFound, got %v", err)
	}
}

func TestEvictExpired_RemovesOnlyPastTTLHandles(t *testing.T) {
	clk := &manualClock{now: time.Unix(0, 0)}
	m := NewManager(time.Minute, time.Hour, nil, clk.Now)

	oldID, _ := m.Adopt(context.Background(), newDoc())
	clk.advance(2 * time.Minute)
	freshID, _ := m.Adopt(context.Background(), newDoc())

	m.EvictExpired()

	if _, ok := m.Get(oldID); ok {
		t.Error("expired handle should have been evicted")
	}
	if _, ok := m.Get(freshID); !ok {
		t.Error("fresh handle should still be present")
	}
}

func TestGet_RefreshesExpiresAt(t *testing.T) {
	clk := &manualClock{now: time.Unix(0, 0)}
	m := NewManager(time.Minute, time.Hour, nil, clk.Now)
	id, _ := m.Adopt(context.Background(), newDoc())

	clk.advance(59 * time.Second)
	h, ok := m.Get(id)
	if !ok {
		t.Fatal("Get failed before TTL expiry")
	}
	wantExpiry := clk.Now().Add(time.Minute)
	if !h.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", h.ExpiresAt, wantExpiry)
	}
}
