package cart

import (
	"sync"
	"time"

	"github.com/mercadito-app/mercadito-backend/pkg/types"
)

// Snapshot is an immutable copy of a session cart handed to callers.
// Subtotal and item count are always derived from the lines, never
// stored.
type Snapshot struct {
	SessionID     string
	VendorID      int64
	Lines         types.CartLines
	SubtotalCents int
	ItemCount     int
	UpdatedAt     time.Time
}

type sessionCart struct {
	vendorID  int64
	lines     types.CartLines
	updatedAt time.Time
}

func (c *sessionCart) snapshot(sessionID string) *Snapshot {
	lines := make(types.CartLines, len(c.lines))
	copy(lines, c.lines)
	return &Snapshot{
		SessionID:     sessionID,
		VendorID:      c.vendorID,
		Lines:         lines,
		SubtotalCents: lines.SubtotalCents(),
		ItemCount:     lines.ItemCount(),
		UpdatedAt:     c.updatedAt,
	}
}

// Store keeps one cart per ordering session in memory. Carts are
// session-scoped working state; the durable record of a purchase is
// the order mirror written after submission.
type Store struct {
	mu    sync.Mutex
	carts map[string]*sessionCart
}

func NewStore() *Store {
	return &Store{carts: map[string]*sessionCart{}}
}

func (s *Store) get(sessionID string) *sessionCart {
	return s.carts[sessionID]
}

func (s *Store) put(sessionID string, c *sessionCart) {
	c.updatedAt = time.Now().UTC()
	s.carts[sessionID] = c
}

func (s *Store) drop(sessionID string) {
	delete(s.carts, sessionID)
}

// mutate runs fn while holding the store lock so concurrent requests
// for the same session never interleave.
func (s *Store) mutate(sessionID string, fn func(c *sessionCart) (*sessionCart, error)) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.get(sessionID))
	if err != nil {
		return nil, err
	}
	if next == nil || len(next.lines) == 0 {
		s.drop(sessionID)
		return emptySnapshot(sessionID), nil
	}
	s.put(sessionID, next)
	return next.snapshot(sessionID), nil
}

func (s *Store) view(sessionID string) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.get(sessionID)
	if c == nil {
		return emptySnapshot(sessionID)
	}
	return c.snapshot(sessionID)
}

func emptySnapshot(sessionID string) *Snapshot {
	return &Snapshot{SessionID: sessionID, Lines: types.CartLines{}}
}
