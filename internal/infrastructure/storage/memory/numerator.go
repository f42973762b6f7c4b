package memory

import (
	"context"
	"fmt"

	corenumerator "repairdesk/internal/core/numerator"
)

var (
	_ corenumerator.Sequencer   = (*Sequencer)(nil)
	_ corenumerator.CodeChecker = (*CodeChecker)(nil)
)

// Sequencer implements an atomic reserve-next counter.
type Sequencer struct{ s *Store }

func (q *Sequencer) Next(ctx context.Context, key string) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.t.sequences[key]++
	return q.s.t.sequences[key], nil
}

func (q *Sequencer) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", value)
	}
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.t.sequences[key] = value
	return nil
}

// CodeChecker looks codes up in the tables that own them.
type CodeChecker struct{ s *Store }

func (c *CodeChecker) Exists(ctx context.Context, kind corenumerator.Kind, tenantID int64, code string) (bool, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	switch kind {
	case corenumerator.KindRepair:
		for _, o := range c.s.t.repairs {
			if o.TenantID == tenantID && o.RepairCode == code {
				return true, nil
			}
		}
		return false, nil
	case corenumerator.KindPurchase, corenumerator.KindSale:
		for _, o := range c.s.t.orders {
			if o.TenantID == tenantID && o.Code == code {
				return true, nil
			}
		}
		return false, nil
	}
	_, ok := c.s.t.codes[codeKey(kind, tenantID, code)]
	return ok, nil
}

// Register records a code owned by a collaborator (bookings, quick notes).
func (c *CodeChecker) Register(kind corenumerator.Kind, tenantID int64, code string) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.t.codes[codeKey(kind, tenantID, code)] = struct{}{}
}

func codeKey(kind corenumerator.Kind, tenantID int64, code string) string {
	return fmt.Sprintf("%s:%d:%s", kind, tenantID, code)
}
