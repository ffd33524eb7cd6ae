// Copyright 2026 © The GENESIS Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"sync"
)

// MemoryStore keeps coordination records in memory. Intended for tests
// and single-process setups without persistence requirements.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List implements Store. Records come back in insertion order.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records {
		if filter.RunID != "" && rec.RunID != filter.RunID {
			continue
		}
		if filter.Complexity != "" && rec.Complexity != filter.Complexity {
			continue
		}
		if filter.Collaboration != "" && rec.Collaboration != filter.Collaboration {
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
