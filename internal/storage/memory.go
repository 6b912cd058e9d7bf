package storage

import "context"

// MemorySlot keeps values for the life of the process.
type MemorySlot struct {
	values map[string][]byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value under key.
func (s *MemorySlot) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

// Close is a no-op.
func (s *MemorySlot) Close() error {
	return nil
}
