package server

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/newcontext-oss/jsonapi"
)

// DefaultPageSize bounds List results when the request does not name
// a page size.
const DefaultPageSize = 25

// MemoryStorage is an in-memory Storage implementation used by the
// demo server and tests. Records are keyed by (type, id); List
// returns records in insertion order. Safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[recordKey]jsonapi.FlatRecord
	order   []recordKey
}

type recordKey struct {
	resourceType string
	id           string
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: map[recordKey]jsonapi.FlatRecord{}}
}

// Lookup implements Storage.
func (m *MemoryStorage) Lookup(_ context.Context, resourceType, id string) (jsonapi.FlatRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[recordKey{resourceType: resourceType, id: id}]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRecord(record), nil
}

// Create implements Storage. Records without an id are assigned a
// fresh UUID.
func (m *MemoryStorage) Create(_ context.Context, record jsonapi.FlatRecord) (jsonapi.FlatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(record)
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}

	key := recordKey{resourceType: stored.Type(), id: stored.ID()}
	if _, exists := m.records[key]; !exists {
		m.order = append(m.order, key)
	}
	m.records[key] = stored

	return cloneRecord(stored), nil
}

// Update implements Storage.
func (m *MemoryStorage) Update(_ context.Context, record jsonapi.FlatRecord) (jsonapi.FlatRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey{resourceType: record.Type(), id: record.ID()}
	current, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	merged := cloneRecord(current)
	for name, value := range record {
		merged[name] = value
	}
	m.records[key] = merged

	return cloneRecord(merged), nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(_ context.Context, resourceType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey{resourceType: resourceType, id: id}
	if _, ok := m.records[key]; !ok {
		return ErrNotFound
	}
	delete(m.records, key)

	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// List implements Storage.
func (m *MemoryStorage) List(_ context.Context, resourceType string, page PageRequest) ([]jsonapi.FlatRecord, PageInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []jsonapi.FlatRecord
	for _, key := range m.order {
		if key.resourceType == resourceType {
			matches = append(matches, cloneRecord(m.records[key]))
		}
	}

	size := page.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	number := page.Number
	if number <= 0 {
		number = 1
	}

	count := len(matches)
	pages := (count + size - 1) / size
	if pages == 0 {
		pages = 1
	}

	start := (number - 1) * size
	if start > count {
		start = count
	}
	end := start + size
	if end > count {
		end = count
	}

	info := PageInfo{Page: number, Pages: pages, Count: count}
	return matches[start:end], info, nil
}

func cloneRecord(record jsonapi.FlatRecord) jsonapi.FlatRecord {
	out := make(jsonapi.FlatRecord, len(record))
	for name, value := range record {
		out[name] = value
	}
	return out
}
