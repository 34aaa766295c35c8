package registry

import (
	"context"
	"sync"
)

// MemoryRegistry keeps documents in memory for the lifetime of the process.
type MemoryRegistry struct {
	mu    sync.Mutex
	docs  map[string]Document
	order []string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{docs: make(map[string]Document)}
}

func (r *MemoryRegistry) Register(ctx context.Context, doc Document) (RegisterOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.docs[doc.Id]; exists {
		return AlreadyPresent, nil
	}

	r.docs[doc.Id] = doc
	r.order = append(r.order, doc.Id)
	return Inserted, nil
}

func (r *MemoryRegistry) Get(ctx context.Context, id string) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, exists := r.docs[id]
	if !exists {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns documents in insertion order.
func (r *MemoryRegistry) List(ctx context.Context) ([]Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make([]Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.docs[id])
	}
	return docs, nil
}
