package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aman1195/risk-scan-pro/model"
)

// DocumentStore persists documents. Implementations return copies so
// callers never share state with the store, and UpdateDocument replaces
// the whole record in one write.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	UpdateDocument(ctx context.Context, doc *model.Document) error
	ListDocuments(ctx context.Context, userID string) ([]*model.Document, error)
	// ListStaleDocuments returns documents still analyzing that were created before cutoff
	ListStaleDocuments(ctx context.Context, cutoff time.Time) ([]*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// ContractStore persists contracts with the same copy semantics as DocumentStore
type ContractStore interface {
	CreateContract(ctx context.Context, c *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	UpdateContract(ctx context.Context, c *model.Contract) error
	ListContracts(ctx context.Context, userID string) ([]*model.Contract, error)
	DeleteContract(ctx context.Context, id string) error
}

// Store is the full record store
type Store interface {
	DocumentStore
	ContractStore
}

// MemoryStore is an in-memory Store. Records live as long as the process.
type MemoryStore struct {
	documents map[string]*model.Document
	contracts map[string]*model.Contract
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	slog.Info("memory store initialized")
	return &MemoryStore{
		documents: make(map[string]*model.Document),
		contracts: make(map[string]*model.Contract),
	}
}

func (s *MemoryStore) CreateDocument(_ context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("%w: document %s already exists", ErrPersistence, doc.ID)
	}
	s.documents[doc.ID] = doc.Clone()
	return nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[doc.ID]; !ok {
		return fmt.Errorf("document %s: %w", doc.ID, ErrNotFound)
	}
	s.documents[doc.ID] = doc.Clone()
	return nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, userID string) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Document, 0)
	for _, d := range s.documents {
		if d.UserID == userID {
			result = append(result, d.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) ListStaleDocuments(_ context.Context, cutoff time.Time) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Document
	for _, d := range s.documents {
		if d.Status() == model.StatusAnalyzing && d.CreatedAt.Before(cutoff) {
			result = append(result, d.Clone())
		}
	}
	return result, nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; !ok {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	delete(s.documents, id)
	return nil
}

func (s *MemoryStore) CreateContract(_ context.Context, c *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contracts[c.ID]; exists {
		return fmt.Errorf("%w: contract %s already exists", ErrPersistence, c.ID)
	}
	s.contracts[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

func (s *MemoryStore) UpdateContract(_ context.Context, c *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[c.ID]; !ok {
		return fmt.Errorf("contract %s: %w", c.ID, ErrNotFound)
	}
	s.contracts[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) ListContracts(_ context.Context, userID string) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Contract, 0)
	for _, c := range s.contracts {
		if c.UserID == userID {
			result = append(result, c.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) DeleteContract(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[id]; !ok {
		return fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	delete(s.contracts, id)
	return nil
}

// Count returns the number of documents and contracts held
func (s *MemoryStore) Count() (documents, contracts int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), len(s.contracts)
}
