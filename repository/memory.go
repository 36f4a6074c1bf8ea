package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-kyugo/productapi/entity"
	"github.com/go-kyugo/productapi/logger"
)

type memoryStore struct {
	mu     sync.RWMutex
	rows   map[int]entity.Product
	nextID int
}

// NewMemoryProductRepository returns a repository that keeps products in
// process memory. Ids start at 1 and are never reused.
func NewMemoryProductRepository(log *logger.Logger) *Repository {
	return newRepository(&memoryStore{rows: make(map[int]entity.Product), nextID: 1}, log)
}

func (s *memoryStore) findByID(_ context.Context, id int) (*entity.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *memoryStore) findByName(ctx context.Context, name string) (*entity.Product, error) {
	products, _ := s.all(ctx)
	for i := range products {
		if products[i].Name == name {
			return &products[i], nil
		}
	}
	return nil, nil
}

func (s *memoryStore) all(_ context.Context) ([]entity.Product, error) {
	s.mu.RLock()
	products := make([]entity.Product, 0, len(s.rows))
	for _, p := range s.rows {
		products = append(products, p)
	}
	s.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (s *memoryStore) insert(_ context.Context, p entity.Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.rows[p.ID] = p
	return p.ID, nil
}

func (s *memoryStore) update(_ context.Context, p entity.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[p.ID]; !ok {
		return fmt.Errorf("product %d: %w", p.ID, errNoRowsAffected)
	}
	s.rows[p.ID] = p
	return nil
}

func (s *memoryStore) delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("product %d: %w", id, errNoRowsAffected)
	}
	delete(s.rows, id)
	return nil
}

func (s *memoryStore) ping(context.Context) error { return nil }
