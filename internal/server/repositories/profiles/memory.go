package profiles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/models"
)

// MemoryRepository keeps profiles for the process lifetime only.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[string]models.Profile)}
}

func clone(p models.Profile) models.Profile {
	p.SealedSecret = append([]byte(nil), p.SealedSecret...)
	return p
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.Code]; ok {
		return fmt.Errorf("profile %q: %w", p.Code, common.ErrorConflict)
	}
	r.profiles[p.Code] = clone(*p)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, code string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[code]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", code, common.ErrorNotFound)
	}
	p = clone(p)
	return &p, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.profiles[p.Code]
	if !ok {
		return fmt.Errorf("profile %q: %w", p.Code, common.ErrorNotFound)
	}
	next := clone(*p)
	next.CreatedAt = old.CreatedAt
	r.profiles[p.Code] = next
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[code]; !ok {
		return fmt.Errorf("profile %q: %w", code, common.ErrorNotFound)
	}
	delete(r.profiles, code)
	return nil
}
