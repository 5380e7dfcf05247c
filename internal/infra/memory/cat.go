package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/totegamma/catgraph/internal/domain"
)

type entry struct {
	cat   domain.Cat
	cdate time.Time
}

// CatRepository keeps cats in process memory. It backs local development
// when no database is configured.
type CatRepository struct {
	mu   sync.RWMutex
	cats map[string]entry
}

func NewCatRepository() *CatRepository {
	return &CatRepository{cats: make(map[string]entry)}
}

func (r *CatRepository) Get(ctx context.Context, id string) (domain.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cats[id]
	if !ok {
		return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
	}
	return e.cat, nil
}

func (r *CatRepository) List(ctx context.Context) ([]domain.Cat, error) {
	return r.filter(func(domain.Cat) bool { return true }), nil
}

func (r *CatRepository) ListWithin(ctx context.Context, area domain.Polygon) ([]domain.Cat, error) {
	return r.filter(func(c domain.Cat) bool { return area.Contains(c.Location) }), nil
}

func (r *CatRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Cat, error) {
	return r.filter(func(c domain.Cat) bool { return c.OwnerID == ownerID }), nil
}

func (r *CatRepository) Create(ctx context.Context, cat domain.Cat) (domain.Cat, error) {
	cat.ID = uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cats[cat.ID] = entry{cat: cat, cdate: time.Now()}
	return cat, nil
}

func (r *CatRepository) Update(ctx context.Context, id string, patch domain.CatPatch) (domain.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cats[id]
	if !ok {
		return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
	}
	e.cat = patch.Apply(e.cat)
	r.cats[id] = e
	return e.cat, nil
}

func (r *CatRepository) Delete(ctx context.Context, id string) (domain.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cats[id]
	if !ok {
		return domain.Cat{}, domain.NotFoundError{Resource: "cat"}
	}
	delete(r.cats, id)
	return e.cat, nil
}

// filter returns matches in creation order, like the SQL store.
func (r *CatRepository) filter(match func(domain.Cat) bool) []domain.Cat {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.cats))
	for _, e := range r.cats {
		if match(e.cat) {
			entries = append(entries, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].cdate.Before(entries[j].cdate) })
	cats := make([]domain.Cat, 0, len(entries))
	for _, e := range entries {
		cats = append(cats, e.cat)
	}
	return cats
}
