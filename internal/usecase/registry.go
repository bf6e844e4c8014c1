package usecase

import (
	"sort"
	"strings"

	"IndexPulse/internal/domain/models"
)

// Registry is the fixed set of supported indices. Lookups are
// case-insensitive; the canonical id is the lowercase form used as the
// store key everywhere downstream.
type Registry struct {
	byID  map[string]models.Index
	order []models.Index
}

func NewRegistry(indices []models.Index) *Registry {
	r := &Registry{byID: make(map[string]models.Index, len(indices))}
	for _, idx := range indices {
		idx.ID = strings.ToLower(idx.ID)
		r.byID[idx.ID] = idx
		r.order = append(r.order, idx)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i].ID < r.order[j].ID })
	return r
}

// Lookup resolves an index id regardless of the case the client used.
// The returned Index carries the canonical id.
func (r *Registry) Lookup(id string) (models.Index, bool) {
	idx, ok := r.byID[strings.ToLower(id)]
	return idx, ok
}

// List returns all supported indices, ordered by id.
func (r *Registry) List() []models.Index {
	out := make([]models.Index, len(r.order))
	copy(out, r.order)
	return out
}
