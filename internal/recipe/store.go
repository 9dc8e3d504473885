// Package recipe provides the recipe store and the recipe builder rules.
package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
	"github.com/hammamikhairi/stepchef/internal/storage"
)

// Namespace is the key-value namespace recipes are stored under.
const Namespace = "recipes:v1"

// Compile-time interface check.
var _ domain.RecipeStore = (*Store)(nil)

// Store keeps recipes as JSON documents in a key-value store, one key per
// recipe ID.
type Store struct {
	kv  storage.KV
	log *logger.Logger
	now func() time.Time
}

// NewStore creates a recipe store over kv.
func NewStore(kv storage.KV, log *logger.Logger) *Store {
	return &Store{kv: kv, log: log, now: time.Now}
}

// List returns summaries of the recipes matching opts, ordered by total
// time. Ties are broken by title.
func (s *Store) List(ctx context.Context, opts domain.ListOptions) ([]domain.RecipeSummary, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RecipeSummary, 0, len(all))
	for _, r := range all {
		if opts.FavoritesOnly && !r.IsFavorite {
			continue
		}
		if len(opts.Difficulties) > 0 && !slices.Contains(opts.Difficulties, r.Difficulty) {
			continue
		}
		out = append(out, r.Summary())
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalTimeMinutes != b.TotalTimeMinutes {
			if opts.Sort == domain.SortByTimeDesc {
				return a.TotalTimeMinutes > b.TotalTimeMinutes
			}
			return a.TotalTimeMinutes < b.TotalTimeMinutes
		}
		return a.Title < b.Title
	})
	s.log.Debug("listing recipes, matched=%d of %d", len(out), len(all))
	return out, nil
}

// Get returns a recipe by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	data, err := s.kv.Get(ctx, Namespace, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Debug("recipe not found: %s", id)
			return nil, fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting recipe %s: %w", id, err)
	}
	return decode(data)
}

// Create validates and stores a new recipe. An empty ID is filled with a
// fresh UUID, as are empty ingredient and step IDs.
func (s *Store) Create(ctx context.Context, r *domain.Recipe) error {
	if r == nil {
		return &domain.ValidationError{Message: "recipe is required"}
	}
	assignIDs(r)
	if err := Validate(r); err != nil {
		return err
	}

	if _, err := s.kv.Get(ctx, Namespace, r.ID); err == nil {
		return fmt.Errorf("recipe %s: %w", r.ID, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("checking recipe %s: %w", r.ID, err)
	}

	now := s.now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := s.put(ctx, r); err != nil {
		return err
	}
	s.log.Info("recipe created: %s (%s)", r.Title, r.ID)
	return nil
}

// Update validates and replaces an existing recipe. CreatedAt is kept from
// the stored copy.
func (s *Store) Update(ctx context.Context, r *domain.Recipe) error {
	if r == nil {
		return &domain.ValidationError{Message: "recipe is required"}
	}
	existing, err := s.Get(ctx, r.ID)
	if err != nil {
		return err
	}
	assignIDs(r)
	if err := Validate(r); err != nil {
		return err
	}

	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now().UTC()
	if err := s.put(ctx, r); err != nil {
		return err
	}
	s.log.Info("recipe updated: %s (%s)", r.Title, r.ID)
	return nil
}

// Delete removes a recipe.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, Namespace, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("recipe %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("deleting recipe %s: %w", id, err)
	}
	s.log.Info("recipe deleted: %s", id)
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	r.IsFavorite = !r.IsFavorite
	r.UpdatedAt = s.now().UTC()
	if err := s.put(ctx, r); err != nil {
		return false, err
	}
	s.log.Debug("recipe %s favorite=%v", id, r.IsFavorite)
	return r.IsFavorite, nil
}

func (s *Store) all(ctx context.Context) ([]*domain.Recipe, error) {
	items, err := s.kv.List(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	out := make([]*domain.Recipe, 0, len(items))
	for _, it := range items {
		r, err := decode(it.Value)
		if err != nil {
			s.log.Warn("skipping unreadable recipe %s: %v", it.Key, err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) put(ctx context.Context, r *domain.Recipe) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding recipe %s: %w", r.ID, err)
	}
	if err := s.kv.Put(ctx, Namespace, r.ID, data); err != nil {
		return fmt.Errorf("saving recipe %s: %w", r.ID, err)
	}
	return nil
}

func decode(data []byte) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding recipe: %w", err)
	}
	return &r, nil
}

func assignIDs(r *domain.Recipe) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for i := range r.Ingredients {
		if r.Ingredients[i].ID == "" {
			r.Ingredients[i].ID = uuid.NewString()
		}
	}
	for i := range r.Steps {
		if r.Steps[i].ID == "" {
			r.Steps[i].ID = uuid.NewString()
		}
	}
}
