package domain

import "context"

// SortOrder orders recipe listings by total time.
type SortOrder int

const (
	SortByTimeAsc SortOrder = iota
	SortByTimeDesc
)

// ListOptions narrows a recipe listing.
type ListOptions struct {
	Difficulties  []Difficulty // empty means all
	FavoritesOnly bool
	Sort          SortOrder
}

// RecipeStore persists recipe definitions.
type RecipeStore interface {
	List(ctx context.Context, opts ListOptions) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Create(ctx context.Context, recipe *Recipe) error
	Update(ctx context.Context, recipe *Recipe) error
	Delete(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
}

// SessionSource is the read side of the session engine that views and
// watchers consume.
type SessionSource interface {
	State() SessionState
	Recipe(id string) (*Recipe, bool)
	Subscribe() (<-chan SessionState, func())
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or play a sound alongside the text.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
