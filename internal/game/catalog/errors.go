package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrSpeciesNotFound is returned when no species matches a name or id.
	ErrSpeciesNotFound = errors.New("species not found")
	// ErrMoveNotFound is returned when no move matches a name or id.
	ErrMoveNotFound = errors.New("move not found")
	// ErrAmbiguousMove means a name resolves to both a fast and a charged move,
	// which indicates a corrupt catalog rather than bad input.
	ErrAmbiguousMove = errors.New("ambiguous move")
	// ErrSchema is returned when the game-data document violates its schema.
	ErrSchema = errors.New("game data schema violation")
)

// NotFoundError carries the identifier that failed to resolve.
type NotFoundError struct {
	// Kind is "species", "fast move", "charged move" or "move".
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s not found: %q", e.Kind, e.Key)
}

// Unwrap maps the error onto ErrSpeciesNotFound or ErrMoveNotFound.
func (e *NotFoundError) Unwrap() error {
	if e.Kind == "species" {
		return ErrSpeciesNotFound
	}
	return ErrMoveNotFound
}
