package storage

import (
	"errors"

	"github.com/ericogr/dew-duel/internal/game"
)

// ErrNotFound is returned when a flavor or member assignment does not exist.
var ErrNotFound = errors.New("record not found")

// Repository is the read/write surface of the flavor stat store. Match
// state is never persisted; only categories and member assignments are.
type Repository interface {
	ListFlavors() ([]game.Flavor, error)
	GetFlavorByKey(key string) (*game.Flavor, error)
	// UpsertFlavor inserts or updates by Key.
	UpsertFlavor(f *game.Flavor) error
	// AssignFlavor sets the single flavor category of a player.
	AssignFlavor(playerID, flavorKey string) error
	// GetMemberFlavorKey returns ErrNotFound when the player has no category.
	GetMemberFlavorKey(playerID string) (string, error)
}
