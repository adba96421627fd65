package storage

import (
	"errors"

	"github.com/ericogr/dew-duel/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) ListFlavors() ([]game.Flavor, error) {
	var flavors []game.Flavor
	if err := r.db.Order("name asc").Find(&flavors).Error; err != nil {
		return nil, err
	}
	return flavors, nil
}

func (r *sqliteRepository) GetFlavorByKey(key string) (*game.Flavor, error) {
	var f game.Flavor
	if err := r.db.Where("key = ?", key).First(&f).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &f, nil
}

func (r *sqliteRepository) UpsertFlavor(f *game.Flavor) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "attack", "defense", "updated_at"}),
	}).Create(f).Error
}

func (r *sqliteRepository) AssignFlavor(playerID, flavorKey string) error {
	if _, err := r.GetFlavorByKey(flavorKey); err != nil {
		return err
	}
	m := game.MemberFlavor{PlayerID: playerID, FlavorKey: flavorKey}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"flavor_key", "updated_at"}),
	}).Create(&m).Error
}

func (r *sqliteRepository) GetMemberFlavorKey(playerID string) (string, error) {
	var m game.MemberFlavor
	if err := r.db.Where("player_id = ?", playerID).First(&m).Error; err != nil {
		return "", mapNotFound(err)
	}
	return m.FlavorKey, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
