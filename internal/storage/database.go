package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenAndMigrate opens the SQLite database, migrates the stat store tables
// and upserts the flavors listed in the config file.
func OpenAndMigrate(dataSourceName string, flavorsFromConfig []game.Flavor) (*gorm.DB, error) {
	if err := ensureDir(dataSourceName); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.Flavor{}, &game.MemberFlavor{}); err != nil {
		return nil, err
	}
	if err := seedFlavors(NewSQLiteRepository(db), flavorsFromConfig); err != nil {
		return nil, err
	}
	return db, nil
}

// seedFlavors makes the config file the source of truth for the flavors it
// lists. Flavors created at runtime (rolled by admins) are left alone.
func seedFlavors(repo Repository, flavors []game.Flavor) error {
	for i := range flavors {
		f := flavors[i]
		if err := repo.UpsertFlavor(&f); err != nil {
			return err
		}
	}
	if len(flavors) > 0 {
		logging.Info("flavors seeded from config", logging.Fields{constants.LogFieldCount: len(flavors)})
	}
	return nil
}

// ensureDir creates the parent directory of a file-backed database.
func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
