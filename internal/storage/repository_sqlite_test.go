package storage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ericogr/dew-duel/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T, seed []game.Flavor) Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := OpenAndMigrate(dsn, seed)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLiteRepository(db)
}

func TestSeedAndList(t *testing.T) {
	repo := openTestRepo(t, []game.Flavor{
		{Key: "voltage", Name: "Voltage", Attack: 9, Defense: 8},
		{Key: "code-red", Name: "Code Red", Attack: 11, Defense: 7},
	})

	flavors, err := repo.ListFlavors()
	require.NoError(t, err)
	require.Len(t, flavors, 2)
	assert.Equal(t, "Code Red", flavors[0].Name)
	assert.Equal(t, "Voltage", flavors[1].Name)
}

func TestUpsertFlavorUpdatesByKey(t *testing.T) {
	repo := openTestRepo(t, nil)

	require.NoError(t, repo.UpsertFlavor(&game.Flavor{Key: "baja-blast", Name: "Baja Blast", Attack: 8, Defense: 9}))
	require.NoError(t, repo.UpsertFlavor(&game.Flavor{Key: "baja-blast", Name: "Baja Blast", Attack: 12, Defense: 5}))

	f, err := repo.GetFlavorByKey("baja-blast")
	require.NoError(t, err)
	assert.Equal(t, 12, f.Attack)
	assert.Equal(t, 5, f.Defense)

	flavors, err := repo.ListFlavors()
	require.NoError(t, err)
	assert.Len(t, flavors, 1)
}

func TestAssignFlavor(t *testing.T) {
	repo := openTestRepo(t, []game.Flavor{
		{Key: "voltage", Name: "Voltage", Attack: 9, Defense: 8},
		{Key: "code-red", Name: "Code Red", Attack: 11, Defense: 7},
	})

	_, err := repo.GetMemberFlavorKey("p1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.AssignFlavor("p1", "voltage"))
	key, err := repo.GetMemberFlavorKey("p1")
	require.NoError(t, err)
	assert.Equal(t, "voltage", key)

	// reassigning replaces the previous category
	require.NoError(t, repo.AssignFlavor("p1", "code-red"))
	key, err = repo.GetMemberFlavorKey("p1")
	require.NoError(t, err)
	assert.Equal(t, "code-red", key)

	assert.ErrorIs(t, repo.AssignFlavor("p2", "unknown"), ErrNotFound)
}
