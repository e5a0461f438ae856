package store

import (
	"testing"

	"franchise-backend/internal/database"
	"franchise-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedIngredients(t *testing.T, db *gorm.DB, ownerID uint, names ...string) []models.Ingredient {
	t.Helper()
	out := make([]models.Ingredient, 0, len(names))
	for _, name := range names {
		ing := models.Ingredient{
			Name:    name,
			NameKey: models.NameKey(name),
			Unit:    "kg",
			Price:   2,
			OwnerID: ownerID,
		}
		require.NoError(t, db.Create(&ing).Error)
		out = append(out, ing)
	}
	return out
}

func TestFirstScopesByOwner(t *testing.T) {
	db := testDB(t)
	mine := seedIngredients(t, db, 1, "Flour")[0]
	theirs := seedIngredients(t, db, 2, "Sugar")[0]

	got, err := First[models.Ingredient](db, Owner(1), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flour", got.Name)

	// another tenant's row is indistinguishable from a missing one
	_, err = First[models.Ingredient](db, Owner(1), theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = First[models.Ingredient](db, Owner(1), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	db := testDB(t)
	ing := seedIngredients(t, db, 1, "Salt")[0]

	ok, err := Exists[models.Ingredient](db, Owner(1), ing.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists[models.Ingredient](db, Owner(2), ing.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCountWhere(t *testing.T) {
	db := testDB(t)
	rows := seedIngredients(t, db, 1, "Salt", "Pepper", "Thyme")
	seedIngredients(t, db, 2, "Basil")

	n, err := CountWhere[models.Ingredient](db, "owner_id = ? AND id IN ?", 1, []uint{rows[0].ID, rows[2].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPageCursorWalk(t *testing.T) {
	db := testDB(t)
	seedIngredients(t, db, 1, "A", "B", "C", "D", "E")
	seedIngredients(t, db, 2, "Z")

	var seen []string
	cursor := uint(0)
	for steps := 0; ; steps++ {
		require.Less(t, steps, 10, "pagination did not terminate")

		rows, next, err := Page[models.Ingredient](db, Owner(1), cursor, 2)
		require.NoError(t, err)
		for _, r := range rows {
			seen = append(seen, r.Name)
		}
		if next == nil {
			break
		}
		assert.Equal(t, rows[len(rows)-1].ID, *next)
		cursor = *next
	}

	// every row exactly once, in id order, never another tenant's
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, seen)
}

func TestPagePartialPageHasNoCursor(t *testing.T) {
	db := testDB(t)
	seedIngredients(t, db, 1, "A", "B")

	rows, next, err := Page[models.Ingredient](db, Owner(1), 0, 5)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Nil(t, next)
}

func TestDeleteScoped(t *testing.T) {
	db := testDB(t)
	theirs := seedIngredients(t, db, 2, "Sugar")[0]

	err := Delete[models.Ingredient](db, Owner(1), theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Delete[models.Ingredient](db, Owner(2), theirs.ID))

	var count int64
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestResolveManager(t *testing.T) {
	db := testDB(t)

	outlet := models.Outlet{Location: "Colombo", OwnerID: 7}
	require.NoError(t, db.Create(&outlet).Error)
	mgr := models.Manager{OutletID: outlet.ID, EmployeeID: 1, UserID: 1, Status: models.ManagerActive}
	require.NoError(t, db.Create(&mgr).Error)

	scope, err := ResolveManager(db, mgr.ID)
	require.NoError(t, err)
	assert.Equal(t, outlet.ID, scope.OutletID)
	assert.Equal(t, uint(7), scope.OwnerID)

	_, err = ResolveManager(db, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
