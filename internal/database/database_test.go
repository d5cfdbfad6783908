package database

import (
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAutoMigratePersistentModels(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{
		"users", "roles", "permissions", "prodis", "mahasiswas",
		"karya_mahasiswas", "beritas", "pengumumans", "agendas",
		"kerjasamas", "media", "campus_profiles",
	} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestMigrationsRegistered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	assert.Equal(t, 1, ms[0].Version)
	assert.Contains(t, ms[0].UpScript, "karya_mahasiswas")
	assert.NotEmpty(t, ms[0].DownScript)
}

func TestGetMigrationByVersion(t *testing.T) {
	m := GetMigrationByVersion(1)
	require.NotNil(t, m)
	assert.Equal(t, "init_schema", m.Name)

	assert.Nil(t, GetMigrationByVersion(99))
}

func TestPersistentModels_IncludesWorkItem(t *testing.T) {
	found := false
	for _, model := range PersistentModels() {
		if _, ok := model.(*models.WorkItem); ok {
			found = true
			break
		}
	}
	require.True(t, found, "PersistentModels should include WorkItem")
}
