package seed

import (
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Role{}, &models.Permission{},
		&models.Program{}, &models.Student{}, &models.WorkItem{},
		&models.News{}, &models.Announcement{}, &models.Event{},
		&models.Partnership{}, &models.Media{}, &models.CampusProfile{},
	))
	return db
}

func TestSeedPopulatesCampus(t *testing.T) {
	db := testDB(t)

	err := Seed(db, Options{
		NumStudents:     12,
		NumWorks:        8,
		NumNews:         4,
		NumEvents:       3,
		NumPartnerships: 2,
		Factory:         SeedOptions{SkipBcrypt: true},
	})
	require.NoError(t, err)

	var programs, students, works int64
	require.NoError(t, db.Model(&models.Program{}).Count(&programs).Error)
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	require.NoError(t, db.Model(&models.WorkItem{}).Count(&works).Error)
	assert.Equal(t, int64(len(seedPrograms)), programs)
	assert.Equal(t, int64(12), students)
	assert.Equal(t, int64(8), works)

	t.Run("admin account exists with role", func(t *testing.T) {
		var admin models.User
		require.NoError(t, db.Where("email = ?", AdminEmail).
			Preload("Roles").First(&admin).Error)
		assert.True(t, admin.HasRole(models.RoleAdmin))
	})

	t.Run("published works always carry an approval stamp", func(t *testing.T) {
		var published []models.WorkItem
		require.NoError(t, db.Where("is_published").Find(&published).Error)
		require.NotEmpty(t, published)
		for _, w := range published {
			assert.NotNil(t, w.ApprovedAt, "work %d published without approval", w.ID)
			assert.NotNil(t, w.ApprovedByID)
		}
	})

	t.Run("rejected works are unpublished with a reason", func(t *testing.T) {
		var rejected []models.WorkItem
		require.NoError(t, db.Where("rejection_reason <> ''").Find(&rejected).Error)
		for _, w := range rejected {
			assert.False(t, w.IsPublished)
			assert.Nil(t, w.ApprovedAt)
		}
	})

	t.Run("linked students share the account NIM", func(t *testing.T) {
		var linked []models.Student
		require.NoError(t, db.Where("user_id IS NOT NULL").
			Preload("User").Find(&linked).Error)
		require.NotEmpty(t, linked)
		for _, s := range linked {
			assert.Equal(t, s.NIM, s.User.NIM)
		}
	})

	t.Run("campus profile singleton exists", func(t *testing.T) {
		var n int64
		require.NoError(t, db.Model(&models.CampusProfile{}).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})
}

func TestSeedIsRerunnableWithClean(t *testing.T) {
	db := testDB(t)
	opts := Options{
		NumStudents: 6, NumWorks: 4, NumNews: 2,
		ShouldClean: true,
		Factory:     SeedOptions{SkipBcrypt: true},
	}

	require.NoError(t, Seed(db, opts))
	require.NoError(t, Seed(db, opts))

	var students, admins int64
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", AdminEmail).Count(&admins).Error)
	assert.Equal(t, int64(6), students)
	assert.Equal(t, int64(1), admins)
}

func TestFactoryDryRunWritesNothing(t *testing.T) {
	db := testDB(t)
	f := NewFactory(db, SeedOptions{DryRun: true, SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	program, err := f.CreateProgram("Teknik Informatika", "S1", "TI")
	require.NoError(t, err)
	_, err = f.CreateStudent(program)
	require.NoError(t, err)

	var users, programs, students int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Program{}).Count(&programs).Error)
	require.NoError(t, db.Model(&models.Student{}).Count(&students).Error)
	assert.Zero(t, users)
	assert.Zero(t, programs)
	assert.Zero(t, students)
}
