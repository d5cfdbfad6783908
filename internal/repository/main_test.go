package repository

import (
	"os"
	"testing"
	"time"

	"campushub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.Program{},
		&models.Student{},
		&models.WorkItem{},
		&models.News{},
		&models.Announcement{},
		&models.Event{},
		&models.Partnership{},
		&models.Media{},
		&models.CampusProfile{},
	))
	return db
}

func seedProgram(t *testing.T, db *gorm.DB, nama, slug string) *models.Program {
	t.Helper()
	p := &models.Program{Nama: nama, Slug: slug, Jenjang: "S1"}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hashed"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedStudent(t *testing.T, db *gorm.DB, nim string, prodiID uint, userID *uint) *models.Student {
	t.Helper()
	s := &models.Student{
		NIM:     nim,
		Nama:    "Mahasiswa " + nim,
		ProdiID: prodiID,
		UserID:  userID,
		Status:  models.StudentStatusAktif,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

func seedWork(t *testing.T, db *gorm.DB, judul, slug string, mahasiswaID, userID uint, mutate func(*models.WorkItem)) *models.WorkItem {
	t.Helper()
	w := &models.WorkItem{
		Judul:       judul,
		Slug:        slug,
		Deskripsi:   "deskripsi " + judul,
		MahasiswaID: mahasiswaID,
		UserID:      userID,
		Jenis:       "aplikasi",
	}
	if mutate != nil {
		mutate(w)
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

func approvedStamp(userID uint) (uintp *uint, at *time.Time) {
	now := time.Now()
	return &userID, &now
}
