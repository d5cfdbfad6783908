package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"campushub/internal/cache"
	"campushub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockDB backs a gorm connection with sqlmock so individual statements can
// be made to fail, which sqlite cannot simulate.
func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func expectCount(mock sqlmock.Sqlmock, table string) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "` + table + `"`))
}

func TestDashboardStats_CountsEveryTable(t *testing.T) {
	db, mock := mockDB(t)

	expectCount(mock, "beritas").WillReturnRows(countRows(10))
	expectCount(mock, "pengumumans").WillReturnRows(countRows(4))
	expectCount(mock, "agendas").WillReturnRows(countRows(6))
	expectCount(mock, "prodis").WillReturnRows(countRows(5))
	expectCount(mock, "mahasiswas").WillReturnRows(countRows(800))
	expectCount(mock, "karya_mahasiswas").WillReturnRows(countRows(120))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE approved_at IS NULL AND COALESCE(rejection_reason, '') = ''`)).
		WillReturnRows(countRows(7))
	expectCount(mock, "kerjasamas").WillReturnRows(countRows(3))

	stats, err := NewDashboardRepository(db).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), stats.TotalBerita)
	assert.Equal(t, int64(800), stats.TotalMahasiswa)
	assert.Equal(t, int64(120), stats.TotalKarya)
	assert.Equal(t, int64(7), stats.KaryaPending)
	assert.Equal(t, int64(3), stats.TotalKerjasama)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardStats_FailingCountDegradesToZero(t *testing.T) {
	db, mock := mockDB(t)

	expectCount(mock, "beritas").WillReturnRows(countRows(10))
	expectCount(mock, "pengumumans").WillReturnRows(countRows(4))
	expectCount(mock, "agendas").WillReturnRows(countRows(6))
	expectCount(mock, "prodis").WillReturnRows(countRows(5))
	expectCount(mock, "mahasiswas").WillReturnError(errors.New("relation is locked"))
	expectCount(mock, "karya_mahasiswas").WillReturnRows(countRows(120))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE approved_at IS NULL AND COALESCE(rejection_reason, '') = ''`)).
		WillReturnRows(countRows(7))
	expectCount(mock, "kerjasamas").WillReturnRows(countRows(3))

	stats, err := NewDashboardRepository(db).Stats(context.Background())
	require.NoError(t, err, "one failing table must not fail the dashboard")

	assert.Zero(t, stats.TotalMahasiswa)
	assert.Equal(t, int64(10), stats.TotalBerita)
	assert.Equal(t, int64(120), stats.TotalKarya)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The stats block must reflect the live tables even when Redis is attached:
// admins create students and works through paths the cache layer never sees.
func TestDashboardStats_RecomputesWithRedisAttached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	db := setupTestDB(t)
	repo := NewDashboardRepository(db)

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMahasiswa)

	prodi := models.Program{Nama: "Teknik Informatika", Slug: "teknik-informatika"}
	require.NoError(t, db.Create(&prodi).Error)
	student := models.Student{NIM: "2101099", Nama: "Budi", ProdiID: prodi.ID, Status: models.StudentStatusAktif}
	require.NoError(t, db.Create(&student).Error)

	stats, err = repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMahasiswa)
	assert.Equal(t, int64(1), stats.TotalProdi)
}

func TestDashboardSummary_Panels(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDashboardRepository(db)

	admin := models.User{Name: "Admin", Email: "admin@kampus.ac.id", Password: "x"}
	require.NoError(t, db.Create(&admin).Error)
	prodi := models.Program{Nama: "Sistem Informasi", Slug: "sistem-informasi"}
	require.NoError(t, db.Create(&prodi).Error)
	student := models.Student{NIM: "2101001", Nama: "Andi", ProdiID: prodi.ID, Status: models.StudentStatusAktif}
	require.NoError(t, db.Create(&student).Error)

	now := time.Now()
	require.NoError(t, db.Create(&models.News{
		Judul: "Terbaru", Slug: "terbaru-1", Konten: "x",
		UserID: admin.ID, IsPublished: true, PublishedAt: &now,
	}).Error)
	require.NoError(t, db.Create(&models.WorkItem{
		Judul: "Menunggu", Slug: "menunggu-1", Deskripsi: "x", Jenis: "skripsi",
		MahasiswaID: student.ID, UserID: admin.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Event{
		Judul: "Wisuda", Slug: "wisuda-1", UserID: admin.ID,
		WaktuMulai: now.Add(24 * time.Hour), IsPublished: true,
	}).Error)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.RecentBerita, 1)
	require.Len(t, summary.PendingKarya, 1)
	require.Len(t, summary.UpcomingAgenda, 1)
	require.NotNil(t, summary.PendingKarya[0].Mahasiswa)
	assert.Equal(t, "2101001", summary.PendingKarya[0].Mahasiswa.NIM)
}
