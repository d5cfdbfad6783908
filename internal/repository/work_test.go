package repository

import (
	"context"
	"regexp"
	"testing"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestWorkRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	prodiA := seedProgram(t, db, "Sistem Informasi", "sistem-informasi")
	prodiB := seedProgram(t, db, "Teknik Mesin", "teknik-mesin")
	admin := seedUser(t, db, "Admin", "admin@kampus.ac.id")
	userA := seedUser(t, db, "Andi", "andi@kampus.ac.id")
	userB := seedUser(t, db, "Budi", "budi@kampus.ac.id")
	stuA := seedStudent(t, db, "2101001", prodiA.ID, &userA.ID)
	stuB := seedStudent(t, db, "2101002", prodiB.ID, &userB.ID)

	seedWork(t, db, "Aplikasi Perpustakaan", "aplikasi-perpustakaan-1", stuA.ID, userA.ID, func(w *models.WorkItem) {
		w.IsPublished = true
		w.ApprovedByID, w.ApprovedAt = approvedStamp(admin.ID)
	})
	seedWork(t, db, "Desain Logo Kampus", "desain-logo-kampus-2", stuA.ID, userA.ID, func(w *models.WorkItem) {
		w.Jenis = "desain"
	})
	seedWork(t, db, "Mesin Penggiling Kopi", "mesin-penggiling-kopi-3", stuB.ID, userB.ID, nil)

	t.Run("no filter returns everything paginated", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 1, page.LastPage)
	})

	t.Run("published filter", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{IsPublished: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("approved filter", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{IsApproved: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("jenis filter", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{Jenis: "desain"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("mahasiswa filter", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{MahasiswaID: stuB.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("prodi filter joins through mahasiswas", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{ProdiID: prodiA.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{Search: "PERPUSTAKAAN"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("sort whitelist falls back on unknown column", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{SortBy: "evil; DROP TABLE users"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("pagination windows", func(t *testing.T) {
		page, err := repo.List(ctx, WorkFilter{PerPage: 2, Page: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.LastPage)
		items := page.Data.([]models.WorkItem)
		assert.Len(t, items, 1)
	})
}

func TestWorkRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	prodi := seedProgram(t, db, "Sistem Informasi", "sistem-informasi")
	admin := seedUser(t, db, "Admin", "admin@kampus.ac.id")
	user := seedUser(t, db, "Andi", "andi@kampus.ac.id")
	stu := seedStudent(t, db, "2101001", prodi.ID, &user.ID)

	seedWork(t, db, "Approved", "approved-1", stu.ID, user.ID, func(w *models.WorkItem) {
		w.IsPublished = true
		w.ApprovedByID, w.ApprovedAt = approvedStamp(admin.ID)
	})
	seedWork(t, db, "Pending", "pending-2", stu.ID, user.ID, nil)
	seedWork(t, db, "Rejected", "rejected-3", stu.ID, user.ID, func(w *models.WorkItem) {
		w.RejectionReason = "tidak sesuai pedoman"
	})

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Published)
}

// Rows imported before the reason column got its NOT NULL default may carry
// NULL; the pending/rejected split must still classify them as pending.
func TestWorkRepository_StatsNullSafePredicates(t *testing.T) {
	db, mock := mockDB(t)

	expectCount(mock, "karya_mahasiswas").WillReturnRows(countRows(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE approved_at IS NOT NULL`)).
		WillReturnRows(countRows(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE approved_at IS NULL AND COALESCE(rejection_reason, '') = ''`)).
		WillReturnRows(countRows(2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE approved_at IS NULL AND COALESCE(rejection_reason, '') <> ''`)).
		WillReturnRows(countRows(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "karya_mahasiswas" WHERE is_published`)).
		WillReturnRows(countRows(1))

	stats, err := NewWorkRepository(db).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkRepository_GetBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	prodi := seedProgram(t, db, "Sistem Informasi", "sistem-informasi")
	user := seedUser(t, db, "Andi", "andi@kampus.ac.id")
	stu := seedStudent(t, db, "2101001", prodi.ID, &user.ID)
	seedWork(t, db, "Aplikasi Kasir", "aplikasi-kasir-9", stu.ID, user.ID, nil)

	item, err := repo.GetBySlug(ctx, "aplikasi-kasir-9")
	require.NoError(t, err)
	assert.Equal(t, "Aplikasi Kasir", item.Judul)
	require.NotNil(t, item.Mahasiswa)
	assert.Equal(t, "2101001", item.Mahasiswa.NIM)
	require.NotNil(t, item.Mahasiswa.Prodi)
	assert.Equal(t, "sistem-informasi", item.Mahasiswa.Prodi.Slug)

	_, err = repo.GetBySlug(ctx, "missing")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestWorkRepository_ListJenis(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkRepository(db)
	ctx := context.Background()

	prodi := seedProgram(t, db, "Sistem Informasi", "sistem-informasi")
	user := seedUser(t, db, "Andi", "andi@kampus.ac.id")
	stu := seedStudent(t, db, "2101001", prodi.ID, &user.ID)

	seedWork(t, db, "A", "a-1", stu.ID, user.ID, func(w *models.WorkItem) { w.Jenis = "skripsi" })
	seedWork(t, db, "B", "b-2", stu.ID, user.ID, func(w *models.WorkItem) { w.Jenis = "aplikasi" })
	seedWork(t, db, "C", "c-3", stu.ID, user.ID, func(w *models.WorkItem) { w.Jenis = "aplikasi" })

	jenis, err := repo.ListJenis(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aplikasi", "skripsi"}, jenis)
}
