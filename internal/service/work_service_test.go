package service

import (
	"context"
	"strings"
	"testing"

	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type workFixture struct {
	db      *gorm.DB
	svc     *WorkService
	admin   Actor
	student Actor
	other   Actor
}

func newWorkFixture(t *testing.T) *workFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Permission{}, &models.Role{}, &models.User{},
		&models.Program{}, &models.Student{}, &models.WorkItem{},
	))

	prodi := &models.Program{Nama: "Sistem Informasi", Slug: "sistem-informasi"}
	require.NoError(t, db.Create(prodi).Error)

	adminUser := &models.User{Name: "Admin", Email: "admin@kampus.ac.id", Password: "x"}
	studentUser := &models.User{Name: "Andi", Email: "andi@kampus.ac.id", Password: "x"}
	otherUser := &models.User{Name: "Budi", Email: "budi@kampus.ac.id", Password: "x"}
	require.NoError(t, db.Create(adminUser).Error)
	require.NoError(t, db.Create(studentUser).Error)
	require.NoError(t, db.Create(otherUser).Error)

	stu := &models.Student{NIM: "2101001", Nama: "Andi", ProdiID: prodi.ID, UserID: &studentUser.ID, Status: models.StudentStatusAktif}
	oth := &models.Student{NIM: "2101002", Nama: "Budi", ProdiID: prodi.ID, UserID: &otherUser.ID, Status: models.StudentStatusAktif}
	require.NoError(t, db.Create(stu).Error)
	require.NoError(t, db.Create(oth).Error)

	svc := NewWorkService(
		repository.NewWorkRepository(db),
		repository.NewStudentRepository(db),
		storage.NewLocal(t.TempDir()),
	)

	return &workFixture{
		db:      db,
		svc:     svc,
		admin:   Actor{UserID: adminUser.ID, IsAdmin: true},
		student: Actor{UserID: studentUser.ID, StudentID: stu.ID},
		other:   Actor{UserID: otherUser.ID, StudentID: oth.ID},
	}
}

func TestWorkService_Create(t *testing.T) {
	f := newWorkFixture(t)
	ctx := context.Background()

	t.Run("student submission starts pending and unpublished", func(t *testing.T) {
		item, err := f.svc.Create(ctx, f.student, CreateWorkInput{
			Judul:     "Aplikasi Perpustakaan",
			Deskripsi: "Sistem manajemen perpustakaan",
			Jenis:     "aplikasi",
		})
		require.NoError(t, err)
		assert.False(t, item.IsPublished)
		assert.False(t, item.IsApproved())
		assert.Nil(t, item.ApprovedByID)
		assert.Equal(t, f.student.StudentID, item.MahasiswaID)
		assert.True(t, strings.HasPrefix(item.Slug, "aplikasi-perpustakaan-"))
	})

	t.Run("student cannot submit under another student", func(t *testing.T) {
		item, err := f.svc.Create(ctx, f.student, CreateWorkInput{
			Judul:       "Karya Orang Lain",
			Deskripsi:   "x",
			MahasiswaID: f.other.StudentID,
		})
		require.NoError(t, err)
		assert.Equal(t, f.student.StudentID, item.MahasiswaID)
	})

	t.Run("admin create publishes with atomic approval stamp", func(t *testing.T) {
		item, err := f.svc.Create(ctx, f.admin, CreateWorkInput{
			Judul:       "Karya Unggulan",
			Deskripsi:   "x",
			MahasiswaID: f.student.StudentID,
		})
		require.NoError(t, err)
		assert.True(t, item.IsPublished)
		require.True(t, item.IsApproved())
		assert.Equal(t, f.admin.UserID, *item.ApprovedByID)
	})

	t.Run("admin create can stay unpublished", func(t *testing.T) {
		unpub := false
		item, err := f.svc.Create(ctx, f.admin, CreateWorkInput{
			Judul:       "Draf Karya",
			Deskripsi:   "x",
			MahasiswaID: f.student.StudentID,
			IsPublished: &unpub,
		})
		require.NoError(t, err)
		assert.False(t, item.IsPublished)
		assert.False(t, item.IsApproved())
	})

	t.Run("admin create requires mahasiswa_id", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.admin, CreateWorkInput{Judul: "X", Deskripsi: "x"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.FieldErrors, "mahasiswa_id")
	})

	t.Run("account without student record is rejected", func(t *testing.T) {
		_, err := f.svc.Create(ctx, Actor{UserID: 99}, CreateWorkInput{Judul: "X", Deskripsi: "x"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})
}

func TestWorkService_ApproveReject(t *testing.T) {
	f := newWorkFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.student, CreateWorkInput{
		Judul: "Karya Pending", Deskripsi: "x", Jenis: "skripsi",
	})
	require.NoError(t, err)

	t.Run("non-admin cannot approve", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, f.student, item.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("approve stamps and publishes", func(t *testing.T) {
		approved, err := f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)
		assert.True(t, approved.IsPublished)
		require.True(t, approved.IsApproved())
		assert.Equal(t, f.admin.UserID, *approved.ApprovedByID)
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		first, err := f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)
		again, err := f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ApprovedAt.Unix(), again.ApprovedAt.Unix())
	})

	t.Run("reject clears the stamp and records the reason", func(t *testing.T) {
		rejected, err := f.svc.Reject(ctx, f.admin, item.ID, "tidak sesuai pedoman penulisan")
		require.NoError(t, err)
		assert.False(t, rejected.IsPublished)
		assert.False(t, rejected.IsApproved())
		assert.Nil(t, rejected.ApprovedByID)
		assert.Equal(t, "tidak sesuai pedoman penulisan", rejected.RejectionReason)
	})

	t.Run("re-approval after rejection clears the reason", func(t *testing.T) {
		approved, err := f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)
		assert.Empty(t, approved.RejectionReason)
		assert.True(t, approved.IsPublished)
	})

	t.Run("reject requires a reason within 255 chars", func(t *testing.T) {
		_, err := f.svc.Reject(ctx, f.admin, item.ID, "")
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.FieldErrors, "reason")

		_, err = f.svc.Reject(ctx, f.admin, item.ID, strings.Repeat("x", 256))
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.FieldErrors, "reason")
	})
}

func TestWorkService_UpdateOwnershipRules(t *testing.T) {
	f := newWorkFixture(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, f.student, CreateWorkInput{
		Judul: "Karya Saya", Deskripsi: "x", Jenis: "aplikasi",
	})
	require.NoError(t, err)

	t.Run("other students cannot touch it", func(t *testing.T) {
		judul := "Dicuri"
		_, err := f.svc.Update(ctx, f.other, item.ID, UpdateWorkInput{Judul: &judul})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("owner edits regenerate the slug on title change", func(t *testing.T) {
		judul := "Karya Saya Revisi"
		updated, err := f.svc.Update(ctx, f.student, item.ID, UpdateWorkInput{Judul: &judul})
		require.NoError(t, err)
		assert.Equal(t, "Karya Saya Revisi", updated.Judul)
		assert.True(t, strings.HasPrefix(updated.Slug, "karya-saya-revisi-"))
	})

	t.Run("owner publish request stays unpublished pre-approval", func(t *testing.T) {
		pub := true
		updated, err := f.svc.Update(ctx, f.student, item.ID, UpdateWorkInput{IsPublished: &pub})
		require.NoError(t, err)
		assert.False(t, updated.IsPublished)
	})

	t.Run("owner cannot flip the flag after approval", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)

		unpub := false
		_, err = f.svc.Update(ctx, f.student, item.ID, UpdateWorkInput{IsPublished: &unpub})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("admin publish flip implies approval", func(t *testing.T) {
		fresh, err := f.svc.Create(ctx, f.student, CreateWorkInput{
			Judul: "Karya Baru", Deskripsi: "x",
		})
		require.NoError(t, err)
		require.False(t, fresh.IsApproved())

		pub := true
		updated, err := f.svc.Update(ctx, f.admin, fresh.ID, UpdateWorkInput{IsPublished: &pub})
		require.NoError(t, err)
		assert.True(t, updated.IsPublished)
		require.True(t, updated.IsApproved())
		assert.Equal(t, f.admin.UserID, *updated.ApprovedByID)
	})
}

func TestWorkService_Delete(t *testing.T) {
	f := newWorkFixture(t)
	ctx := context.Background()

	t.Run("owner deletes while pending", func(t *testing.T) {
		item, err := f.svc.Create(ctx, f.student, CreateWorkInput{Judul: "Hapus Saya", Deskripsi: "x"})
		require.NoError(t, err)
		require.NoError(t, f.svc.Delete(ctx, f.student, item.ID))

		_, err = f.svc.Get(ctx, f.admin, item.Slug)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("owner cannot delete after approval", func(t *testing.T) {
		item, err := f.svc.Create(ctx, f.student, CreateWorkInput{Judul: "Disetujui", Deskripsi: "x"})
		require.NoError(t, err)
		_, err = f.svc.Approve(ctx, f.admin, item.ID)
		require.NoError(t, err)

		err = f.svc.Delete(ctx, f.student, item.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)

		// The admin still can.
		require.NoError(t, f.svc.Delete(ctx, f.admin, item.ID))
	})
}

func TestWorkService_Visibility(t *testing.T) {
	f := newWorkFixture(t)
	ctx := context.Background()

	pending, err := f.svc.Create(ctx, f.student, CreateWorkInput{Judul: "Rahasia", Deskripsi: "x"})
	require.NoError(t, err)

	t.Run("unpublished item hidden from other viewers", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.other, pending.Slug)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("owner and admin see the pending item", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.student, pending.Slug)
		assert.NoError(t, err)
		_, err = f.svc.Get(ctx, f.admin, pending.Slug)
		assert.NoError(t, err)
	})

	t.Run("anonymous list only sees published", func(t *testing.T) {
		page, err := f.svc.List(ctx, Actor{}, repository.WorkFilter{}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)

		_, err = f.svc.Approve(ctx, f.admin, pending.ID)
		require.NoError(t, err)

		page, err = f.svc.List(ctx, Actor{}, repository.WorkFilter{}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("my_karya scopes to the caller", func(t *testing.T) {
		page, err := f.svc.List(ctx, f.other, repository.WorkFilter{}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)

		page, err = f.svc.List(ctx, f.student, repository.WorkFilter{}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})
}

func TestSlugify(t *testing.T) {
	s := Slugify("Sistem Informasi Akademik!")
	assert.True(t, strings.HasPrefix(s, "sistem-informasi-akademik-"))
	assert.NotEqual(t, Slugify("Judul Sama"), Slugify("Judul Sama"))

	assert.True(t, strings.HasPrefix(Slugify("!!!"), "karya-"))
}
