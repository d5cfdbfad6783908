package server

import (
	"net/http"
	"testing"
	"time"

	"campushub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDashboardContent(t *testing.T, e *testEnv) {
	t.Helper()

	now := time.Now()
	require.NoError(t, e.db.Create(&models.News{
		Judul: "Berita Populer", Slug: "berita-populer-1", Konten: "x",
		UserID: e.admin.ID, IsPublished: true, PublishedAt: &now, Views: 120,
	}).Error)

	soon := now.Add(48 * time.Hour)
	require.NoError(t, e.db.Create(&models.Event{
		Judul: "Wisuda", Slug: "wisuda-1", WaktuMulai: soon,
		UserID: e.admin.ID, IsPublished: true,
	}).Error)

	require.NoError(t, e.db.Create(&models.Announcement{
		Judul: "Libur Semester", Slug: "libur-semester-1", Konten: "x",
		UserID: e.admin.ID, IsPublished: true, TanggalMulai: now.Add(-time.Hour),
	}).Error)

	require.NoError(t, e.db.Create(&models.WorkItem{
		Judul: "Menunggu Review", Slug: "menunggu-review-1", Deskripsi: "x",
		MahasiswaID: e.record.ID, UserID: e.student.ID, Jenis: "skripsi",
	}).Error)
}

func TestDashboardStats(t *testing.T) {
	e := setupEnv(t)
	seedDashboardContent(t, e)

	t.Run("admin only", func(t *testing.T) {
		status, _ := httpGet(e, "/api/dashboard/stats", e.token(e.student))
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("totals and panels", func(t *testing.T) {
		status, body := httpGet(e, "/api/dashboard/stats", e.token(e.admin))
		require.Equal(t, http.StatusOK, status)

		stats := body["stats"].(map[string]interface{})
		assert.Equal(t, float64(1), stats["total_berita"])
		assert.Equal(t, float64(1), stats["total_mahasiswa"])
		assert.Equal(t, float64(1), stats["karya_pending"])

		top := body["berita_terpopuler"].([]interface{})
		require.Len(t, top, 1)
		assert.Equal(t, "Berita Populer", top[0].(map[string]interface{})["judul"])

		upcoming := body["agenda_mendatang"].([]interface{})
		assert.Len(t, upcoming, 1)

		perProdi := body["mahasiswa_per_prodi"].([]interface{})
		require.Len(t, perProdi, 1)
		assert.Equal(t, "Sistem Informasi", perProdi[0].(map[string]interface{})["label"])
	})
}

func TestDashboardSummary(t *testing.T) {
	e := setupEnv(t)
	seedDashboardContent(t, e)

	status, body := httpGet(e, "/api/dashboard/summary", e.token(e.admin))
	require.Equal(t, http.StatusOK, status)

	pending := body["pending_karya"].([]interface{})
	require.Len(t, pending, 1)
	assert.Equal(t, "Menunggu Review", pending[0].(map[string]interface{})["judul"])

	week := body["agenda_minggu_ini"].([]interface{})
	assert.Len(t, week, 1)

	active := body["pengumuman_aktif"].([]interface{})
	assert.Len(t, active, 1)

	assert.Equal(t, float64(120), body["total_views"])
}
