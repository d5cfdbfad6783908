package server

import (
	"time"

	"campushub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// DashboardStats handles GET /api/dashboard/stats: entity totals plus
// current-month deltas and the highlight panels the admin landing page shows.
func (s *Server) DashboardStats(c *fiber.Ctx) error {
	stats, err := s.dashboardRepo.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	monthStart := time.Now().AddDate(0, 0, 1-time.Now().Day())
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), monthStart.Day(), 0, 0, 0, 0, time.Local)

	deltas := fiber.Map{}
	for _, e := range []struct {
		name  string
		model interface{}
	}{
		{"berita", &models.News{}},
		{"pengumuman", &models.Announcement{}},
		{"agenda", &models.Event{}},
		{"mahasiswa", &models.Student{}},
		{"karya_mahasiswa", &models.WorkItem{}},
		{"kerjasama", &models.Partnership{}},
	} {
		var n int64
		if err := s.db.WithContext(c.Context()).
			Model(e.model).
			Where("created_at >= ?", monthStart).
			Count(&n).Error; err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		deltas[e.name] = n
	}

	var topNews []models.News
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Order("views DESC").
		Limit(5).
		Find(&topNews).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var upcoming []models.Event
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("waktu_mulai > ?", time.Now()).
		Order("waktu_mulai ASC").
		Limit(5).
		Find(&upcoming).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var latestWorks []models.WorkItem
	if err := s.db.WithContext(c.Context()).
		Preload("Mahasiswa").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Limit(5).
		Find(&latestWorks).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	type bucket struct {
		Label string `json:"label"`
		Total int64  `json:"total"`
	}
	var perProdi []bucket
	if err := s.db.WithContext(c.Context()).
		Model(&models.Student{}).
		Select("prodis.nama AS label, COUNT(*) AS total").
		Joins("JOIN prodis ON prodis.id = mahasiswas.prodi_id").
		Group("prodis.nama").
		Order("total DESC").
		Scan(&perProdi).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	var perStatus []bucket
	if err := s.db.WithContext(c.Context()).
		Model(&models.Student{}).
		Select("status AS label, COUNT(*) AS total").
		Group("status").
		Scan(&perStatus).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	var perAngkatan []bucket
	if err := s.db.WithContext(c.Context()).
		Model(&models.Student{}).
		Select("angkatan AS label, COUNT(*) AS total").
		Where("angkatan > 0").
		Group("angkatan").
		Order("angkatan DESC").
		Scan(&perAngkatan).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"stats":            stats,
		"bulan_ini":        deltas,
		"berita_terpopuler": topNews,
		"agenda_mendatang": upcoming,
		"karya_terbaru":    latestWorks,
		"mahasiswa_per_prodi":    perProdi,
		"mahasiswa_per_status":   perStatus,
		"mahasiswa_per_angkatan": perAngkatan,
	})
}

// DashboardSummary handles GET /api/dashboard/summary: the attention panels
// (pending works, this week's events, active announcements, total views).
func (s *Server) DashboardSummary(c *fiber.Ctx) error {
	summary, err := s.dashboardRepo.Summary(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	now := time.Now()
	weekEnd := now.AddDate(0, 0, 7)
	var eventsThisWeek []models.Event
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("waktu_mulai >= ? AND waktu_mulai < ?", now, weekEnd).
		Order("waktu_mulai ASC").
		Find(&eventsThisWeek).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var activeAnnouncements []models.Announcement
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("tanggal_mulai <= ?", now).
		Where("tanggal_selesai IS NULL OR tanggal_selesai >= ?", now).
		Order("tanggal_mulai DESC").
		Find(&activeAnnouncements).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var totalViews int64
	if err := s.db.WithContext(c.Context()).
		Model(&models.News{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&totalViews).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"pending_karya":     summary.PendingKarya,
		"recent_berita":     summary.RecentBerita,
		"agenda_minggu_ini": eventsThisWeek,
		"pengumuman_aktif":  activeAnnouncements,
		"total_views":       totalViews,
	})
}
