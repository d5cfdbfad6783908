package repository

import (
	"context"
	"log/slog"
	"time"

	"campushub/internal/middleware"
	"campushub/internal/models"

	"gorm.io/gorm"
)

// DashboardStats is the aggregate counter block on the admin landing page.
type DashboardStats struct {
	TotalBerita     int64 `json:"total_berita"`
	TotalPengumuman int64 `json:"total_pengumuman"`
	TotalAgenda     int64 `json:"total_agenda"`
	TotalProdi      int64 `json:"total_prodi"`
	TotalMahasiswa  int64 `json:"total_mahasiswa"`
	TotalKarya      int64 `json:"total_karya"`
	KaryaPending    int64 `json:"karya_pending"`
	TotalKerjasama  int64 `json:"total_kerjasama"`
}

// DashboardSummary carries the recent-activity panels.
type DashboardSummary struct {
	RecentBerita   []models.News     `json:"recent_berita"`
	PendingKarya   []models.WorkItem `json:"pending_karya"`
	UpcomingAgenda []models.Event    `json:"upcoming_agenda"`
}

// DashboardRepository aggregates counts across the content tables.
type DashboardRepository interface {
	Stats(ctx context.Context) (*DashboardStats, error)
	Summary(ctx context.Context) (*DashboardSummary, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository returns a new DashboardRepository implementation.
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// Stats counts each entity independently: a failing table logs a warning and
// leaves its counter at zero rather than failing the whole dashboard. The
// counts always come from the live tables; stale numbers on an admin landing
// page are worse than the eight cheap count queries.
func (r *dashboardRepository) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	counts := []struct {
		dest  *int64
		model interface{}
		cond  string
	}{
		{&stats.TotalBerita, &models.News{}, ""},
		{&stats.TotalPengumuman, &models.Announcement{}, ""},
		{&stats.TotalAgenda, &models.Event{}, ""},
		{&stats.TotalProdi, &models.Program{}, ""},
		{&stats.TotalMahasiswa, &models.Student{}, ""},
		{&stats.TotalKarya, &models.WorkItem{}, ""},
		{&stats.KaryaPending, &models.WorkItem{}, "approved_at IS NULL AND COALESCE(rejection_reason, '') = ''"},
		{&stats.TotalKerjasama, &models.Partnership{}, ""},
	}
	for _, c := range counts {
		q := r.db.WithContext(ctx).Model(c.model)
		if c.cond != "" {
			q = q.Where(c.cond)
		}
		if err := q.Count(c.dest).Error; err != nil {
			middleware.Logger.WarnContext(ctx, "dashboard count failed",
				slog.String("error", err.Error()))
		}
	}
	return &stats, nil
}

func (r *dashboardRepository) Summary(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary

	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(5).
		Find(&summary.RecentBerita).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "dashboard recent berita failed", slog.String("error", err.Error()))
	}

	if err := r.db.WithContext(ctx).
		Preload("Mahasiswa").
		Where("approved_at IS NULL AND COALESCE(rejection_reason, '') = ''").
		Order("created_at ASC").
		Limit(5).
		Find(&summary.PendingKarya).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "dashboard pending karya failed", slog.String("error", err.Error()))
	}

	if err := r.db.WithContext(ctx).
		Where("waktu_mulai > ?", time.Now()).
		Order("waktu_mulai ASC").
		Limit(5).
		Find(&summary.UpcomingAgenda).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "dashboard upcoming agenda failed", slog.String("error", err.Error()))
	}

	return &summary, nil
}
