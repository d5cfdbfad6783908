package repository

import (
	"context"
	"errors"
	"strings"

	"campushub/internal/cache"
	"campushub/internal/models"
	"campushub/internal/observability"

	"gorm.io/gorm"
)

// WorkFilter narrows and orders the work item listing.
type WorkFilter struct {
	IsPublished *bool
	IsApproved  *bool
	Jenis       string
	MahasiswaID uint
	ProdiID     uint
	Search      string
	SortBy      string
	SortDir     string
	Page        int
	PerPage     int
}

// ApprovalStats aggregates work items by lifecycle state.
type ApprovalStats struct {
	Total     int64 `json:"total"`
	Approved  int64 `json:"approved"`
	Pending   int64 `json:"pending"`
	Rejected  int64 `json:"rejected"`
	Published int64 `json:"published"`
}

// WorkRepository defines persistence operations for student works.
type WorkRepository interface {
	Create(ctx context.Context, item *models.WorkItem) error
	GetByID(ctx context.Context, id uint) (*models.WorkItem, error)
	GetBySlug(ctx context.Context, slug string) (*models.WorkItem, error)
	Update(ctx context.Context, item *models.WorkItem) error
	Delete(ctx context.Context, item *models.WorkItem) error
	List(ctx context.Context, f WorkFilter) (*Page, error)
	CountByStudent(ctx context.Context, mahasiswaID uint) (int64, error)
	Stats(ctx context.Context) (*ApprovalStats, error)
	ListJenis(ctx context.Context) ([]string, error)
}

type workRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewWorkRepository returns a new WorkRepository implementation.
func NewWorkRepository(db *gorm.DB) WorkRepository {
	return &workRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(db),
	}
}

func (r *workRepository) Create(ctx context.Context, item *models.WorkItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A work item with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workRepository) GetByID(ctx context.Context, id uint) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := r.db.WithContext(ctx).
		Preload("Mahasiswa.Prodi").
		Preload("User").
		Preload("ApprovedBy").
		First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Karya", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *workRepository) GetBySlug(ctx context.Context, slug string) (*models.WorkItem, error) {
	var item models.WorkItem
	if err := r.db.WithContext(ctx).
		Preload("Mahasiswa.Prodi").
		Preload("User").
		Preload("ApprovedBy").
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Karya", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *workRepository) Update(ctx context.Context, item *models.WorkItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A work item with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateWork(ctx, item.Slug)
	return nil
}

func (r *workRepository) Delete(ctx context.Context, item *models.WorkItem) error {
	if err := r.db.WithContext(ctx).Delete(&models.WorkItem{}, item.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateWork(ctx, item.Slug)
	return nil
}

// workSortColumns whitelists the ORDER BY targets accepted from the client.
var workSortColumns = map[string]string{
	"created_at":   "karya_mahasiswas.created_at",
	"updated_at":   "karya_mahasiswas.updated_at",
	"judul":        "karya_mahasiswas.judul",
	"jenis":        "karya_mahasiswas.jenis",
	"approved_at":  "karya_mahasiswas.approved_at",
	"is_published": "karya_mahasiswas.is_published",
}

func (r *workRepository) List(ctx context.Context, f WorkFilter) (*Page, error) {
	defer r.metrics.TrackQuery("list", "karya_mahasiswas")()

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}

	q := r.db.WithContext(ctx).Model(&models.WorkItem{})

	if f.IsPublished != nil {
		q = q.Where("karya_mahasiswas.is_published = ?", *f.IsPublished)
	}
	if f.IsApproved != nil {
		if *f.IsApproved {
			q = q.Where("karya_mahasiswas.approved_at IS NOT NULL")
		} else {
			q = q.Where("karya_mahasiswas.approved_at IS NULL")
		}
	}
	if f.Jenis != "" {
		q = q.Where("karya_mahasiswas.jenis = ?", f.Jenis)
	}
	if f.MahasiswaID != 0 {
		q = q.Where("karya_mahasiswas.mahasiswa_id = ?", f.MahasiswaID)
	}
	if f.ProdiID != 0 {
		q = q.Joins("JOIN mahasiswas ON mahasiswas.id = karya_mahasiswas.mahasiswa_id").
			Where("mahasiswas.prodi_id = ?", f.ProdiID)
	}
	if f.Search != "" {
		// LOWER() LIKE keeps the search case-insensitive on both
		// PostgreSQL and the SQLite test database.
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(karya_mahasiswas.judul) LIKE ? OR LOWER(karya_mahasiswas.deskripsi) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	col, ok := workSortColumns[f.SortBy]
	if !ok {
		col = "karya_mahasiswas.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortDir, "asc") {
		dir = "ASC"
	}

	var items []models.WorkItem
	if err := q.
		Preload("Mahasiswa.Prodi").
		Preload("User").
		Preload("ApprovedBy").
		Order(col + " " + dir).
		Limit(f.PerPage).
		Offset((f.Page - 1) * f.PerPage).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return NewPage(items, f.Page, f.PerPage, total), nil
}

func (r *workRepository) CountByStudent(ctx context.Context, mahasiswaID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Where("mahasiswa_id = ?", mahasiswaID).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *workRepository) Stats(ctx context.Context) (*ApprovalStats, error) {
	defer r.metrics.TrackQuery("stats", "karya_mahasiswas")()

	var stats ApprovalStats
	db := r.db.WithContext(ctx).Model(&models.WorkItem{})

	counts := []struct {
		dest *int64
		cond string
	}{
		{&stats.Total, ""},
		{&stats.Approved, "approved_at IS NOT NULL"},
		{&stats.Pending, "approved_at IS NULL AND COALESCE(rejection_reason, '') = ''"},
		{&stats.Rejected, "approved_at IS NULL AND COALESCE(rejection_reason, '') <> ''"},
		{&stats.Published, "is_published"},
	}
	for _, c := range counts {
		q := db.Session(&gorm.Session{})
		if c.cond != "" {
			q = q.Where(c.cond)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return &stats, nil
}

func (r *workRepository) ListJenis(ctx context.Context) ([]string, error) {
	var jenis []string
	err := r.db.WithContext(ctx).
		Model(&models.WorkItem{}).
		Distinct().
		Where("jenis <> ''").
		Order("jenis ASC").
		Pluck("jenis", &jenis).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return jenis, nil
}
