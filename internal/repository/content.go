package repository

import (
	"context"
	"errors"
	"strings"

	"campushub/internal/cache"
	"campushub/internal/models"

	"gorm.io/gorm"
)

// ContentFilter narrows the public content listings (news, announcements,
// events, partnerships).
type ContentFilter struct {
	Search      string
	IsPublished *bool
	Jenis       string
	Page        int
	PerPage     int
}

// NewsRepository defines persistence operations for campus news.
type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	GetBySlug(ctx context.Context, slug string) (*models.News, error)
	GetByID(ctx context.Context, id uint) (*models.News, error)
	List(ctx context.Context, f ContentFilter) (*Page, error)
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, news *models.News) error
	IncrementViews(ctx context.Context, id uint) error
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository returns a new NewsRepository implementation.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	if err := r.db.WithContext(ctx).Create(news).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A news article with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *newsRepository) GetBySlug(ctx context.Context, slug string) (*models.News, error) {
	var news models.News
	err := cache.Aside(ctx, cache.NewsKey(slug), &news, cache.NewsTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("User").
			Where("slug = ?", slug).
			First(&news).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Berita", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).Preload("User").First(&news, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Berita", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &news, nil
}

func (r *newsRepository) List(ctx context.Context, f ContentFilter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}

	q := r.db.WithContext(ctx).Model(&models.News{})
	if f.IsPublished != nil {
		q = q.Where("is_published = ?", *f.IsPublished)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(judul) LIKE ? OR LOWER(konten) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.News
	if err := q.
		Preload("User").
		Order("created_at DESC").
		Limit(f.PerPage).
		Offset((f.Page - 1) * f.PerPage).
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return NewPage(items, f.Page, f.PerPage, total), nil
}

func (r *newsRepository) Update(ctx context.Context, news *models.News) error {
	if err := r.db.WithContext(ctx).Save(news).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A news article with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateNews(ctx, news.Slug)
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, news *models.News) error {
	if err := r.db.WithContext(ctx).Delete(&models.News{}, news.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateNews(ctx, news.Slug)
	return nil
}

func (r *newsRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.News{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// ProgramRepository defines persistence operations for study programs.
type ProgramRepository interface {
	Create(ctx context.Context, p *models.Program) error
	GetBySlug(ctx context.Context, slug string) (*models.Program, error)
	GetByID(ctx context.Context, id uint) (*models.Program, error)
	List(ctx context.Context) ([]models.Program, error)
	Update(ctx context.Context, p *models.Program) error
	Delete(ctx context.Context, id uint) error
	CountStudents(ctx context.Context, id uint) (int64, error)
}

type programRepository struct {
	db *gorm.DB
}

// NewProgramRepository returns a new ProgramRepository implementation.
func NewProgramRepository(db *gorm.DB) ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) Create(ctx context.Context, p *models.Program) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A program with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *programRepository) GetBySlug(ctx context.Context, slug string) (*models.Program, error) {
	var p models.Program
	err := cache.Aside(ctx, cache.ProgramKey(slug), &p, cache.ProgramTTL, func() error {
		if err := r.db.WithContext(ctx).
			Where("slug = ?", slug).
			First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Prodi", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *programRepository) GetByID(ctx context.Context, id uint) (*models.Program, error) {
	var p models.Program
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Prodi", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *programRepository) List(ctx context.Context) ([]models.Program, error) {
	var programs []models.Program
	if err := r.db.WithContext(ctx).Order("nama ASC").Find(&programs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return programs, nil
}

func (r *programRepository) Update(ctx context.Context, p *models.Program) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewValidationError("A program with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateProgram(ctx, p.Slug)
	return nil
}

// Delete removes the program. Programs that still have students are an
// integrity conflict surfaced as 422 with has_relations set.
func (r *programRepository) Delete(ctx context.Context, id uint) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := r.CountStudents(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return models.NewConflictError("Prodi tidak dapat dihapus karena masih memiliki data mahasiswa")
	}

	if err := r.db.WithContext(ctx).Delete(&models.Program{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProgram(ctx, p.Slug)
	return nil
}

func (r *programRepository) CountStudents(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("prodi_id = ?", id).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
