package server

import (
	"errors"
	"strings"
	"time"

	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/service"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const announcementImageDir = "images/pengumuman"

// ListAnnouncements handles GET /api/pengumuman
func (s *Server) ListAnnouncements(c *fiber.Ctx) error {
	p := parsePagination(c)

	q := s.db.WithContext(c.Context()).Model(&models.Announcement{})
	if !s.optionalActor(c).IsAdmin {
		q = q.Where("is_published = ?", true)
	} else if published := queryBool(c, "is_published"); published != nil {
		q = q.Where("is_published = ?", *published)
	}
	if tipe := c.Query("tipe"); tipe != "" {
		q = q.Where("tipe = ?", tipe)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(judul) LIKE ?", like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var items []models.Announcement
	if err := q.Order("tanggal_mulai DESC").
		Limit(p.PerPage).
		Offset((p.Page - 1) * p.PerPage).
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"pengumuman": repository.NewPage(items, p.Page, p.PerPage, total),
	})
}

// ActiveAnnouncements handles GET /api/pengumuman/active: published rows
// whose display window covers right now.
func (s *Server) ActiveAnnouncements(c *fiber.Ctx) error {
	now := time.Now()
	var items []models.Announcement
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("tanggal_mulai <= ?", now).
		Where("tanggal_selesai IS NULL OR tanggal_selesai >= ?", now).
		Order("tanggal_mulai DESC").
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"pengumuman": items})
}

// GetAnnouncement handles GET /api/pengumuman/:slug
func (s *Server) GetAnnouncement(c *fiber.Ctx) error {
	slug := c.Params("slug")
	var item models.Announcement
	if err := s.db.WithContext(c.Context()).
		Preload("User").
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Pengumuman", slug))
		}
		return respondError(c, models.NewInternalError(err))
	}
	if !item.IsPublished && !s.optionalActor(c).IsAdmin {
		return respondError(c, models.NewNotFoundError("Pengumuman", slug))
	}
	return c.JSON(fiber.Map{"pengumuman": item})
}

// parseAnnouncementDates validates the tanggal_mulai/tanggal_selesai pair.
func parseAnnouncementDates(mulai, selesai string) (time.Time, *time.Time, map[string][]string) {
	start, err := time.Parse("2006-01-02", mulai)
	if err != nil {
		return time.Time{}, nil, map[string][]string{
			"tanggal_mulai": {"The tanggal_mulai does not match the format Y-m-d."},
		}
	}
	if selesai == "" {
		return start, nil, nil
	}
	end, err := time.Parse("2006-01-02", selesai)
	if err != nil {
		return time.Time{}, nil, map[string][]string{
			"tanggal_selesai": {"The tanggal_selesai does not match the format Y-m-d."},
		}
	}
	if end.Before(start) {
		return time.Time{}, nil, map[string][]string{
			"tanggal_selesai": {"The tanggal_selesai must be a date after or equal to tanggal_mulai."},
		}
	}
	return start, &end, nil
}

// CreateAnnouncement handles POST /api/pengumuman (multipart)
func (s *Server) CreateAnnouncement(c *fiber.Ctx) error {
	judul := c.FormValue("judul")
	konten := c.FormValue("konten")
	if fields := merge(
		validation.Var("judul", judul, "required,max=255"),
		validation.Var("konten", konten, "required"),
		validation.Var("tanggal_mulai", c.FormValue("tanggal_mulai"), "required"),
	); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	start, end, fields := parseAnnouncementDates(
		c.FormValue("tanggal_mulai"), c.FormValue("tanggal_selesai"))
	if fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	item := &models.Announcement{
		Judul:          judul,
		Slug:           service.Slugify(judul),
		Konten:         konten,
		UserID:         currentUserID(c),
		IsPublished:    c.FormValue("is_published") == "1" || c.FormValue("is_published") == "true",
		TanggalMulai:   start,
		TanggalSelesai: end,
		Tipe:           c.FormValue("tipe"),
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, announcementImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		item.Gambar = path
	}

	if err := s.db.WithContext(c.Context()).Create(item).Error; err != nil {
		s.store.Remove(item.Gambar)
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pengumuman": item})
}

// UpdateAnnouncement handles PUT /api/pengumuman/:id (multipart)
func (s *Server) UpdateAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Announcement
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Pengumuman", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if judul := c.FormValue("judul"); judul != "" && judul != item.Judul {
		item.Judul = judul
		item.Slug = service.Slugify(judul)
	}
	if konten := c.FormValue("konten"); konten != "" {
		item.Konten = konten
	}
	if tipe := c.FormValue("tipe"); tipe != "" {
		item.Tipe = tipe
	}
	if raw := c.FormValue("is_published"); raw != "" {
		item.IsPublished = raw == "1" || raw == "true"
	}
	if mulai := c.FormValue("tanggal_mulai"); mulai != "" {
		selesai := c.FormValue("tanggal_selesai")
		if selesai == "" && item.TanggalSelesai != nil {
			selesai = item.TanggalSelesai.Format("2006-01-02")
		}
		start, end, fields := parseAnnouncementDates(mulai, selesai)
		if fields != nil {
			return models.RespondWithFieldErrors(c, fields)
		}
		item.TanggalMulai = start
		item.TanggalSelesai = end
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, announcementImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		s.store.Remove(item.Gambar)
		item.Gambar = path
	}

	if err := s.db.WithContext(c.Context()).Save(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"pengumuman": item})
}

// DeleteAnnouncement handles DELETE /api/pengumuman/:id
func (s *Server) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Announcement
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Pengumuman", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.db.WithContext(c.Context()).Delete(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.store.Remove(item.Gambar)

	return c.JSON(fiber.Map{"message": "Pengumuman berhasil dihapus"})
}
