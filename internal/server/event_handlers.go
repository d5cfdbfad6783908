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

const eventImageDir = "images/agenda"

// ListEvents handles GET /api/agenda
func (s *Server) ListEvents(c *fiber.Ctx) error {
	p := parsePagination(c)

	q := s.db.WithContext(c.Context()).Model(&models.Event{})
	if !s.optionalActor(c).IsAdmin {
		q = q.Where("is_published = ?", true)
	} else if published := queryBool(c, "is_published"); published != nil {
		q = q.Where("is_published = ?", *published)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(judul) LIKE ? OR LOWER(lokasi) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var items []models.Event
	if err := q.Order("waktu_mulai DESC").
		Limit(p.PerPage).
		Offset((p.Page - 1) * p.PerPage).
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"agenda": repository.NewPage(items, p.Page, p.PerPage, total),
	})
}

// UpcomingEvents handles GET /api/agenda/upcoming
func (s *Server) UpcomingEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 20 {
		limit = 5
	}

	var items []models.Event
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("waktu_mulai > ?", time.Now()).
		Order("waktu_mulai ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"agenda": items})
}

// EventCalendar handles GET /api/agenda/calendar?year=&month=: published
// events whose start falls inside the requested month.
func (s *Server) EventCalendar(c *fiber.Ctx) error {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"month": {"The month must be between 1 and 12."},
		})
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var items []models.Event
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Where("waktu_mulai >= ? AND waktu_mulai < ?", start, end).
		Order("waktu_mulai ASC").
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"agenda": items})
}

// GetEvent handles GET /api/agenda/:slug
func (s *Server) GetEvent(c *fiber.Ctx) error {
	slug := c.Params("slug")
	var item models.Event
	if err := s.db.WithContext(c.Context()).
		Preload("User").
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Agenda", slug))
		}
		return respondError(c, models.NewInternalError(err))
	}
	if !item.IsPublished && !s.optionalActor(c).IsAdmin {
		return respondError(c, models.NewNotFoundError("Agenda", slug))
	}
	return c.JSON(fiber.Map{"agenda": item})
}

// parseEventTimes validates the waktu_mulai/waktu_selesai pair.
func parseEventTimes(mulai, selesai string) (time.Time, *time.Time, map[string][]string) {
	start, err := time.Parse("2006-01-02 15:04", mulai)
	if err != nil {
		return time.Time{}, nil, map[string][]string{
			"waktu_mulai": {"The waktu_mulai does not match the format Y-m-d H:i."},
		}
	}
	if selesai == "" {
		return start, nil, nil
	}
	end, err := time.Parse("2006-01-02 15:04", selesai)
	if err != nil {
		return time.Time{}, nil, map[string][]string{
			"waktu_selesai": {"The waktu_selesai does not match the format Y-m-d H:i."},
		}
	}
	if end.Before(start) {
		return time.Time{}, nil, map[string][]string{
			"waktu_selesai": {"The waktu_selesai must be a date after waktu_mulai."},
		}
	}
	return start, &end, nil
}

// CreateEvent handles POST /api/agenda (multipart)
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	judul := c.FormValue("judul")
	if fields := merge(
		validation.Var("judul", judul, "required,max=255"),
		validation.Var("waktu_mulai", c.FormValue("waktu_mulai"), "required"),
	); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	start, end, fields := parseEventTimes(
		c.FormValue("waktu_mulai"), c.FormValue("waktu_selesai"))
	if fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	item := &models.Event{
		Judul:        judul,
		Slug:         service.Slugify(judul),
		Deskripsi:    c.FormValue("deskripsi"),
		Lokasi:       c.FormValue("lokasi"),
		WaktuMulai:   start,
		WaktuSelesai: end,
		UserID:       currentUserID(c),
		IsPublished:  c.FormValue("is_published") == "1" || c.FormValue("is_published") == "true",
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, eventImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		item.Gambar = path
	}

	if err := s.db.WithContext(c.Context()).Create(item).Error; err != nil {
		s.store.Remove(item.Gambar)
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"agenda": item})
}

// UpdateEvent handles PUT /api/agenda/:id (multipart)
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Event
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Agenda", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if judul := c.FormValue("judul"); judul != "" && judul != item.Judul {
		item.Judul = judul
		item.Slug = service.Slugify(judul)
	}
	if v := c.FormValue("deskripsi"); v != "" {
		item.Deskripsi = v
	}
	if v := c.FormValue("lokasi"); v != "" {
		item.Lokasi = v
	}
	if raw := c.FormValue("is_published"); raw != "" {
		item.IsPublished = raw == "1" || raw == "true"
	}
	if mulai := c.FormValue("waktu_mulai"); mulai != "" {
		selesai := c.FormValue("waktu_selesai")
		if selesai == "" && item.WaktuSelesai != nil {
			selesai = item.WaktuSelesai.Format("2006-01-02 15:04")
		}
		start, end, fields := parseEventTimes(mulai, selesai)
		if fields != nil {
			return models.RespondWithFieldErrors(c, fields)
		}
		item.WaktuMulai = start
		item.WaktuSelesai = end
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, eventImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		s.store.Remove(item.Gambar)
		item.Gambar = path
	}

	if err := s.db.WithContext(c.Context()).Save(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"agenda": item})
}

// ToggleEventPublish handles PUT /api/agenda/:id/toggle-publish
func (s *Server) ToggleEventPublish(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Event
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Agenda", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	item.IsPublished = !item.IsPublished
	if err := s.db.WithContext(c.Context()).Save(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"agenda": item})
}

// DeleteEvent handles DELETE /api/agenda/:id
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Event
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Agenda", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.db.WithContext(c.Context()).Delete(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.store.Remove(item.Gambar)

	return c.JSON(fiber.Map{"message": "Agenda berhasil dihapus"})
}
