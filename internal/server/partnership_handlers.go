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

const (
	partnershipLogoDir = "images/kerjasama"
	partnershipDocDir  = "documents/kerjasama"
	maxDocumentBytes   = 10 << 20
)

// ListPartnerships handles GET /api/kerjasama
func (s *Server) ListPartnerships(c *fiber.Ctx) error {
	p := parsePagination(c)

	q := s.db.WithContext(c.Context()).Model(&models.Partnership{})
	if !s.optionalActor(c).IsAdmin {
		q = q.Where("is_active = ?", true)
	} else if active := queryBool(c, "is_active"); active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if jenis := c.Query("jenis"); jenis != "" {
		q = q.Where("jenis = ?", jenis)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(nama_instansi) LIKE ?", like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var items []models.Partnership
	if err := q.Order("created_at DESC").
		Limit(p.PerPage).
		Offset((p.Page - 1) * p.PerPage).
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"kerjasama": repository.NewPage(items, p.Page, p.PerPage, total),
	})
}

// ListPartnershipJenis handles GET /api/kerjasama/meta/jenis
func (s *Server) ListPartnershipJenis(c *fiber.Ctx) error {
	var jenis []string
	if err := s.db.WithContext(c.Context()).
		Model(&models.Partnership{}).
		Distinct().
		Where("jenis <> ''").
		Order("jenis ASC").
		Pluck("jenis", &jenis).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"jenis": jenis})
}

// GetPartnership handles GET /api/kerjasama/:slug
func (s *Server) GetPartnership(c *fiber.Ctx) error {
	slug := c.Params("slug")
	var item models.Partnership
	if err := s.db.WithContext(c.Context()).
		Where("slug = ?", slug).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Kerjasama", slug))
		}
		return respondError(c, models.NewInternalError(err))
	}
	if !item.IsActive && !s.optionalActor(c).IsAdmin {
		return respondError(c, models.NewNotFoundError("Kerjasama", slug))
	}
	return c.JSON(fiber.Map{"kerjasama": item})
}

// applyPartnershipForm copies the shared multipart fields onto the record.
func (s *Server) applyPartnershipForm(c *fiber.Ctx, item *models.Partnership) error {
	if v := c.FormValue("deskripsi"); v != "" {
		item.Deskripsi = v
	}
	if v := c.FormValue("jenis"); v != "" {
		item.Jenis = v
	}
	if v := c.FormValue("manfaat"); v != "" {
		item.Manfaat = v
	}
	if raw := c.FormValue("is_active"); raw != "" {
		item.IsActive = raw == "1" || raw == "true"
	}
	for _, f := range []struct {
		field string
		dest  **time.Time
	}{
		{"tanggal_mulai", &item.TanggalMulai},
		{"tanggal_selesai", &item.TanggalSelesai},
	} {
		if raw := c.FormValue(f.field); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return models.NewFieldValidationError(map[string][]string{
					f.field: {"The " + f.field + " does not match the format Y-m-d."},
				})
			}
			*f.dest = &t
		}
	}

	if fh, err := s.formFile(c, "logo", maxImageBytes, true); err != nil {
		return errResponseWritten
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, partnershipLogoDir)
		if serr != nil {
			return models.NewInternalError(serr)
		}
		s.store.Remove(item.Logo)
		item.Logo = path
	}
	if fh, err := s.formFile(c, "dokumen", maxDocumentBytes, false); err != nil {
		return errResponseWritten
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, partnershipDocDir)
		if serr != nil {
			return models.NewInternalError(serr)
		}
		s.store.Remove(item.Dokumen)
		item.Dokumen = path
	}
	return nil
}

// CreatePartnership handles POST /api/kerjasama (multipart)
func (s *Server) CreatePartnership(c *fiber.Ctx) error {
	nama := c.FormValue("nama_instansi")
	if fields := validation.Var("nama_instansi", nama, "required,max=255"); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	item := &models.Partnership{
		NamaInstansi: nama,
		Slug:         service.Slugify(nama),
		IsActive:     true,
	}
	if err := s.applyPartnershipForm(c, item); err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return respondError(c, err)
	}

	if err := s.db.WithContext(c.Context()).Create(item).Error; err != nil {
		s.store.Remove(item.Logo)
		s.store.Remove(item.Dokumen)
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"kerjasama": item})
}

// UpdatePartnership handles PUT /api/kerjasama/:id (multipart)
func (s *Server) UpdatePartnership(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Partnership
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Kerjasama", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if nama := c.FormValue("nama_instansi"); nama != "" && nama != item.NamaInstansi {
		item.NamaInstansi = nama
		item.Slug = service.Slugify(nama)
	}
	if err := s.applyPartnershipForm(c, &item); err != nil {
		if errors.Is(err, errResponseWritten) {
			return nil
		}
		return respondError(c, err)
	}

	if err := s.db.WithContext(c.Context()).Save(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"kerjasama": item})
}

// TogglePartnershipActive handles PUT /api/kerjasama/:id/toggle-active
func (s *Server) TogglePartnershipActive(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Partnership
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Kerjasama", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	item.IsActive = !item.IsActive
	if err := s.db.WithContext(c.Context()).Save(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"kerjasama": item})
}

// DownloadPartnershipDocument handles GET /api/kerjasama/:id/download
func (s *Server) DownloadPartnershipDocument(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Partnership
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Kerjasama", id))
		}
		return respondError(c, models.NewInternalError(err))
	}
	if item.Dokumen == "" || !s.store.Exists(item.Dokumen) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Dokumen kerjasama", id))
	}

	abs, err := s.store.Abs(item.Dokumen)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Download(abs)
}

// DeletePartnership handles DELETE /api/kerjasama/:id
func (s *Server) DeletePartnership(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var item models.Partnership
	if err := s.db.WithContext(c.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Kerjasama", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.db.WithContext(c.Context()).Delete(&item).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.store.Remove(item.Logo)
	s.store.Remove(item.Dokumen)

	return c.JSON(fiber.Map{"message": "Kerjasama berhasil dihapus"})
}
