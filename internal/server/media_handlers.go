package server

import (
	"errors"
	"strconv"

	"campushub/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UploadMedia handles POST /api/upload. The owner kind decides the storage
// directory; the returned record carries the relative path the frontend
// links against.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	kind := models.MediaOwnerKind(c.FormValue("owner_kind"))
	if !kind.Valid() {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"owner_kind": {"The selected owner_kind is invalid."},
		})
	}

	var ownerID uint
	if raw := c.FormValue("owner_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return models.RespondWithFieldErrors(c, map[string][]string{
				"owner_id": {"The owner_id must be a positive integer."},
			})
		}
		ownerID = uint(id)
	}

	fh, err := s.formFile(c, "file", maxImageBytes, true)
	if err != nil {
		return nil
	}
	if fh == nil {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"file": {"The file field is required."},
		})
	}

	media := &models.Media{
		Nama:   fh.Filename,
		Tipe:   fh.Header.Get("Content-Type"),
		Ukuran: fh.Size,
		Owner:  models.MediaOwner{Kind: kind, ID: ownerID},
	}

	path, err := s.store.SaveUpload(c, fh, media.StorageDir())
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	media.FilePath = path

	if err := s.db.WithContext(c.Context()).Create(media).Error; err != nil {
		s.store.Remove(path)
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"media": media})
}

// ListMediaByOwner handles GET /api/media/mediable/:kind/:id
func (s *Server) ListMediaByOwner(c *fiber.Ctx) error {
	kind := models.MediaOwnerKind(c.Params("kind"))
	if !kind.Valid() {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"kind": {"The selected kind is invalid."},
		})
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var items []models.Media
	if err := s.db.WithContext(c.Context()).
		Where("owner_kind = ? AND owner_id = ?", kind, id).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"media": items})
}

// DeleteMedia handles DELETE /api/media/:id
func (s *Server) DeleteMedia(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var media models.Media
	if err := s.db.WithContext(c.Context()).First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewNotFoundError("Media", id))
		}
		return respondError(c, models.NewInternalError(err))
	}

	if err := s.db.WithContext(c.Context()).Delete(&media).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	s.store.Remove(media.FilePath)

	return c.JSON(fiber.Map{"message": "Media berhasil dihapus"})
}
