package server

import (
	"mime/multipart"
	"strconv"
	"strings"

	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/service"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	maxThumbnailBytes = 2 << 20
	maxWorkFileBytes  = 20 << 20

	thumbnailDir = "karya/thumbnails"
	workFileDir  = "karya/files"
)

type workForm struct {
	Judul       string `json:"judul" validate:"required,max=255"`
	Deskripsi   string `json:"deskripsi" validate:"required"`
	Jenis       string `json:"jenis" validate:"required,max=100"`
	URL         string `json:"url" validate:"omitempty,url"`
	MahasiswaID uint   `json:"mahasiswa_id"`
	IsPublished *bool  `json:"is_published"`
}

// parseWorkForm reads the multipart fields shared by create and update.
func parseWorkForm(c *fiber.Ctx) workForm {
	var f workForm
	f.Judul = c.FormValue("judul")
	f.Deskripsi = c.FormValue("deskripsi")
	f.Jenis = c.FormValue("jenis")
	f.URL = c.FormValue("url")
	if raw := c.FormValue("mahasiswa_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			f.MahasiswaID = uint(id)
		}
	}
	if raw := c.FormValue("is_published"); raw != "" {
		v := raw == "1" || raw == "true"
		f.IsPublished = &v
	}
	return f
}

// formFile returns the named multipart file or nil when absent. Oversized or
// wrongly typed uploads write a 422 and return errResponseWritten.
func (s *Server) formFile(c *fiber.Ctx, name string, maxBytes int64, imageOnly bool) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, nil
	}
	if fh.Size > maxBytes {
		_ = models.RespondWithFieldErrors(c, map[string][]string{
			name: {"The " + name + " may not be greater than " +
				strconv.FormatInt(maxBytes>>20, 10) + " megabytes."},
		})
		return nil, errResponseWritten
	}
	if imageOnly && !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		_ = models.RespondWithFieldErrors(c, map[string][]string{
			name: {"The " + name + " must be an image."},
		})
		return nil, errResponseWritten
	}
	return fh, nil
}

// ListWorks handles GET /api/karya-mahasiswa
func (s *Server) ListWorks(c *fiber.Ctx) error {
	actor := s.optionalActor(c)
	p := parsePagination(c)

	var mahasiswaID, prodiID uint
	if v := c.QueryInt("mahasiswa_id", 0); v > 0 {
		mahasiswaID = uint(v)
	}
	if v := c.QueryInt("prodi_id", 0); v > 0 {
		prodiID = uint(v)
	}

	filter := repository.WorkFilter{
		IsPublished: queryBool(c, "is_published"),
		IsApproved:  queryBool(c, "is_approved"),
		Jenis:       c.Query("jenis"),
		MahasiswaID: mahasiswaID,
		ProdiID:     prodiID,
		Search:      c.Query("search"),
		SortBy:      c.Query("sort_by"),
		SortDir:     c.Query("sort_direction"),
		Page:        p.Page,
		PerPage:     p.PerPage,
	}
	myKarya := c.Query("my_karya") == "1" || c.Query("my_karya") == "true"

	page, err := s.workService.List(c.Context(), actor, filter, myKarya)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"karya_mahasiswa": page})
}

// CreateWork handles POST /api/karya-mahasiswa (multipart)
func (s *Server) CreateWork(c *fiber.Ctx) error {
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, err)
	}

	form := parseWorkForm(c)
	if fields := validation.Struct(form); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	in := service.CreateWorkInput{
		Judul:       form.Judul,
		Deskripsi:   form.Deskripsi,
		Jenis:       form.Jenis,
		URL:         form.URL,
		MahasiswaID: form.MahasiswaID,
		IsPublished: form.IsPublished,
	}

	if fh, ferr := s.formFile(c, "thumbnail", maxThumbnailBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, thumbnailDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		in.Thumbnail = path
	}
	if fh, ferr := s.formFile(c, "file", maxWorkFileBytes, false); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, workFileDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		in.File = path
	}

	item, err := s.workService.Create(c.Context(), actor, in)
	if err != nil {
		// A failed insert orphans the just-saved files; drop them.
		s.store.Remove(in.Thumbnail)
		s.store.Remove(in.File)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"karya_mahasiswa": item})
}

// GetWork handles GET /api/karya-mahasiswa/:slug
func (s *Server) GetWork(c *fiber.Ctx) error {
	actor := s.optionalActor(c)

	item, err := s.workService.Get(c.Context(), actor, c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"karya_mahasiswa": item})
}

// UpdateWork handles PUT /api/karya-mahasiswa/:id (multipart)
func (s *Server) UpdateWork(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, err)
	}

	var in service.UpdateWorkInput
	if v := c.FormValue("judul"); v != "" {
		if fields := validation.Var("judul", v, "max=255"); fields != nil {
			return models.RespondWithFieldErrors(c, fields)
		}
		in.Judul = &v
	}
	if v := c.FormValue("deskripsi"); v != "" {
		in.Deskripsi = &v
	}
	if v := c.FormValue("jenis"); v != "" {
		in.Jenis = &v
	}
	if v := c.FormValue("url"); v != "" {
		if fields := validation.Var("url", v, "url"); fields != nil {
			return models.RespondWithFieldErrors(c, fields)
		}
		in.URL = &v
	}
	if raw := c.FormValue("is_published"); raw != "" {
		v := raw == "1" || raw == "true"
		in.IsPublished = &v
	}

	if fh, ferr := s.formFile(c, "thumbnail", maxThumbnailBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, thumbnailDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		in.Thumbnail = &path
	}
	if fh, ferr := s.formFile(c, "file", maxWorkFileBytes, false); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, workFileDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		in.File = &path
	}

	item, err := s.workService.Update(c.Context(), actor, id, in)
	if err != nil {
		// A refused update orphans the just-saved files; drop them.
		if in.Thumbnail != nil {
			s.store.Remove(*in.Thumbnail)
		}
		if in.File != nil {
			s.store.Remove(*in.File)
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"karya_mahasiswa": item})
}

// DeleteWork handles DELETE /api/karya-mahasiswa/:id
func (s *Server) DeleteWork(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.workService.Delete(c.Context(), actor, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Karya berhasil dihapus"})
}

// ApproveWork handles PUT /api/karya-mahasiswa/:id/approve
func (s *Server) ApproveWork(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, err)
	}

	item, err := s.workService.Approve(c.Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"karya_mahasiswa": item})
}

// RejectWork handles PUT /api/karya-mahasiswa/:id/reject
func (s *Server) RejectWork(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	actor, err := s.actor(c)
	if err != nil {
		return respondError(c, err)
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.workService.Reject(c.Context(), actor, id, req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"karya_mahasiswa": item})
}

// DownloadWork handles GET /api/karya-mahasiswa/:id/download
func (s *Server) DownloadWork(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.workRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if item.File == "" || !s.store.Exists(item.File) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("File karya", id))
	}

	abs, err := s.store.Abs(item.File)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Download(abs)
}

// ListWorkJenis handles GET /api/karya-mahasiswa/meta/jenis
func (s *Server) ListWorkJenis(c *fiber.Ctx) error {
	jenis, err := s.workRepo.ListJenis(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"jenis": jenis})
}

// WorkApprovalStats handles GET /api/karya-mahasiswa/stats/approval
func (s *Server) WorkApprovalStats(c *fiber.Ctx) error {
	stats, err := s.workRepo.Stats(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	// Per-jenis and per-prodi breakdowns round out the admin view.
	type bucket struct {
		Label string `json:"label"`
		Total int64  `json:"total"`
	}
	var perJenis []bucket
	if err := s.db.WithContext(c.Context()).
		Model(&models.WorkItem{}).
		Select("jenis AS label, COUNT(*) AS total").
		Where("jenis <> ''").
		Group("jenis").
		Order("total DESC").
		Scan(&perJenis).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	var perProdi []bucket
	if err := s.db.WithContext(c.Context()).
		Model(&models.WorkItem{}).
		Select("prodis.nama AS label, COUNT(*) AS total").
		Joins("JOIN mahasiswas ON mahasiswas.id = karya_mahasiswas.mahasiswa_id").
		Joins("JOIN prodis ON prodis.id = mahasiswas.prodi_id").
		Group("prodis.nama").
		Order("total DESC").
		Scan(&perProdi).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"stats":     stats,
		"per_jenis": perJenis,
		"per_prodi": perProdi,
	})
}
