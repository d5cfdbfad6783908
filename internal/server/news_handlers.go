package server

import (
	"time"

	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/service"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	maxImageBytes = 5 << 20
	newsImageDir  = "images/berita"
)

// ListNews handles GET /api/berita
func (s *Server) ListNews(c *fiber.Ctx) error {
	p := parsePagination(c)

	published := queryBool(c, "is_published")
	if published == nil && !s.optionalActor(c).IsAdmin {
		// Anonymous viewers only see published articles.
		v := true
		published = &v
	}

	page, err := s.newsRepo.List(c.Context(), repository.ContentFilter{
		Search:      c.Query("search"),
		IsPublished: published,
		Page:        p.Page,
		PerPage:     p.PerPage,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"berita": page})
}

// LatestNews handles GET /api/berita/latest
func (s *Server) LatestNews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	if limit < 1 || limit > 20 {
		limit = 5
	}

	var items []models.News
	if err := s.db.WithContext(c.Context()).
		Where("is_published = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"berita": items})
}

// GetNews handles GET /api/berita/:slug and counts the view.
func (s *Server) GetNews(c *fiber.Ctx) error {
	news, err := s.newsRepo.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	if !news.IsPublished && !s.optionalActor(c).IsAdmin {
		return respondError(c, models.NewNotFoundError("Berita", c.Params("slug")))
	}

	if err := s.newsRepo.IncrementViews(c.Context(), news.ID); err != nil {
		return respondError(c, err)
	}
	news.Views++

	return c.JSON(fiber.Map{"berita": news})
}

// CreateNews handles POST /api/berita (multipart)
func (s *Server) CreateNews(c *fiber.Ctx) error {
	judul := c.FormValue("judul")
	konten := c.FormValue("konten")
	if fields := merge(
		validation.Var("judul", judul, "required,max=255"),
		validation.Var("konten", konten, "required"),
	); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	news := &models.News{
		Judul:  judul,
		Slug:   service.Slugify(judul),
		Konten: konten,
		UserID: currentUserID(c),
	}
	if raw := c.FormValue("is_published"); raw == "1" || raw == "true" {
		now := time.Now()
		news.IsPublished = true
		news.PublishedAt = &now
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, newsImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		news.Gambar = path
	}

	if err := s.newsRepo.Create(c.Context(), news); err != nil {
		s.store.Remove(news.Gambar)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"berita": news})
}

// UpdateNews handles PUT /api/berita/:id (multipart)
func (s *Server) UpdateNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	news, err := s.newsRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if judul := c.FormValue("judul"); judul != "" && judul != news.Judul {
		if fields := validation.Var("judul", judul, "max=255"); fields != nil {
			return models.RespondWithFieldErrors(c, fields)
		}
		news.Judul = judul
		news.Slug = service.Slugify(judul)
	}
	if konten := c.FormValue("konten"); konten != "" {
		news.Konten = konten
	}
	if raw := c.FormValue("is_published"); raw != "" {
		publish := raw == "1" || raw == "true"
		if publish && !news.IsPublished {
			now := time.Now()
			news.PublishedAt = &now
		}
		news.IsPublished = publish
	}

	if fh, ferr := s.formFile(c, "gambar", maxImageBytes, true); ferr != nil {
		return nil
	} else if fh != nil {
		path, serr := s.store.SaveUpload(c, fh, newsImageDir)
		if serr != nil {
			return respondError(c, models.NewInternalError(serr))
		}
		s.store.Remove(news.Gambar)
		news.Gambar = path
	}

	if err := s.newsRepo.Update(c.Context(), news); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"berita": news})
}

// DeleteNews handles DELETE /api/berita/:id
func (s *Server) DeleteNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	news, err := s.newsRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.newsRepo.Delete(c.Context(), news); err != nil {
		return respondError(c, err)
	}
	s.store.Remove(news.Gambar)
	s.store.Remove(news.Thumbnail)

	return c.JSON(fiber.Map{"message": "Berita berhasil dihapus"})
}

// merge combines field-error maps from individual Var checks.
func merge(maps ...map[string][]string) map[string][]string {
	var out map[string][]string
	for _, m := range maps {
		for k, v := range m {
			if out == nil {
				out = make(map[string][]string)
			}
			out[k] = append(out[k], v...)
		}
	}
	return out
}
