package server

import (
	"campushub/internal/models"
	"campushub/internal/service"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type programRequest struct {
	Nama        string `json:"nama" validate:"required,max=255"`
	Jenjang     string `json:"jenjang" validate:"omitempty,max=20"`
	Kode        string `json:"kode" validate:"omitempty,max=20"`
	Deskripsi   string `json:"deskripsi"`
	Visi        string `json:"visi"`
	Misi        string `json:"misi"`
	Akreditasi  string `json:"akreditasi" validate:"omitempty,max=10"`
	Gelar       string `json:"gelar" validate:"omitempty,max=50"`
	KetuaProdi  string `json:"ketua_prodi"`
	DurasiTahun int    `json:"durasi_tahun" validate:"omitempty,gt=0"`
}

func (r *programRequest) apply(p *models.Program) {
	p.Nama = r.Nama
	p.Jenjang = r.Jenjang
	p.Kode = r.Kode
	p.Deskripsi = r.Deskripsi
	p.Visi = r.Visi
	p.Misi = r.Misi
	p.Akreditasi = r.Akreditasi
	p.Gelar = r.Gelar
	p.KetuaProdi = r.KetuaProdi
	p.DurasiTahun = r.DurasiTahun
}

// ListPrograms handles GET /api/prodi
func (s *Server) ListPrograms(c *fiber.Ctx) error {
	programs, err := s.programRepo.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"prodi": programs})
}

// ProgramDropdown handles GET /api/prodi/meta/dropdown, a trimmed list for
// select inputs.
func (s *Server) ProgramDropdown(c *fiber.Ctx) error {
	type option struct {
		ID   uint   `json:"id"`
		Nama string `json:"nama"`
	}
	var options []option
	if err := s.db.WithContext(c.Context()).
		Model(&models.Program{}).
		Select("id", "nama").
		Order("nama ASC").
		Scan(&options).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"prodi": options})
}

// GetProgram handles GET /api/prodi/:slug
func (s *Server) GetProgram(c *fiber.Ctx) error {
	program, err := s.programRepo.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"prodi": program})
}

// CreateProgram handles POST /api/prodi
func (s *Server) CreateProgram(c *fiber.Ctx) error {
	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	var program models.Program
	req.apply(&program)
	program.Slug = service.Slugify(req.Nama)

	if err := s.programRepo.Create(c.Context(), &program); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"prodi": program})
}

// UpdateProgram handles PUT /api/prodi/:id
func (s *Server) UpdateProgram(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req programRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	program, err := s.programRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	if req.Nama != program.Nama {
		program.Slug = service.Slugify(req.Nama)
	}
	req.apply(program)

	if err := s.programRepo.Update(c.Context(), program); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"prodi": program})
}

// DeleteProgram handles DELETE /api/prodi/:id. A program that still has
// students answers 422 with has_relations so the dashboard can explain.
func (s *Server) DeleteProgram(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.programRepo.Delete(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Prodi berhasil dihapus"})
}
