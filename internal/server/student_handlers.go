package server

import (
	"time"

	"campushub/internal/models"
	"campushub/internal/repository"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type studentRequest struct {
	NIM          string `json:"nim" validate:"required,max=20"`
	Nama         string `json:"nama" validate:"required,max=255"`
	Email        string `json:"email" validate:"omitempty,email"`
	Telepon      string `json:"telepon" validate:"omitempty,max=20"`
	Alamat       string `json:"alamat"`
	JenisKelamin string `json:"jenis_kelamin" validate:"omitempty,oneof=L P"`
	TanggalLahir string `json:"tanggal_lahir"`
	TempatLahir  string `json:"tempat_lahir"`
	Agama        string `json:"agama" validate:"omitempty,max=50"`
	ProdiID      uint   `json:"prodi_id" validate:"required"`
	Angkatan     int    `json:"angkatan"`
	Status       string `json:"status" validate:"omitempty,oneof=aktif nonaktif cuti lulus"`
}

func (r *studentRequest) apply(student *models.Student) error {
	student.NIM = r.NIM
	student.Nama = r.Nama
	student.Email = r.Email
	student.Telepon = r.Telepon
	student.Alamat = r.Alamat
	student.JenisKelamin = r.JenisKelamin
	student.TempatLahir = r.TempatLahir
	student.Agama = r.Agama
	student.ProdiID = r.ProdiID
	student.Angkatan = r.Angkatan
	if r.Status != "" {
		student.Status = r.Status
	} else if student.Status == "" {
		student.Status = models.StudentStatusAktif
	}
	if r.TanggalLahir != "" {
		t, err := time.Parse("2006-01-02", r.TanggalLahir)
		if err != nil {
			return models.NewFieldValidationError(map[string][]string{
				"tanggal_lahir": {"The tanggal_lahir does not match the format Y-m-d."},
			})
		}
		student.TanggalLahir = &t
	}
	return nil
}

// ListStudents handles GET /api/mahasiswa
func (s *Server) ListStudents(c *fiber.Ctx) error {
	p := parsePagination(c)

	var prodiID uint
	if v := c.QueryInt("prodi_id", 0); v > 0 {
		prodiID = uint(v)
	}

	filter := repository.StudentFilter{
		ProdiID:  prodiID,
		Status:   c.Query("status"),
		Angkatan: c.QueryInt("angkatan", 0),
		Search:   c.Query("search"),
		Page:     p.Page,
		PerPage:  p.PerPage,
	}

	page, err := s.studentRepo.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"mahasiswa": page})
}

// GetStudent handles GET /api/mahasiswa/:id
func (s *Server) GetStudent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	student, err := s.studentRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"mahasiswa": student})
}

// CreateStudent handles POST /api/mahasiswa. The backing user account
// (initial password = NIM) is created in the same transaction as the record
// so a failure leaves neither behind.
func (s *Server) CreateStudent(c *fiber.Ctx) error {
	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	if _, err := s.programRepo.GetByID(c.Context(), req.ProdiID); err != nil {
		return respondError(c, err)
	}

	var student models.Student
	if err := req.apply(&student); err != nil {
		return respondError(c, err)
	}

	var user *models.User
	if req.Email != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NIM), bcrypt.DefaultCost)
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		user = &models.User{
			Name:     req.Nama,
			Email:    req.Email,
			Password: string(hashed),
			NIM:      req.NIM,
		}
	}

	if err := s.studentRepo.CreateWithUser(c.Context(), &student, user); err != nil {
		return respondError(c, err)
	}

	created, err := s.studentRepo.GetByID(c.Context(), student.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mahasiswa": created})
}

// UpdateStudent handles PUT /api/mahasiswa/:id, keeping the backing account's
// name and email in sync inside one transaction.
func (s *Server) UpdateStudent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	student, err := s.studentRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if err := req.apply(student); err != nil {
		return respondError(c, err)
	}

	err = s.studentRepo.UpdateWithUser(c.Context(), student, func(tx *gorm.DB, u *models.User) error {
		u.Name = req.Nama
		if req.Email != "" {
			u.Email = req.Email
		}
		u.NIM = req.NIM
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	updated, err := s.studentRepo.GetByID(c.Context(), student.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"mahasiswa": updated})
}

// DeleteStudent handles DELETE /api/mahasiswa/:id
func (s *Server) DeleteStudent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.studentRepo.DeleteWithUser(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Mahasiswa berhasil dihapus"})
}
