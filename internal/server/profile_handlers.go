package server

import (
	"errors"

	"campushub/internal/cache"
	"campushub/internal/models"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const profileImageDir = "images/profile"

// GetProfile handles GET /api/profile. The profile is a singleton; a missing
// row is created with defaults so the frontend never sees a 404 here.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	var profile models.CampusProfile
	err := cache.Aside(c.Context(), cache.ProfileKey, &profile, cache.ProfileTTL, func() error {
		err := s.db.WithContext(c.Context()).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.CampusProfile{NamaKampus: "Kampus"}
			return s.db.WithContext(c.Context()).Create(&profile).Error
		}
		return err
	})
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{"profile": profile})
}

type profileRequest struct {
	NamaKampus string `json:"nama_kampus" validate:"required,max=255"`
	Deskripsi  string `json:"deskripsi"`
	Visi       string `json:"visi"`
	Misi       string `json:"misi"`
	Sejarah    string `json:"sejarah"`
	Alamat     string `json:"alamat"`
	Telepon    string `json:"telepon" validate:"omitempty,max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
	Website    string `json:"website" validate:"omitempty,url"`
	Facebook   string `json:"facebook"`
	Instagram  string `json:"instagram"`
	Youtube    string `json:"youtube"`
}

// UpdateProfile handles PUT /api/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}

	var profile models.CampusProfile
	if err := s.db.WithContext(c.Context()).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, models.NewInternalError(err))
		}
	}

	profile.NamaKampus = req.NamaKampus
	profile.Deskripsi = req.Deskripsi
	profile.Visi = req.Visi
	profile.Misi = req.Misi
	profile.Sejarah = req.Sejarah
	profile.Alamat = req.Alamat
	profile.Telepon = req.Telepon
	profile.Email = req.Email
	profile.Website = req.Website
	profile.Facebook = req.Facebook
	profile.Instagram = req.Instagram
	profile.Youtube = req.Youtube

	if err := s.db.WithContext(c.Context()).Save(&profile).Error; err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	cache.InvalidateProfile(c.Context())

	return c.JSON(fiber.Map{"profile": profile})
}
