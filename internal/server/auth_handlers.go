package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"campushub/internal/cache"
	"campushub/internal/models"
	"campushub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	NIM      string `json:"nim"`
}

// Register handles POST /api/register. A NIM links the account to an
// existing student record and attaches the mahasiswa role; otherwise the
// account starts with no roles and an admin grants them later.
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if fields := validation.Struct(req); fields != nil {
		return models.RespondWithFieldErrors(c, fields)
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"password": {err.Error()},
		})
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if existing != nil {
		return models.RespondWithFieldErrors(c, map[string][]string{
			"email": {"The email has already been taken."},
		})
	}

	// Resolve the NIM before creating anything so a typo cannot leave a
	// half-registered account behind.
	var student *models.Student
	if req.NIM != "" {
		student, err = s.studentRepo.GetByNIM(c.Context(), req.NIM)
		if err != nil {
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return models.RespondWithFieldErrors(c, map[string][]string{
					"nim": {"The selected nim is invalid."},
				})
			}
			return respondError(c, err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		NIM:      req.NIM,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return respondError(c, err)
	}

	if student != nil {
		if err := s.linkStudentAccount(c, user, student); err != nil {
			return respondError(c, err)
		}
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// linkStudentAccount connects a self-registered account to its student
// record and grants the mahasiswa role. Records already claimed by another
// account are left alone.
func (s *Server) linkStudentAccount(c *fiber.Ctx, user *models.User, student *models.Student) error {
	if student.UserID != nil {
		return nil
	}

	student.UserID = &user.ID
	if err := s.db.WithContext(c.Context()).Save(student).Error; err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.AttachRole(c.Context(), user, models.RoleMahasiswa)
}

// Login handles POST /api/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Email atau password salah"))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Email atau password salah"))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/logout by blacklisting the token's jti until it
// would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	tokenString := bearerToken(c)
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err == nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			jti, _ := claims["jti"].(string)
			ttl := tokenTTL
			if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
				if remaining := time.Until(exp.Time); remaining > 0 {
					ttl = remaining
				}
			}
			if jti != "" {
				if blErr := cache.BlacklistToken(c.Context(), jti, ttl); blErr != nil {
					return respondError(c, models.NewInternalError(blErr))
				}
			}
		}
	}

	return c.JSON(fiber.Map{"message": "Berhasil logout"})
}

// CurrentUser handles GET /api/user, returning the account with its roles
// and, when one exists, the linked student record.
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	student, err := s.studentRepo.GetByUserID(c.Context(), user.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":      user,
		"mahasiswa": student,
	})
}

// generateToken creates a signed JWT for the given user ID.
func (s *Server) generateToken(userID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(tokenTTL).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
