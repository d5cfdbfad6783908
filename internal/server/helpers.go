package server

import (
	"context"
	"errors"

	"campushub/internal/models"
	"campushub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/per_page query parameters in the Laravel
// convention the admin dashboard sends.
type Pagination struct {
	Page    int
	PerPage int
}

const maxPerPage = 100

// parsePagination extracts page and per_page query parameters.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 10)
	if perPage < 1 {
		perPage = 10
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// queryBool parses an is_published-style query parameter into a tri-state:
// nil when absent, otherwise the boolean value ("1"/"true" are truthy).
func queryBool(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v := raw == "1" || raw == "true"
	return &v
}

// currentUserID returns the authenticated user ID placed by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// actor resolves the authenticated caller into a service.Actor: their roles
// and, when one exists, the student record backing the account.
func (s *Server) actor(c *fiber.Ctx) (service.Actor, error) {
	userID := currentUserID(c)
	if userID == 0 {
		return service.Actor{}, nil
	}
	return s.actorByUserID(c.Context(), userID)
}

func (s *Server) actorByUserID(ctx context.Context, userID uint) (service.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return service.Actor{}, err
	}

	actor := service.Actor{
		UserID:  userID,
		IsAdmin: user.HasRole(models.RoleAdmin),
	}

	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return service.Actor{}, err
	}
	if student != nil {
		actor.StudentID = student.ID
	}
	return actor, nil
}

// optionalActor resolves the caller on public routes where a token may or
// may not be present. An anonymous or invalid token yields the zero Actor.
func (s *Server) optionalActor(c *fiber.Ctx) service.Actor {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return service.Actor{}
	}
	userID, ok := s.validateToken(c.Context(), tokenString)
	if !ok {
		return service.Actor{}
	}
	actor, err := s.actorByUserID(c.Context(), userID)
	if err != nil {
		return service.Actor{}
	}
	return actor
}

// respondError maps an application error onto the HTTP status and body the
// API promises: 401/403/404 with {message}, 422 with {errors:{...}} or
// {message, has_relations}, 500 for everything else.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	switch appErr.Code {
	case "NOT_FOUND":
		return models.RespondWithError(c, fiber.StatusNotFound, appErr)
	case "UNAUTHORIZED":
		return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
	case "FORBIDDEN":
		return models.RespondWithError(c, fiber.StatusForbidden, appErr)
	case "VALIDATION_ERROR":
		if appErr.FieldErrors != nil {
			return models.RespondWithFieldErrors(c, appErr.FieldErrors)
		}
		return models.RespondWithError(c, fiber.StatusUnprocessableEntity, appErr)
	case "CONFLICT":
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message":       appErr.Message,
			"has_relations": true,
		})
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	}
}
