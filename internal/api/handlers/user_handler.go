package handlers

import (
	"errors"

	userapp "videoboard/internal/user/app"
	"videoboard/internal/user/domain"
	"videoboard/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// UserHandler 處理使用者資料相關的 HTTP 請求
type UserHandler struct {
	Auth userapp.AuthUseCase
}

// NewUserHandler create a new UserHandler
func NewUserHandler(auth userapp.AuthUseCase) *UserHandler {
	return &UserHandler{Auth: auth}
}

// Profile 取得登入使用者資料
// @Summary Get the signed-in user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} string "user details"
// @Failure 401 {object} string "missing or invalid token"
// @Router /user/profile [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	principal := middlewares.PrincipalFrom(c)
	if principal == nil {
		return respond(c, fiber.StatusBadRequest, false, "Please sign in to continue", nil)
	}

	user, err := h.Auth.Profile(c.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return respond(c, fiber.StatusNotFound, false, "User not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	return respond(c, fiber.StatusOK, true, "User details fetched successfully", fiber.Map{"user": user})
}

// Update 更新登入使用者資料
// @Summary Update username/email of the signed-in user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} string "user updated"
// @Failure 400 {object} string "missing fields or duplicate"
// @Router /user/update [post]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	principal := middlewares.PrincipalFrom(c)
	if principal == nil {
		return respond(c, fiber.StatusBadRequest, false, "Please sign in to continue", nil)
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Invalid request", nil)
	}
	if req.Username == "" {
		return respond(c, fiber.StatusBadRequest, false, "Username is required", nil)
	}
	if req.Email == "" {
		return respond(c, fiber.StatusBadRequest, false, "Email is required", nil)
	}

	user, err := h.Auth.UpdateProfile(c.Context(), principal.UserID, req.Username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			return respond(c, fiber.StatusBadRequest, false, "Username already taken", nil)
		case errors.Is(err, domain.ErrEmailInUse):
			return respond(c, fiber.StatusBadRequest, false, "Email already in use", nil)
		case errors.Is(err, domain.ErrAccountNotFound):
			return respond(c, fiber.StatusNotFound, false, "User not found", nil)
		default:
			return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
		}
	}

	return respond(c, fiber.StatusOK, true, "Successfully updated your details", fiber.Map{"user": user})
}
