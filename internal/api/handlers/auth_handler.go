package handlers

import (
	"errors"

	userapp "videoboard/internal/user/app"
	"videoboard/internal/user/domain"
	"videoboard/pkg/logger"
	"videoboard/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler 處理註冊/登入/重設密碼相關的 HTTP 請求
type AuthHandler struct {
	Auth userapp.AuthUseCase
}

// NewAuthHandler create a new AuthHandler
func NewAuthHandler(auth userapp.AuthUseCase) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// SignUp 註冊新使用者
// @Summary Sign up
// @Description Create an account with email, username and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} string "user created"
// @Failure 400 {object} string "missing fields or duplicate"
// @Failure 500 {object} string "server error"
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Invalid request", nil)
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return respond(c, fiber.StatusBadRequest, false, "Email, password, and username are required", nil)
	}

	logger.Log.Debug("SignUp request", zap.String("email", req.Email), zap.String("username", req.Username))

	if err := h.Auth.Register(c.Context(), req.Email, req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailInUse):
			return respond(c, fiber.StatusBadRequest, false, "Email already in use", nil)
		case errors.Is(err, domain.ErrUsernameTaken):
			return respond(c, fiber.StatusBadRequest, false, "Username already taken", nil)
		default:
			return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
		}
	}

	return respond(c, fiber.StatusOK, true, "User created successfully", nil)
}

// SignIn 使用者登入
// @Summary Sign in
// @Description Verify credentials and issue a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} string "logged in"
// @Failure 400 {object} string "password mismatch"
// @Failure 404 {object} string "account not found"
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Invalid request", nil)
	}

	logger.Log.Debug("SignIn request", zap.String("email", req.Email))

	t, user, err := h.Auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return respond(c, fiber.StatusNotFound, false, "Account does not exist", nil)
		case errors.Is(err, domain.ErrPasswordMismatch):
			return respond(c, fiber.StatusBadRequest, false, "Password does not match", nil)
		default:
			return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
		}
	}

	return respond(c, fiber.StatusOK, true, "Logged in successfully", fiber.Map{
		"user": fiber.Map{
			"token":         t,
			"_id":           user.ID,
			"email":         user.Email,
			"username":      user.Username,
			"uploadCount":   user.UploadCount,
			"downloadCount": user.DownloadCount,
		},
	})
}

// ResetPassword 寄送重設密碼郵件
// @Summary Request a password reset
// @Description Mail a reset link carrying a short-lived token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} string "mail sent"
// @Failure 404 {object} string "unknown email"
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	type request struct {
		Email string `json:"email"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Invalid request", nil)
	}
	if req.Email == "" {
		return respond(c, fiber.StatusNotFound, false, "Email not found", nil)
	}

	if err := h.Auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return respond(c, fiber.StatusNotFound, false, "User not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	return respond(c, fiber.StatusOK, true, "Check your mail to reset your password", nil)
}

// UpdatePassword 用重設 token 設定新密碼
// @Summary Complete a password reset
// @Description Consume the emailed reset token and set a new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} string "password updated"
// @Failure 400 {object} string "expired or invalid token"
// @Failure 404 {object} string "token not held by any user"
// @Router /auth/update-password/{token} [post]
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	type request struct {
		Password string `json:"password"`
	}

	resetToken := c.Params("token")
	if resetToken == "" {
		return respond(c, fiber.StatusNotFound, false, "Token not found", nil)
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Invalid request", nil)
	}

	if err := h.Auth.CompletePasswordReset(c.Context(), resetToken, req.Password); err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			return respond(c, fiber.StatusNotFound, false, "User not found", nil)
		case errors.Is(err, token.ErrTokenExpired):
			return respond(c, fiber.StatusBadRequest, false, "Reset token has expired", nil)
		case errors.Is(err, token.ErrTokenInvalid):
			return respond(c, fiber.StatusBadRequest, false, "Invalid reset token", nil)
		default:
			return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
		}
	}

	return respond(c, fiber.StatusOK, true, "Updated your password", nil)
}
