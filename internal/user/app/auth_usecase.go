package app

import (
	"context"
	"time"

	"videoboard/internal/user/domain"
	"videoboard/internal/user/repository"
	"videoboard/pkg/logger"
	token "videoboard/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResetMailer delivers the reset-password link. Delivery is fire-and-forget
// with respect to the token persistence.
type ResetMailer interface {
	SendPasswordReset(to, resetToken string) error
}

// AuthUseCase 這裡封裝了對外提供的應用服務
type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) error
	Login(ctx context.Context, email, password string) (string, *domain.PublicUser, error)
	Authorize(ctx context.Context, bearer string) (*token.Principal, error)
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error
	Profile(ctx context.Context, userID string) (*domain.PublicUser, error)
	UpdateProfile(ctx context.Context, userID, username, email string) (*domain.PublicUser, error)
	AddUploadCount(ctx context.Context, userID string) error
	AddDownloadCount(ctx context.Context, userID string) error
}

type authUseCase struct {
	userRepo     repository.UserRepository
	mailer       ResetMailer
	issuer       string
	hashPassword func(string) (string, error)
}

// NewAuthUseCase create a new AuthUseCase
func NewAuthUseCase(userRepo repository.UserRepository,
	mailer ResetMailer,
	issuer string,
	hashPassword func(string) (string, error),
) AuthUseCase {
	return &authUseCase{
		userRepo:     userRepo,
		mailer:       mailer,
		issuer:       issuer,
		hashPassword: hashPassword,
	}
}

// Register store a new account with a hashed password and a fresh opaque
// token slot
func (a *authUseCase) Register(ctx context.Context, email, username, password string) error {
	if _, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Email: &email}); err == nil {
		return domain.ErrEmailInUse
	}
	if _, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Username: &username}); err == nil {
		return domain.ErrUsernameTaken
	}

	pw, err := a.hashPassword(password)
	if err != nil {
		logger.Log.Errorf("hash password err :", err)
		return err
	}

	slot, err := domain.NewOpaqueToken()
	if err != nil {
		return err
	}

	user := domain.User{
		ID:       uuid.New().String(),
		Email:    email,
		Username: username,
		Password: pw,
		Token:    slot,
	}

	logger.Log.Info("usecase Register", zap.String("email", email), zap.String("username", username))

	return a.userRepo.Create(ctx, &user)
}

// Login verify credentials and issue a bearer token alongside the sanitized
// user
func (a *authUseCase) Login(ctx context.Context, email, password string) (string, *domain.PublicUser, error) {
	user, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Email: &email})
	if err != nil {
		logger.Log.Error("email can't find", zap.String("email", email))
		return "", nil, domain.ErrAccountNotFound
	}

	if err = user.IsPasswordMatch(password); err != nil {
		logger.Log.Error("password can't match", zap.String("email", email))
		return "", nil, domain.ErrPasswordMismatch
	}

	t, err := token.GenerateSessionToken(user.ID, user.Email, a.issuer)
	if err != nil {
		return "", nil, err
	}

	return t, user.Public(), nil
}

// Authorize verify a bearer token and resolve it to the referenced user,
// re-fetched from the store with the password excluded
func (a *authUseCase) Authorize(ctx context.Context, bearer string) (*token.Principal, error) {
	claims, err := token.ParseSessionToken(bearer)
	if err != nil {
		return nil, err
	}

	user, err := a.userRepo.FindOne(ctx, &domain.UserQuery{ID: &claims.UserID})
	if err != nil {
		return nil, err
	}

	return &token.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

// RequestPasswordReset mint a reset token, persist it into the token slot,
// then mail the link. A delivery failure is logged only: the client still
// sees success and the persisted token stays valid.
func (a *authUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Email: &email})
	if err != nil {
		return domain.ErrAccountNotFound
	}

	resetToken, err := token.GenerateResetToken(user.ID, user.Email, a.issuer)
	if err != nil {
		return err
	}

	// overwrites any outstanding reset token, so only the latest link works
	slot := domain.NewResetToken(resetToken, timeNow().Add(token.ResetTTL))
	if err := a.userRepo.UpdateToken(ctx, user.ID, slot); err != nil {
		return err
	}

	if err := a.mailer.SendPasswordReset(user.Email, resetToken); err != nil {
		logger.Log.Errorf("send reset mail err :", err, zap.String("email", user.Email))
	}

	return nil
}

// CompletePasswordReset consume a reset token: replace the password hash and
// rotate the slot back to an opaque value so the token can't be reused
func (a *authUseCase) CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error {
	user, err := a.userRepo.FindOne(ctx, &domain.UserQuery{TokenValue: &resetToken})
	if err != nil {
		return domain.ErrTokenNotFound
	}

	if _, err := token.ParseResetToken(resetToken); err != nil {
		// token.ErrTokenExpired and token.ErrTokenInvalid pass through
		return err
	}

	pw, err := a.hashPassword(newPassword)
	if err != nil {
		logger.Log.Errorf("hash password err :", err)
		return err
	}

	slot, err := domain.NewOpaqueToken()
	if err != nil {
		return err
	}

	return a.userRepo.UpdatePassword(ctx, user.ID, pw, slot)
}

// Profile fetch the sanitized user
func (a *authUseCase) Profile(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := a.userRepo.FindOne(ctx, &domain.UserQuery{ID: &userID})
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile change username/email, enforcing uniqueness against every
// other account
func (a *authUseCase) UpdateProfile(ctx context.Context, userID, username, email string) (*domain.PublicUser, error) {
	if _, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Username: &username, ExcludeID: &userID}); err == nil {
		return nil, domain.ErrUsernameTaken
	}
	if _, err := a.userRepo.FindOne(ctx, &domain.UserQuery{Email: &email, ExcludeID: &userID}); err == nil {
		return nil, domain.ErrEmailInUse
	}

	user, err := a.userRepo.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// AddUploadCount bump the owner's upload counter
func (a *authUseCase) AddUploadCount(ctx context.Context, userID string) error {
	return a.userRepo.IncUploadCount(ctx, userID)
}

// AddDownloadCount bump the user's download counter
func (a *authUseCase) AddDownloadCount(ctx context.Context, userID string) error {
	return a.userRepo.IncDownloadCount(ctx, userID)
}

// timeNow 讓測試可以覆蓋
var timeNow = time.Now
