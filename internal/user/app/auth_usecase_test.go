package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"videoboard/internal/user/domain"
	"videoboard/pkg/encrypt"
	"videoboard/pkg/logger"
	token "videoboard/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUserRepo Mock UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) FindOne(ctx context.Context, query *domain.UserQuery) (*domain.User, error) {
	args := m.Called(ctx, query)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepo) UpdateToken(ctx context.Context, userID string, slot domain.TokenSlot) error {
	args := m.Called(ctx, userID, slot)
	return args.Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string, slot domain.TokenSlot) error {
	args := m.Called(ctx, userID, passwordHash, slot)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateProfile(ctx context.Context, userID, username, email string) (*domain.User, error) {
	args := m.Called(ctx, userID, username, email)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockUserRepo) IncUploadCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockUserRepo) IncDownloadCount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockMailer Mock ResetMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(to, resetToken string) error {
	args := m.Called(to, resetToken)
	return args.Error(0)
}

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"
	username := "tester"
	password := "pw1"

	logger.SetNewNop()

	// **情境 1: 註冊成功**
	t.Run("成功註冊", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.Email == email &&
				u.Username == username &&
				u.Password != password && // stored hashed, never plaintext
				u.Token.Kind == domain.TokenKindOpaque &&
				u.Token.Value != ""
		})).Return(nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.Register(ctx, email, username, password)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: Email 已存在**
	t.Run("Email 已存在", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{ID: "u1", Email: email, Username: "other"}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.Register(ctx, email, username, password)

		assert.ErrorIs(t, err, domain.ErrEmailInUse)
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: Username 已存在**
	t.Run("Username 已存在", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{ID: "u1", Email: "other@example.com", Username: username}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.Register(ctx, email, username, password)

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		mockRepo.AssertExpectations(t)
	})

	// **情境 4: 密碼加密失敗**
	t.Run("密碼加密失敗", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		mockHashPassword := func(password string) (string, error) {
			return "", errors.New("hash password error")
		}

		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username}).
			Return(nil, domain.ErrAccountNotFound).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", mockHashPassword)
		err := uc.Register(ctx, email, username, password)

		assert.Error(t, err)
		assert.Equal(t, "hash password error", err.Error())
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthUseCase_Login(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"
	password := "pw1"
	hashedPassword, _ := encrypt.HashPassword(password)

	logger.SetNewNop()

	// **情境 1: 成功登入**
	t.Run("成功登入", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{
			ID:       "u1",
			Email:    email,
			Username: "tester",
			Password: hashedPassword,
		}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		tok, user, err := uc.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, tok)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, email, user.Email)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: 使用者不存在**
	t.Run("使用者不存在", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(nil, domain.ErrAccountNotFound).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		tok, user, err := uc.Login(ctx, email, password)

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assert.Empty(t, tok)
		assert.Nil(t, user)
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: 密碼錯誤**
	t.Run("密碼錯誤", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{
			ID:       "u1",
			Email:    email,
			Password: hashedPassword,
		}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		tok, user, err := uc.Login(ctx, email, "wrong_password")

		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
		assert.Empty(t, tok)
		assert.Nil(t, user)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthUseCase_Authorize(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"

	logger.SetNewNop()

	// **情境 1: 合法 token**
	t.Run("合法 token", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		bearer, err := token.GenerateSessionToken("u1", email, "videoboard")
		assert.NoError(t, err)

		existing := &domain.User{ID: "u1", Email: email, Username: "tester"}
		userID := "u1"
		mockRepo.On("FindOne", ctx, &domain.UserQuery{ID: &userID}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		principal, err := uc.Authorize(ctx, bearer)

		assert.NoError(t, err)
		assert.Equal(t, "u1", principal.UserID)
		assert.Equal(t, "tester", principal.Username)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: 偽造 token**
	t.Run("偽造 token", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		principal, err := uc.Authorize(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, token.ErrTokenInvalid)
		assert.Nil(t, principal)
	})

	// **情境 3: 重置用 token 不能當 session 用**
	t.Run("重置用 token 不能當 session 用", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		// signed with the reset secret, so the session parse must reject it
		resetToken, err := token.GenerateResetToken("u1", email, "videoboard")
		assert.NoError(t, err)

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		principal, err := uc.Authorize(ctx, resetToken)

		assert.ErrorIs(t, err, token.ErrTokenInvalid)
		assert.Nil(t, principal)
	})

	// **情境 4: token 已過期**
	t.Run("token 已過期", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		originalTTL := token.SessionTTL
		defer func() { token.SessionTTL = originalTTL }()
		token.SessionTTL = -time.Minute

		bearer, err := token.GenerateSessionToken("u1", email, "videoboard")
		assert.NoError(t, err)

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		principal, err := uc.Authorize(ctx, bearer)

		assert.ErrorIs(t, err, token.ErrTokenExpired)
		assert.Nil(t, principal)
	})
}

func TestAuthUseCase_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"

	logger.SetNewNop()

	// **情境 1: 成功寄出重置信**
	t.Run("成功寄出重置信", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{ID: "u1", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()
		mockRepo.On("UpdateToken", ctx, "u1", mock.MatchedBy(func(slot domain.TokenSlot) bool {
			return slot.Kind == domain.TokenKindReset &&
				slot.Value != "" &&
				slot.ExpiresAt != nil
		})).Return(nil).Once()
		mockMailer.On("SendPasswordReset", email, mock.Anything).Return(nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.RequestPasswordReset(ctx, email)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	// **情境 2: Email 不存在**
	t.Run("Email 不存在", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(nil, domain.ErrAccountNotFound).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.RequestPasswordReset(ctx, email)

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		mockRepo.AssertExpectations(t)
		mockMailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything)
	})

	// **情境 3: 寄信失敗仍回成功**
	t.Run("寄信失敗仍回成功", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{ID: "u1", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()
		mockRepo.On("UpdateToken", ctx, "u1", mock.Anything).Return(nil).Once()
		mockMailer.On("SendPasswordReset", email, mock.Anything).
			Return(errors.New("smtp error")).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.RequestPasswordReset(ctx, email)

		// token 已持久化，寄信失敗只記 log
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
		mockMailer.AssertExpectations(t)
	})

	// **情境 4: 寫入 token 失敗**
	t.Run("寫入 token 失敗", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		existing := &domain.User{ID: "u1", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email}).
			Return(existing, nil).Once()
		mockRepo.On("UpdateToken", ctx, "u1", mock.Anything).
			Return(errors.New("db error")).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.RequestPasswordReset(ctx, email)

		assert.Error(t, err)
		assert.Equal(t, "db error", err.Error())
		mockMailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything)
	})
}

func TestAuthUseCase_CompletePasswordReset(t *testing.T) {
	ctx := context.Background()
	email := "test@example.com"
	newPassword := "pw2"

	logger.SetNewNop()

	// **情境 1: 成功重置密碼**
	t.Run("成功重置密碼", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		resetToken, err := token.GenerateResetToken("u1", email, "videoboard")
		assert.NoError(t, err)

		existing := &domain.User{
			ID:    "u1",
			Email: email,
			Token: domain.NewResetToken(resetToken, time.Now().Add(token.ResetTTL)),
		}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{TokenValue: &resetToken}).
			Return(existing, nil).Once()
		mockRepo.On("UpdatePassword", ctx, "u1", mock.Anything, mock.MatchedBy(func(slot domain.TokenSlot) bool {
			// slot rotates back to opaque so the link is single use
			return slot.Kind == domain.TokenKindOpaque && slot.Value != resetToken
		})).Return(nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err = uc.CompletePasswordReset(ctx, resetToken, newPassword)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: 沒有任何使用者持有該 token**
	t.Run("沒有任何使用者持有該 token", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		resetToken, err := token.GenerateResetToken("u1", email, "videoboard")
		assert.NoError(t, err)

		mockRepo.On("FindOne", ctx, &domain.UserQuery{TokenValue: &resetToken}).
			Return(nil, domain.ErrAccountNotFound).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err = uc.CompletePasswordReset(ctx, resetToken, newPassword)

		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: token 已過期**
	t.Run("token 已過期", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		originalTTL := token.ResetTTL
		defer func() { token.ResetTTL = originalTTL }()
		token.ResetTTL = -time.Minute

		resetToken, err := token.GenerateResetToken("u1", email, "videoboard")
		assert.NoError(t, err)

		existing := &domain.User{ID: "u1", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{TokenValue: &resetToken}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err = uc.CompletePasswordReset(ctx, resetToken, newPassword)

		assert.ErrorIs(t, err, token.ErrTokenExpired)
		mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	// **情境 4: token 不是本服務簽發**
	t.Run("token 不是本服務簽發", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		bogus := "bogus-token"
		existing := &domain.User{ID: "u1", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{TokenValue: &bogus}).
			Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		err := uc.CompletePasswordReset(ctx, bogus, newPassword)

		assert.ErrorIs(t, err, token.ErrTokenInvalid)
		mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthUseCase_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	userID := "u1"
	username := "newname"
	email := "new@example.com"

	logger.SetNewNop()

	// **情境 1: 成功更新**
	t.Run("成功更新", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username, ExcludeID: &userID}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email, ExcludeID: &userID}).
			Return(nil, domain.ErrAccountNotFound).Once()
		updated := &domain.User{ID: userID, Email: email, Username: username}
		mockRepo.On("UpdateProfile", ctx, userID, username, email).
			Return(updated, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		user, err := uc.UpdateProfile(ctx, userID, username, email)

		assert.NoError(t, err)
		assert.Equal(t, username, user.Username)
		mockRepo.AssertExpectations(t)
	})

	// **情境 2: Username 被其他人佔用**
	t.Run("Username 被其他人佔用", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		other := &domain.User{ID: "u2", Username: username}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username, ExcludeID: &userID}).
			Return(other, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		user, err := uc.UpdateProfile(ctx, userID, username, email)

		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
		assert.Nil(t, user)
		mockRepo.AssertExpectations(t)
	})

	// **情境 3: Email 被其他人佔用**
	t.Run("Email 被其他人佔用", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockMailer := new(MockMailer)

		other := &domain.User{ID: "u2", Email: email}
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Username: &username, ExcludeID: &userID}).
			Return(nil, domain.ErrAccountNotFound).Once()
		mockRepo.On("FindOne", ctx, &domain.UserQuery{Email: &email, ExcludeID: &userID}).
			Return(other, nil).Once()

		uc := NewAuthUseCase(mockRepo, mockMailer, "videoboard", encrypt.HashPassword)
		user, err := uc.UpdateProfile(ctx, userID, username, email)

		assert.ErrorIs(t, err, domain.ErrEmailInUse)
		assert.Nil(t, user)
		mockRepo.AssertExpectations(t)
	})
}
