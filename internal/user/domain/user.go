package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"videoboard/pkg/encrypt"
)

// Domain errors surfaced by the user usecase. Handlers map these onto HTTP
// statuses.
var (
	ErrEmailInUse       = errors.New("email already in use")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrAccountNotFound  = errors.New("account does not exist")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrTokenNotFound    = errors.New("reset token not found")
)

// TokenKind tags what currently occupies the user's token slot
type TokenKind string

const (
	// TokenKindOpaque random filler value, no reset in progress
	TokenKindOpaque TokenKind = "opaque"
	// TokenKindReset signed reset token, reset requested and not yet consumed
	TokenKindReset TokenKind = "reset"
)

// TokenSlot is the single rotating token value each user holds. It is always
// overwritten whole, never appended to, so only the most recently issued
// reset token can ever match.
type TokenSlot struct {
	Kind      TokenKind  `bson:"kind" json:"-"`
	Value     string     `bson:"value" json:"-"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"-"`
}

// User 用來表示使用者
type User struct {
	ID            string    `bson:"_id"`
	Email         string    `bson:"email"`
	Username      string    `bson:"username"`
	Password      string    `bson:"password"`
	Token         TokenSlot `bson:"token"`
	UploadCount   int       `bson:"upload_count"`
	DownloadCount int       `bson:"download_count"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// PublicUser is the sanitized projection returned to clients. The password
// hash and token slot never leave the service.
type PublicUser struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	UploadCount   int       `json:"uploadCount"`
	DownloadCount int       `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsPasswordMatch 密碼驗證
func (u *User) IsPasswordMatch(inputPwd string) error {
	if err := encrypt.CheckPassword(u.Password, inputPwd); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// Public strip everything sensitive
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		UploadCount:   u.UploadCount,
		DownloadCount: u.DownloadCount,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// NewOpaqueToken fill the slot with a random filler value, closing any
// outstanding reset window
func NewOpaqueToken() (TokenSlot, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return TokenSlot{}, err
	}
	return TokenSlot{
		Kind:  TokenKindOpaque,
		Value: hex.EncodeToString(buf),
	}, nil
}

// NewResetToken place a signed reset token in the slot
func NewResetToken(value string, expiresAt time.Time) TokenSlot {
	return TokenSlot{
		Kind:      TokenKindReset,
		Value:     value,
		ExpiresAt: &expiresAt,
	}
}

// UserQuery join conditions used to look a user up
type UserQuery struct {
	ID         *string
	Email      *string
	Username   *string
	TokenValue *string

	// ExcludeID drop this id from the match, for uniqueness checks on update
	ExcludeID *string
}
