package unit

import (
	"testing"
	"time"

	"videoboard/internal/user/domain"
	"videoboard/pkg/encrypt"

	"github.com/stretchr/testify/assert"
)

func TestUserPasswordMatch(t *testing.T) {
	hashed, err := encrypt.HashPassword("pass1234")
	assert.NoError(t, err)

	user := domain.User{
		ID:       "u1",
		Email:    "user@example.com",
		Password: hashed,
	}

	assert.True(t, user.IsPasswordMatch("pass1234") == nil, "should match correct password")
	assert.False(t, user.IsPasswordMatch("wrongpass") == nil, "should not match incorrect password")
}

func TestTokenSlotRotation(t *testing.T) {
	slot, err := domain.NewOpaqueToken()
	assert.NoError(t, err)
	assert.Equal(t, domain.TokenKindOpaque, slot.Kind)
	assert.Len(t, slot.Value, 24) // 12 random bytes, hex encoded
	assert.Nil(t, slot.ExpiresAt)

	// 兩次產生的填充值不能相同
	other, err := domain.NewOpaqueToken()
	assert.NoError(t, err)
	assert.NotEqual(t, slot.Value, other.Value)

	expiresAt := time.Now().Add(time.Hour)
	reset := domain.NewResetToken("signed-token", expiresAt)
	assert.Equal(t, domain.TokenKindReset, reset.Kind)
	assert.Equal(t, "signed-token", reset.Value)
	assert.NotNil(t, reset.ExpiresAt)
}

func TestPublicUserStripsSecrets(t *testing.T) {
	slot, _ := domain.NewOpaqueToken()
	user := domain.User{
		ID:            "u1",
		Email:         "user@example.com",
		Username:      "tester",
		Password:      "hashed",
		Token:         slot,
		UploadCount:   3,
		DownloadCount: 7,
	}

	public := user.Public()

	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, user.Email, public.Email)
	assert.Equal(t, user.Username, public.Username)
	assert.Equal(t, 3, public.UploadCount)
	assert.Equal(t, 7, public.DownloadCount)
}
