package entity

import (
	"strings"
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	fixedTime := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(fixedTime).Maybe()

	t.Run("Valid user creation", func(t *testing.T) {
		user, err := NewUser("  小非  ", "pw", mockTime)

		require.NoError(t, err)
		assert.Equal(t, "小非", user.Nickname)
		assert.Equal(t, "pw", user.Credential)
		assert.Equal(t, int64(0), user.Balance())
		assert.Equal(t, "0.00", user.GetBalance())
		assert.Equal(t, fixedTime, user.CreatedAt)
		assert.Equal(t, fixedTime, user.UpdatedAt)
	})

	t.Run("Empty nickname should return error", func(t *testing.T) {
		user, err := NewUser("   ", "pw", mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidNickname)
		assert.Nil(t, user)
	})

	t.Run("Overlong nickname should return error", func(t *testing.T) {
		user, err := NewUser(strings.Repeat("马", MaxNicknameLength+1), "pw", mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidNickname)
		assert.Nil(t, user)
	})

	t.Run("Empty credential should return error", func(t *testing.T) {
		user, err := NewUser("alice", "", mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidPassword)
		assert.Nil(t, user)
	})
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("hunter2"))
	assert.ErrorIs(t, ValidatePassword(""), errs.ErrInvalidPassword)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)), errs.ErrInvalidPassword)
}

func TestUserSetBalance(t *testing.T) {
	initialTime := time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC)
	updateTime := initialTime.Add(time.Hour)

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(initialTime).Once()

	user, err := NewUser("alice", "pw", mockTime)
	require.NoError(t, err)

	mockTime.On("Now").Return(updateTime).Once()
	user.SetBalance(5000, mockTime)

	assert.Equal(t, int64(5000), user.Balance())
	assert.Equal(t, "50.00", user.GetBalance())
	assert.Equal(t, updateTime, user.UpdatedAt)
	assert.True(t, user.CanDeduct(5000))
	assert.False(t, user.CanDeduct(5001))
}
