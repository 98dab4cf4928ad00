package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEnvelopeRequest(t *testing.T) {
	testCases := []struct {
		name     string
		amount   int64
		count    int
		expected error
	}{
		{"valid single share", 1000, 1, nil},
		{"valid full split", 100, 100, nil},
		{"zero amount", 0, 1, errs.ErrInvalidAmount},
		{"negative amount", -5, 1, errs.ErrInvalidAmount},
		{"zero count", 1000, 0, errs.ErrInvalidShareCount},
		{"too many shares", 1000, 101, errs.ErrInvalidShareCount},
		{"half a yuan over a hundred shares", 50, 100, errs.ErrAmountBelowMinimum},
		{"amount checked before count", 0, 500, errs.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateEnvelopeRequest(tc.amount, tc.count)
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	created := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.On("Now").Return(created).Maybe()

	t.Run("should start pending and expire a day later", func(t *testing.T) {
		env, err := NewEnvelope(1, 1000, 3, "红楼梦", "满纸荒唐言", "荒唐", "....", EnvelopeLifetime, mockTime)

		require.NoError(t, err)
		assert.Equal(t, EnvelopePending, env.Status)
		assert.Equal(t, created.Add(24*time.Hour), env.ExpiresAt)
		assert.Equal(t, 3, env.RemainingShares())
		assert.False(t, env.IsAmountVisible())
	})

	t.Run("should reject missing password", func(t *testing.T) {
		_, err := NewEnvelope(1, 1000, 1, "红楼梦", "满纸荒唐言", "", "", EnvelopeLifetime, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("should reject anonymous sender", func(t *testing.T) {
		_, err := NewEnvelope(0, 1000, 1, "红楼梦", "满纸荒唐言", "荒唐", "", EnvelopeLifetime, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	})
}

func TestEnvelopeCheckClaim(t *testing.T) {
	now := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
	base := func() *Envelope {
		return &Envelope{
			ID:            7,
			SenderID:      1,
			AmountInCents: 1000,
			TotalCount:    2,
			Answer:        "满纸荒唐",
			Status:        EnvelopePending,
			ExpiresAt:     now.Add(time.Hour),
		}
	}

	t.Run("should accept the exact answer with surrounding whitespace", func(t *testing.T) {
		assert.NoError(t, base().CheckClaim(2, "  满纸荒唐\n", false, now))
	})

	t.Run("should be case sensitive", func(t *testing.T) {
		env := base()
		env.Answer = "Abc"
		assert.ErrorIs(t, env.CheckClaim(2, "abc", false, now), errs.ErrWrongAnswer)
	})

	t.Run("should report fully claimed before anything else", func(t *testing.T) {
		env := base()
		env.Status = EnvelopeClaimed
		env.SenderID = 2
		assert.ErrorIs(t, env.CheckClaim(2, "wrong", true, now.Add(48*time.Hour)), errs.ErrEnvelopeFullyClaimed)
	})

	t.Run("should report expiry before self claim", func(t *testing.T) {
		env := base()
		assert.ErrorIs(t, env.CheckClaim(1, "满纸荒唐", false, now.Add(2*time.Hour)), errs.ErrEnvelopeExpired)
	})

	t.Run("should report self claim before duplicate", func(t *testing.T) {
		assert.ErrorIs(t, base().CheckClaim(1, "满纸荒唐", true, now), errs.ErrSelfClaim)
	})

	t.Run("should report duplicate before answer", func(t *testing.T) {
		assert.ErrorIs(t, base().CheckClaim(2, "wrong", true, now), errs.ErrAlreadyClaimed)
	})

	t.Run("should not expire exactly at the deadline", func(t *testing.T) {
		env := base()
		assert.False(t, env.IsExpirable(env.ExpiresAt))
		assert.True(t, env.IsExpirable(env.ExpiresAt.Add(time.Nanosecond)))
	})
}

func TestEnvelopeClaimedTotal(t *testing.T) {
	env := &Envelope{Claims: []*Claim{{AmountInCents: 120}, {AmountInCents: 380}}}
	assert.Equal(t, int64(500), env.ClaimedTotal())
}
