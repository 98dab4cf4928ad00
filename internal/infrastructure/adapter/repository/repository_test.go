package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/repository"
	timeadapter "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
)

var baseTime = time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)

type repoFixture struct {
	tdb          *database.TestDBManager
	clock        *timeadapter.FixedTimeProvider
	users        *repository.UserRepository
	envelopes    *repository.EnvelopeRepository
	claims       *repository.ClaimRepository
	transactions *repository.TransactionRepository
}

func newRepoFixture(t *testing.T) *repoFixture {
	t.Helper()
	logger := coremocks.NewPermissiveLogger()
	clock := timeadapter.NewFixedTimeProvider(baseTime)
	tdb := database.NewTestDBManager(t, logger, clock)
	db := tdb.DB()

	return &repoFixture{
		tdb:          tdb,
		clock:        clock,
		users:        repository.NewUserRepository(db, clock, logger),
		envelopes:    repository.NewEnvelopeRepository(db, logger),
		claims:       repository.NewClaimRepository(db, logger),
		transactions: repository.NewTransactionRepository(db, logger),
	}
}

func (f *repoFixture) envelope(t *testing.T, senderID uint64, amount int64, count int, expiresIn time.Duration) *entity.Envelope {
	t.Helper()
	env := &entity.Envelope{
		SenderID:      senderID,
		AmountInCents: amount,
		TotalCount:    count,
		BookName:      "红楼梦",
		Excerpt:       "满纸荒唐言，一把辛酸泪。",
		Answer:        "满纸荒唐",
		Cipher:        "-- .- -.",
		Status:        entity.EnvelopePending,
		CreatedAt:     f.clock.Now(),
		ExpiresAt:     f.clock.Now().Add(expiresIn),
	}
	require.NoError(t, f.envelopes.Create(context.Background(), env))
	return env
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("should create and look up by nickname", func(t *testing.T) {
		f := newRepoFixture(t)
		user, err := entity.NewUser("alice", "pw", f.clock)
		require.NoError(t, err)
		user.SetBalance(10000, f.clock)

		require.NoError(t, f.users.Create(ctx, user))
		assert.NotZero(t, user.ID)

		found, err := f.users.GetByNickname(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, int64(10000), found.Balance())
	})

	t.Run("should reject duplicate nicknames", func(t *testing.T) {
		f := newRepoFixture(t)
		f.tdb.CreateTestUser(t, "alice", 0)

		user, err := entity.NewUser("alice", "pw", f.clock)
		require.NoError(t, err)
		assert.ErrorIs(t, f.users.Create(ctx, user), errs.ErrDuplicateUser)
	})

	t.Run("should report unknown users", func(t *testing.T) {
		f := newRepoFixture(t)
		_, err := f.users.GetByID(ctx, 404)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)

		_, err = f.users.GetByNickname(ctx, "nobody")
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("should load several users at once", func(t *testing.T) {
		f := newRepoFixture(t)
		a := f.tdb.CreateTestUser(t, "a", 1)
		b := f.tdb.CreateTestUser(t, "b", 2)

		users, err := f.users.GetByIDs(ctx, []uint64{a, b, 999})
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "b", users[b].Nickname)
	})

	t.Run("should apply credits and covered debits", func(t *testing.T) {
		f := newRepoFixture(t)
		id := f.tdb.CreateTestUser(t, "alice", 1000)

		user, err := f.users.ApplyBalanceChange(ctx, id, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), user.Balance())

		user, err = f.users.ApplyBalanceChange(ctx, id, -1500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.Balance())
		assert.Equal(t, uint64(2), user.TransactionCount)
	})

	t.Run("should refuse to overdraw", func(t *testing.T) {
		f := newRepoFixture(t)
		id := f.tdb.CreateTestUser(t, "alice", 100)

		_, err := f.users.ApplyBalanceChange(ctx, id, -101)
		assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
		assert.Equal(t, int64(100), f.tdb.Balance(t, id))
	})

	t.Run("should report a missing wallet on change", func(t *testing.T) {
		f := newRepoFixture(t)
		_, err := f.users.ApplyBalanceChange(ctx, 77, 100)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}

func TestEnvelopeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("should store and load with the sender nickname", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		env := f.envelope(t, sender, 1000, 3, 24*time.Hour)

		got, err := f.envelopes.GetByID(ctx, env.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.SenderNickname)
		assert.Equal(t, "满纸荒唐", got.Answer)
		assert.Equal(t, entity.EnvelopePending, got.Status)
		assert.True(t, got.ExpiresAt.Equal(baseTime.Add(24*time.Hour)))

		locked, err := f.envelopes.GetForUpdate(ctx, env.ID)
		require.NoError(t, err)
		assert.Equal(t, env.ID, locked.ID)
	})

	t.Run("should report missing envelopes", func(t *testing.T) {
		f := newRepoFixture(t)
		_, err := f.envelopes.GetByID(ctx, 12345)
		assert.ErrorIs(t, err, errs.ErrEnvelopeNotFound)
	})

	t.Run("should list newest first", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		first := f.envelope(t, sender, 100, 1, time.Hour)
		f.clock.Advance(time.Minute)
		second := f.envelope(t, sender, 200, 1, time.Hour)

		list, err := f.envelopes.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)

		list, err = f.envelopes.ListRecent(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("should advance the claim count only from the expected value", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		env := f.envelope(t, sender, 1000, 2, time.Hour)

		require.NoError(t, f.envelopes.RecordClaim(ctx, env.ID, 0, entity.EnvelopePending))
		assert.ErrorIs(t, f.envelopes.RecordClaim(ctx, env.ID, 0, entity.EnvelopePending), errs.ErrConcurrentUpdate)
		require.NoError(t, f.envelopes.RecordClaim(ctx, env.ID, 1, entity.EnvelopeClaimed))

		got, err := f.envelopes.GetByID(ctx, env.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.ClaimedCount)
		assert.Equal(t, entity.EnvelopeClaimed, got.Status)

		// claimed envelopes accept nothing more
		assert.ErrorIs(t, f.envelopes.RecordClaim(ctx, env.ID, 2, entity.EnvelopeClaimed), errs.ErrConcurrentUpdate)
	})

	t.Run("should expire exactly once", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		env := f.envelope(t, sender, 1000, 2, time.Hour)
		at := baseTime.Add(2 * time.Hour)

		won, err := f.envelopes.MarkExpired(ctx, env.ID, at)
		require.NoError(t, err)
		assert.True(t, won)

		won, err = f.envelopes.MarkExpired(ctx, env.ID, at)
		require.NoError(t, err)
		assert.False(t, won)

		got, err := f.envelopes.GetByID(ctx, env.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.EnvelopeExpired, got.Status)
		require.NotNil(t, got.RefundedAt)
	})

	t.Run("should list only overdue pending envelopes", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		overdue := f.envelope(t, sender, 100, 1, time.Hour)
		f.envelope(t, sender, 100, 1, 48*time.Hour)
		done := f.envelope(t, sender, 100, 1, time.Hour)
		require.NoError(t, f.envelopes.RecordClaim(ctx, done.ID, 0, entity.EnvelopeClaimed))

		ids, err := f.envelopes.ListExpirable(ctx, baseTime.Add(2*time.Hour), 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{overdue.ID}, ids)

		ids, err = f.envelopes.ListExpirable(ctx, baseTime.Add(time.Hour), 0, 10)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("should page expirable envelopes after a cursor", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		first := f.envelope(t, sender, 100, 1, time.Hour)
		second := f.envelope(t, sender, 100, 1, time.Hour)
		third := f.envelope(t, sender, 100, 1, time.Hour)
		now := baseTime.Add(2 * time.Hour)

		ids, err := f.envelopes.ListExpirable(ctx, now, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint64{first.ID, second.ID}, ids)

		ids, err = f.envelopes.ListExpirable(ctx, now, second.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, []uint64{third.ID}, ids)
	})
}

func TestClaimRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("should record claims and reject repeats", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		bob := f.tdb.CreateTestUser(t, "bob", 0)
		carol := f.tdb.CreateTestUser(t, "carol", 0)
		env := f.envelope(t, sender, 1000, 3, time.Hour)

		require.NoError(t, f.claims.Create(ctx, &entity.Claim{EnvelopeID: env.ID, ClaimerID: bob, AmountInCents: 300, CreatedAt: baseTime}))
		require.NoError(t, f.claims.Create(ctx, &entity.Claim{EnvelopeID: env.ID, ClaimerID: carol, AmountInCents: 450, CreatedAt: baseTime.Add(time.Second)}))

		err := f.claims.Create(ctx, &entity.Claim{EnvelopeID: env.ID, ClaimerID: bob, AmountInCents: 1, CreatedAt: baseTime})
		assert.ErrorIs(t, err, errs.ErrAlreadyClaimed)

		exists, err := f.claims.Exists(ctx, env.ID, bob)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = f.claims.Exists(ctx, env.ID, sender)
		require.NoError(t, err)
		assert.False(t, exists)

		total, err := f.claims.SumByEnvelope(ctx, env.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(750), total)

		list, err := f.claims.ListByEnvelope(ctx, env.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "carol", list[0].ClaimerNickname)
		assert.Equal(t, "bob", list[1].ClaimerNickname)
	})

	t.Run("should return empty results for untouched envelopes", func(t *testing.T) {
		f := newRepoFixture(t)
		sender := f.tdb.CreateTestUser(t, "alice", 0)
		env := f.envelope(t, sender, 1000, 3, time.Hour)

		total, err := f.claims.SumByEnvelope(ctx, env.ID)
		require.NoError(t, err)
		assert.Zero(t, total)

		list, err := f.claims.ListByEnvelope(ctx, env.ID)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)

		byEnvelope, err := f.claims.ListByEnvelopes(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, byEnvelope)
	})
}

func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("should reject a reused reference", func(t *testing.T) {
		f := newRepoFixture(t)
		user := f.tdb.CreateTestUser(t, "alice", 0)

		tx, err := entity.NewTransaction(user, "grant:user:1", entity.KindRecharge, 10000, nil, f.clock)
		require.NoError(t, err)
		require.NoError(t, f.transactions.Create(ctx, tx))

		exists, err := f.transactions.ExistsByReference(ctx, "grant:user:1")
		require.NoError(t, err)
		assert.True(t, exists)

		again, err := entity.NewTransaction(user, "grant:user:1", entity.KindRecharge, 10000, nil, f.clock)
		require.NoError(t, err)
		assert.ErrorIs(t, f.transactions.Create(ctx, again), errs.ErrDuplicateTransaction)
	})

	t.Run("should list newest first with envelope summaries", func(t *testing.T) {
		f := newRepoFixture(t)
		user := f.tdb.CreateTestUser(t, "alice", 0)
		env := f.envelope(t, user, 500, 1, time.Hour)

		grant, err := entity.NewTransaction(user, "grant:user:1", entity.KindRecharge, 10000, nil, f.clock)
		require.NoError(t, err)
		require.NoError(t, f.transactions.Create(ctx, grant))

		f.clock.Advance(time.Second)
		send, err := entity.NewTransaction(user, "send:envelope:1", entity.KindSend, -500, &env.ID, f.clock)
		require.NoError(t, err)
		require.NoError(t, f.transactions.Create(ctx, send))

		list, err := f.transactions.ListByUser(ctx, user, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, entity.KindSend, list[0].Kind)
		require.NotNil(t, list[0].Envelope)
		assert.Equal(t, "红楼梦", list[0].Envelope.BookName)
		assert.Nil(t, list[1].Envelope)
	})
}
