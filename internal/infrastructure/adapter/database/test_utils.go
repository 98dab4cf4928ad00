package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/time"
)

// TestDBManager provides a migrated, private in-memory SQLite database for tests
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager connects and migrates a fresh database. It is closed when
// the test ends. A nil time provider uses the real clock.
func NewTestDBManager(t testing.TB, logger coreport.Logger, timeProvider coreport.TimeProvider) *TestDBManager {
	t.Helper()
	return openTestDBManager(t, logger, timeProvider, "mem:"+uuid.NewString())
}

// NewFileTestDBManager opens the SQLite file at path, migrating it if needed.
// Several managers on one path behave like separate service instances
// sharing a database.
func NewFileTestDBManager(t testing.TB, logger coreport.Logger, timeProvider coreport.TimeProvider, path string) *TestDBManager {
	t.Helper()
	return openTestDBManager(t, logger, timeProvider, path)
}

func openTestDBManager(t testing.TB, logger coreport.Logger, timeProvider coreport.TimeProvider, name string) *TestDBManager {
	t.Helper()

	if timeProvider == nil {
		timeProvider = timeprovider.NewRealTimeProvider()
	}

	config := &Config{
		Driver:        DriverSQLite,
		Database:      name,
		MaxOpenConns:  1,
		QueryTimeout:  5 * time.Second,
		LogLevel:      "silent",
		RetryAttempts: 1,
		BusyTimeout:   5 * time.Second,
	}

	manager := NewManager(config, logger, timeProvider)
	if _, err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// DB returns the underlying connection
func (m *TestDBManager) DB() *gorm.DB {
	return m.Manager.DB()
}

// UnitOfWork returns a unit of work over the test database
func (m *TestDBManager) UnitOfWork() *UnitOfWork {
	return NewUnitOfWork(m.Manager.DB(), m.Logger, m.TimeProvider)
}

// CreateTestUser inserts a user with the given balance and returns its ID.
// A non-zero balance is backed by a grant entry so the ledger stays balanced.
func (m *TestDBManager) CreateTestUser(t testing.TB, nickname string, balance int64) uint64 {
	t.Helper()

	now := m.TimeProvider.Now()
	user := model.User{
		Nickname:   nickname,
		Credential: "secret",
		Balance:    balance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := m.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if balance == 0 {
			return nil
		}
		return tx.Create(&model.Transaction{
			UserID:        user.ID,
			Reference:     fmt.Sprintf("grant:user:%d", user.ID),
			Kind:          string(entity.KindRecharge),
			AmountInCents: balance,
			BalanceAfter:  balance,
			CreatedAt:     now,
		}).Error
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user.ID
}

// Balance reads a user's balance straight from the table
func (m *TestDBManager) Balance(t testing.TB, userID uint64) int64 {
	t.Helper()

	var user model.User
	if err := m.DB().First(&user, userID).Error; err != nil {
		t.Fatalf("Failed to load user %d: %v", userID, err)
	}
	return user.Balance
}

// CountTransactions counts ledger entries of a kind for a user
func (m *TestDBManager) CountTransactions(t testing.TB, userID uint64, kind entity.TransactionKind) int64 {
	t.Helper()

	var count int64
	if err := m.DB().Model(&model.Transaction{}).
		Where("user_id = ? AND kind = ?", userID, string(kind)).
		Count(&count).Error; err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	return count
}

// CountReference counts ledger entries carrying a reference
func (m *TestDBManager) CountReference(t testing.TB, reference string) int64 {
	t.Helper()

	var count int64
	if err := m.DB().Model(&model.Transaction{}).
		Where("reference = ?", reference).
		Count(&count).Error; err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	return count
}

// AssertLedgerBalanced fails the test for every user whose balance differs
// from the sum of their transaction amounts
func (m *TestDBManager) AssertLedgerBalanced(t testing.TB) {
	t.Helper()

	var rows []struct {
		ID      uint64
		Balance int64
		Total   int64
	}
	err := m.DB().Model(&model.User{}).
		Select("users.id, users.balance, COALESCE(SUM(transactions.amount_in_cents), 0) AS total").
		Joins("LEFT JOIN transactions ON transactions.user_id = users.id").
		Group("users.id, users.balance").
		Scan(&rows).Error
	if err != nil {
		t.Fatalf("Failed to sum transactions: %v", err)
	}

	for _, row := range rows {
		if row.Balance != row.Total {
			t.Errorf("user %d: balance %d, transactions sum to %d", row.ID, row.Balance, row.Total)
		}
	}
}
