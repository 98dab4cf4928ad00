package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

const dialectPostgres = "postgres"

// AdvancedIndexManager adds what gorm tags cannot express: CHECK
// constraints and partial or BRIN indexes
type AdvancedIndexManager struct {
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{logger: logger}
}

type ddl struct {
	name string
	sql  string
}

// CreateConstraints adds CHECK constraints on PostgreSQL. SQLite cannot add
// constraints to existing tables; the guarded updates in the repositories
// hold the same rules there.
func (m *AdvancedIndexManager) CreateConstraints(ctx context.Context, tx *gorm.DB) error {
	if tx.Dialector.Name() != dialectPostgres {
		m.logger.Info("Skipping CHECK constraints on this dialect", map[string]any{
			"dialect": tx.Dialector.Name(),
		})
		return nil
	}

	statements := []ddl{
		{"chk_users_balance_non_negative", `ALTER TABLE users ADD CONSTRAINT chk_users_balance_non_negative CHECK (balance >= 0)`},
		{"chk_envelopes_amount_positive", `ALTER TABLE envelopes ADD CONSTRAINT chk_envelopes_amount_positive CHECK (amount_in_cents > 0)`},
		{"chk_envelopes_total_count", `ALTER TABLE envelopes ADD CONSTRAINT chk_envelopes_total_count CHECK (total_count BETWEEN 1 AND 100)`},
		{"chk_envelopes_claimed_count", `ALTER TABLE envelopes ADD CONSTRAINT chk_envelopes_claimed_count CHECK (claimed_count BETWEEN 0 AND total_count)`},
		{"chk_envelopes_status", `ALTER TABLE envelopes ADD CONSTRAINT chk_envelopes_status CHECK (status IN ('pending', 'claimed', 'expired'))`},
		{"chk_claims_amount_positive", `ALTER TABLE claims ADD CONSTRAINT chk_claims_amount_positive CHECK (amount_in_cents > 0)`},
		{"chk_transactions_kind", `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_kind CHECK (kind IN ('recharge', 'send', 'receive'))`},
	}
	return m.exec(tx, statements, true)
}

// CreateAdvancedIndexes creates the expiry sweep index on every dialect and
// the PostgreSQL-only ledger indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context, tx *gorm.DB) error {
	m.logger.Info("Creating advanced indexes", map[string]any{"dialect": tx.Dialector.Name()})

	common := []ddl{
		// the sweeper only ever scans pending rows
		{"idx_envelopes_pending_expiry", `CREATE INDEX IF NOT EXISTS idx_envelopes_pending_expiry ON envelopes (expires_at) WHERE status = 'pending'`},
		{"idx_claims_envelope_created", `CREATE INDEX IF NOT EXISTS idx_claims_envelope_created ON claims (envelope_id, created_at)`},
	}
	if err := m.exec(tx, common, true); err != nil {
		return err
	}

	if tx.Dialector.Name() != dialectPostgres {
		return nil
	}

	postgresOnly := []ddl{
		{"idx_transactions_created_at_brin", `CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin ON transactions USING BRIN (created_at) WITH (pages_per_range = 32)`},
		{"idx_transactions_envelope_kind", `CREATE INDEX IF NOT EXISTS idx_transactions_envelope_kind ON transactions (envelope_id, kind) WHERE envelope_id IS NOT NULL`},
	}
	if err := m.exec(tx, postgresOnly, true); err != nil {
		return err
	}

	return m.CreatePerformanceTweaks(tx)
}

// CreatePerformanceTweaks applies PostgreSQL storage settings. Failures are logged only.
func (m *AdvancedIndexManager) CreatePerformanceTweaks(tx *gorm.DB) error {
	tweaks := []ddl{
		{"transactions_fillfactor", `ALTER TABLE transactions SET (fillfactor = 90)`},
		{"envelopes_fillfactor", `ALTER TABLE envelopes SET (fillfactor = 80)`},
		{"transactions_user_statistics", `ALTER TABLE transactions ALTER COLUMN user_id SET STATISTICS 1000`},
	}
	return m.exec(tx, tweaks, false)
}

func (m *AdvancedIndexManager) exec(tx *gorm.DB, statements []ddl, required bool) error {
	for _, s := range statements {
		if required {
			if err := tx.Exec(s.sql).Error; err != nil {
				m.logger.Error("Failed to apply schema statement", map[string]any{"name": s.name, "error": err.Error()})
				return err
			}
			continue
		}

		// a failed statement aborts a postgres transaction unless rolled back to a savepoint
		if err := tx.SavePoint(s.name).Error; err != nil {
			return err
		}
		if err := tx.Exec(s.sql).Error; err != nil {
			m.logger.Warn("Skipped optional schema statement", map[string]any{"name": s.name, "error": err.Error()})
			if err := tx.RollbackTo(s.name).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
