// Package migration keeps the schema in step with the models. Each step runs
// once, inside its own transaction, and is recorded in migration_versions.
package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
	"github.com/amirhossein-jamali/cipher-envelope/internal/infrastructure/adapter/model"
)

// step is one schema change
type step struct {
	version     string
	description string
	run         func(ctx context.Context, tx *gorm.DB) error
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
	steps            []step
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	m := &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(logger),
	}
	m.steps = []step{
		{"1.0.0", "wallet, ledger, envelope and claim tables", m.createTables},
		{"1.1.0", "integrity constraints", m.advancedIndexMgr.CreateConstraints},
		{"1.2.0", "expiry and ledger indexes", m.advancedIndexMgr.CreateAdvancedIndexes},
	}
	return m
}

// CurrentSchemaVersion is the version the newest step brings the schema to
func (m *MigrationManager) CurrentSchemaVersion() string {
	return m.steps[len(m.steps)-1].version
}

// MigrateAll applies every step not yet recorded
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	dialect := m.db.Dialector.Name()
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": m.CurrentSchemaVersion(),
		"dialect":        dialect,
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		m.logger.Error("Failed to read applied schema versions", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	ran := 0
	for _, s := range m.steps {
		if _, done := applied[s.version]; done {
			continue
		}

		m.logger.Info("Applying schema step", map[string]any{
			"version":     s.version,
			"description": s.description,
		})

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.run(ctx, tx); err != nil {
				return err
			}
			return tx.Create(&model.MigrationVersion{
				Version:   s.version,
				Dialect:   dialect,
				AppliedAt: m.timeProvider.Now(),
				Details:   s.description,
			}).Error
		})
		if err != nil {
			m.logger.Error("Schema step failed", map[string]any{
				"version": s.version,
				"error":   err.Error(),
			})
			return fmt.Errorf("migration %s: %w", s.version, err)
		}
		ran++
	}

	if ran == 0 {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": m.CurrentSchemaVersion(),
		})
		return nil
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": m.CurrentSchemaVersion(),
		"applied": ran,
	})
	return nil
}

// GetCurrentVersion returns the newest applied version, or "" on a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var versions []model.MigrationVersion
	if err := m.db.WithContext(ctx).Order("applied_at desc, id desc").Limit(1).Find(&versions).Error; err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", nil
	}
	return versions[0].Version, nil
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	var versions []model.MigrationVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		applied[v.Version] = struct{}{}
	}
	return applied, nil
}

func (m *MigrationManager) createTables(ctx context.Context, tx *gorm.DB) error {
	m.logger.Info("Auto-migrating database models", nil)

	return tx.AutoMigrate(
		&model.User{},
		&model.Transaction{},
		&model.Envelope{},
		&model.Claim{},
	)
}
