package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/internal/forecast"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNoDSN is returned when persistence is requested without a database DSN.
var ErrNoDSN = errors.New("database dsn is not configured")

const insertBatchSize = 200

// Repository reads and writes projection outputs.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRepository wraps an open gorm handle.
func NewRepository(logger *zap.Logger, db *gorm.DB) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}
}

// Open connects to PostgreSQL and migrates the outputs table.
func Open(ctx context.Context, logger *zap.Logger, dsn string) (*Repository, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := NewRepository(logger, db)
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates or updates the outputs table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&FinancialOutputRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func scenarioScope(projectID, scenarioID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("project_id = ? AND scenario_id = ?", projectID, scenarioID)
	}
}

// ReplaceScenario atomically supersedes every stored month of the scenario
// with the given outputs.
func (r *Repository) ReplaceScenario(ctx context.Context, projectID, scenarioID uuid.UUID, outputs []forecast.FinancialOutput) error {
	records := make([]FinancialOutputRecord, 0, len(outputs))
	for _, o := range outputs {
		records = append(records, NewRecord(projectID, scenarioID, o))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(scenarioScope(projectID, scenarioID)).Delete(&FinancialOutputRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous outputs: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert outputs: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(fmt.Sprintf("stored %d months for scenario %s", len(records), scenarioID),
		zap.String("op", "store.ReplaceScenario"),
		zap.String("project", projectID.String()),
	)
	return nil
}

// SaveProjections stores every projection of a project.
func (r *Repository) SaveProjections(ctx context.Context, projectID uuid.UUID, projections []forecast.Projection) error {
	for _, p := range projections {
		if err := r.ReplaceScenario(ctx, projectID, p.ScenarioID, p.Outputs); err != nil {
			return fmt.Errorf("scenario %s: %w", p.Name, err)
		}
	}
	return nil
}

func listQuery(db *gorm.DB, projectID, scenarioID uuid.UUID) *gorm.DB {
	return db.Model(&FinancialOutputRecord{}).
		Scopes(scenarioScope(projectID, scenarioID)).
		Order("month_index")
}

// ListScenario returns the stored months of a scenario in month order.
func (r *Repository) ListScenario(ctx context.Context, projectID, scenarioID uuid.UUID) ([]forecast.FinancialOutput, error) {
	var records []FinancialOutputRecord
	if err := listQuery(r.db.WithContext(ctx), projectID, scenarioID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}

	outputs := make([]forecast.FinancialOutput, 0, len(records))
	for _, record := range records {
		outputs = append(outputs, record.Output())
	}
	return outputs, nil
}

// ListProject returns every stored scenario of a project, ordered by
// scenario name. Notes are not persisted.
func (r *Repository) ListProject(ctx context.Context, projectID uuid.UUID) ([]forecast.Projection, error) {
	var records []FinancialOutputRecord
	err := r.db.WithContext(ctx).Model(&FinancialOutputRecord{}).
		Where("project_id = ?", projectID).
		Order("scenario_name").Order("scenario_id").Order("month_index").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}

	var projections []forecast.Projection
	for _, record := range records {
		if len(projections) == 0 || projections[len(projections)-1].ScenarioID != record.ScenarioID {
			projections = append(projections, forecast.Projection{
				Name:       record.ScenarioName,
				ScenarioID: record.ScenarioID,
				Notes:      map[string][]string{},
			})
		}
		last := &projections[len(projections)-1]
		last.Outputs = append(last.Outputs, record.Output())
	}
	return projections, nil
}
