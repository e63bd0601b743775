package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/iwvelando/bizplan-forecast/pkg/datetime"
	"github.com/iwvelando/bizplan-forecast/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	projectID  = uuid.MustParse("8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60")
	scenarioID = uuid.MustParse("c9f0f895-fb98-4b91-9f1e-2a3b4c5d6e7f")
)

// dryRunDB builds SQL without ever connecting.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=bizplan dbname=bizplan sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestRecordRoundTrip(t *testing.T) {
	projection := testutil.SampleProjection("Base", datetime.NewPeriod(2025, 1), 2)
	original := projection.Outputs[1]

	record := NewRecord(projectID, scenarioID, original)
	assert.Equal(t, projectID, record.ProjectID)
	assert.Equal(t, scenarioID, record.ScenarioID)
	assert.Equal(t, 2025, record.Year)
	assert.Equal(t, 2, record.Month)
	assert.Equal(t, 1, record.MonthIndex)

	expected := original
	expected.ProjectID = projectID
	expected.ScenarioID = scenarioID
	assert.Equal(t, expected, record.Output())
}

func TestTableName(t *testing.T) {
	db := dryRunDB(t)
	stmt := &gorm.Statement{DB: db}
	require.NoError(t, stmt.Parse(&FinancialOutputRecord{}))

	assert.Equal(t, "financial_outputs", stmt.Schema.Table)
	field := stmt.Schema.LookUpField("EBITDAMargin")
	require.NotNil(t, field)
	assert.Equal(t, "ebitda_margin", field.DBName)
}

func TestListQuerySQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var records []FinancialOutputRecord
		return listQuery(tx, projectID, scenarioID).Find(&records)
	})

	assert.Contains(t, sql, `FROM "financial_outputs"`)
	assert.Contains(t, sql, projectID.String())
	assert.Contains(t, sql, scenarioID.String())
	assert.Contains(t, sql, "ORDER BY month_index")
}

func TestDeleteScopeSQL(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Scopes(scenarioScope(projectID, scenarioID)).Delete(&FinancialOutputRecord{})
	})

	assert.Contains(t, sql, `DELETE FROM "financial_outputs"`)
	assert.Contains(t, sql, "project_id = ")
	assert.Contains(t, sql, "scenario_id = ")
}

func TestInsertSQL(t *testing.T) {
	db := dryRunDB(t)
	projection := testutil.SampleProjection("Base", datetime.NewPeriod(2025, 1), 1)
	record := NewRecord(projectID, scenarioID, projection.Outputs[0])

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Create(&record)
	})

	assert.Contains(t, sql, `INSERT INTO "financial_outputs"`)
	assert.Contains(t, sql, `"bfr_level"`)
	assert.Contains(t, sql, `"dscr"`)
}

func TestOpenWithoutDSN(t *testing.T) {
	_, err := Open(context.Background(), zap.NewNop(), "")
	assert.ErrorIs(t, err, ErrNoDSN)
}

// TestRepositoryPostgres runs against a real database when
// BIZPLAN_TEST_DATABASE_DSN is set.
func TestRepositoryPostgres(t *testing.T) {
	dsn := os.Getenv("BIZPLAN_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("BIZPLAN_TEST_DATABASE_DSN not set")
	}

	ctx := context.Background()
	repo, err := Open(ctx, zap.NewNop(), dsn)
	require.NoError(t, err)
	defer func() { _ = repo.Close() }()

	project := uuid.New()
	first := testutil.SampleProjection("Base", datetime.NewPeriod(2025, 1), 12)
	require.NoError(t, repo.ReplaceScenario(ctx, project, first.ScenarioID, first.Outputs))

	second := testutil.SampleProjection("Base", datetime.NewPeriod(2025, 1), 6)
	require.NoError(t, repo.ReplaceScenario(ctx, project, second.ScenarioID, second.Outputs))

	stored, err := repo.ListScenario(ctx, project, second.ScenarioID)
	require.NoError(t, err)
	require.Len(t, stored, 6)
	for i, out := range stored {
		assert.Equal(t, i, out.MonthIndex)
		assert.True(t, out.CumulativeCash.Equal(second.Outputs[i].CumulativeCash))
	}

	projections, err := repo.ListProject(ctx, project)
	require.NoError(t, err)
	require.Len(t, projections, 1)
	assert.Equal(t, "Base", projections[0].Name)
}
