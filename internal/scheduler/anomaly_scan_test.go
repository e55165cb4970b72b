package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/dataset"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-analyst-api/internal/config"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
	"go.uber.org/mock/gomock"
)

func scanConfig() *config.Config {
	return &config.Config{
		AnomalyScan: config.AnomalyScan{
			CronSchedule: "0 7 * * *",
			LookbackDays: 7,
			Enabled:      false,
		},
	}
}

func metricSource() repository.MetricRowRepository {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	date := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)

	return dataset.NewFromRows([]*domain.MetricRow{
		{WorkspaceID: "ws1", Date: date, Campaign: "verao", Spend: 100, Revenue: 300},
		{WorkspaceID: "ws2", Date: date, Campaign: "inverno", Spend: 50, Revenue: 80},
	})
}

func newAnalystService(metricRepo repository.MetricRowRepository, runRepo repository.AnalysisRunRepository) *analyzing.Service {
	registry := analyzing.NewRegistry(aggregating.NewService(metricRepo))
	return analyzing.NewService(registry, nil, runRepo)
}

func TestRunScanAnalisaTodosOsWorkspaces(t *testing.T) {
	ctrl := gomock.NewController(t)

	metricRepo := metricSource()

	saved := make([]*domain.AnalysisRun, 0, 2)
	runRepo := mocks.NewMockAnalysisRunRepository(ctrl)
	runRepo.EXPECT().Save(gomock.Any()).DoAndReturn(func(run *domain.AnalysisRun) error {
		saved = append(saved, run)
		return nil
	}).Times(2)

	service := NewAnomalyScanService(newAnalystService(metricRepo, runRepo), metricRepo, scanConfig())

	require.NoError(t, service.RunScan())

	require.Len(t, saved, 2)
	assert.Equal(t, "ws1", saved[0].WorkspaceID)
	assert.Equal(t, "ws2", saved[1].WorkspaceID)
	assert.Equal(t, domain.AnalysisTriggerScheduler, saved[0].TriggeredBy)
}

func TestRunScanComErroAoListarWorkspaces(t *testing.T) {
	ctrl := gomock.NewController(t)

	metricRepo := mocks.NewMockMetricRowRepository(ctrl)
	metricRepo.EXPECT().ListWorkspaces().Return(nil, errors.New("banco indisponível"))

	service := NewAnomalyScanService(newAnalystService(metricRepo, nil), metricRepo, scanConfig())

	assert.Error(t, service.RunScan())
}

func TestRunScanSemWorkspaces(t *testing.T) {
	metricRepo := dataset.NewFromRows(nil)

	service := NewAnomalyScanService(newAnalystService(metricRepo, nil), metricRepo, scanConfig())

	assert.NoError(t, service.RunScan())
}

func TestScanRangeTerminaOntem(t *testing.T) {
	metricRepo := dataset.NewFromRows(nil)
	service := NewAnomalyScanService(newAnalystService(metricRepo, nil), metricRepo, scanConfig())

	now := time.Date(2024, time.January, 15, 12, 30, 0, 0, time.UTC)
	rng := service.scanRange(now)

	assert.Equal(t, time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC), rng.End)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), rng.Start)
}

func TestGetStatusExpoeAConfiguracao(t *testing.T) {
	metricRepo := dataset.NewFromRows(nil)
	service := NewAnomalyScanService(newAnalystService(metricRepo, nil), metricRepo, scanConfig())

	status := service.GetStatus()

	assert.Equal(t, false, status["scan_enabled"])
	assert.Equal(t, "0 7 * * *", status["scan_cron"])
	assert.Equal(t, 7, status["lookback_days"])
}
