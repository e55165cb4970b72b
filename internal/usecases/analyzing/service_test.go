package analyzing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repositorymocks "github.com/vfg2006/marketing-analyst-api/infrastructure/repository/mocks"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing/mocks"
	"go.uber.org/mock/gomock"
)

func TestServiceSemCompleterUsaVarianteDeterministica(t *testing.T) {
	service := NewService(newTestRegistry(), nil, nil)

	doc, err := service.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Findings, 2)
}

func TestServiceCaiParaDeterministicaQuandoModeloFalha(t *testing.T) {
	ctrl := gomock.NewController(t)

	completer := mocks.NewMockCompleter(ctrl)
	completer.EXPECT().Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("serviço de completion indisponível"))

	service := NewService(newTestRegistry(), completer, nil)

	doc, err := service.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	// Formato fixo da variante determinística
	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Findings, 2)
	assert.Len(t, doc.Actions, 1)
	assert.Len(t, doc.Evidence, 1)
}

func TestServicePersisteExecucaoDaAPI(t *testing.T) {
	ctrl := gomock.NewController(t)

	var saved *domain.AnalysisRun
	runRepo := repositorymocks.NewMockAnalysisRunRepository(ctrl)
	runRepo.EXPECT().Save(gomock.Any()).DoAndReturn(func(run *domain.AnalysisRun) error {
		saved = run
		return nil
	})

	service := NewService(newTestRegistry(), nil, runRepo)

	_, err := service.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "ws1", saved.WorkspaceID)
	assert.Equal(t, domain.AnalysisTriggerAPI, saved.TriggeredBy)
	assert.Equal(t, domain.StatusOK, saved.Status)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestServicePersisteExecucaoAgendada(t *testing.T) {
	ctrl := gomock.NewController(t)

	var saved *domain.AnalysisRun
	runRepo := repositorymocks.NewMockAnalysisRunRepository(ctrl)
	runRepo.EXPECT().Save(gomock.Any()).DoAndReturn(func(run *domain.AnalysisRun) error {
		saved = run
		return nil
	})

	service := NewService(newTestRegistry(), nil, runRepo)

	_, err := service.AnalyzeScheduled(context.Background(), sampleRequest())
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, domain.AnalysisTriggerScheduler, saved.TriggeredBy)
}

func TestServiceNaoDerrubaAnaliseQuandoPersistenciaFalha(t *testing.T) {
	ctrl := gomock.NewController(t)

	runRepo := repositorymocks.NewMockAnalysisRunRepository(ctrl)
	runRepo.EXPECT().Save(gomock.Any()).Return(errors.New("banco indisponível"))

	service := NewService(newTestRegistry(), nil, runRepo)

	doc, err := service.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, doc.Status)
}

func TestServiceHistorySemRepositorio(t *testing.T) {
	service := NewService(newTestRegistry(), nil, nil)

	runs, err := service.History("ws1", 20)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestServiceHistoryDelegaAoRepositorio(t *testing.T) {
	ctrl := gomock.NewController(t)

	expected := []*domain.AnalysisRun{{ID: "run1", WorkspaceID: "ws1"}}
	runRepo := repositorymocks.NewMockAnalysisRunRepository(ctrl)
	runRepo.EXPECT().ListByWorkspace("ws1", 10).Return(expected, nil)

	service := NewService(newTestRegistry(), nil, runRepo)

	runs, err := service.History("ws1", 10)
	require.NoError(t, err)
	assert.Equal(t, expected, runs)
}

func TestServiceToolsExpoeOCatalogo(t *testing.T) {
	service := NewService(newTestRegistry(), nil, nil)

	specs := service.Tools()
	require.Len(t, specs, 4)
	assert.Equal(t, "compare_periods", specs[0].Name)
}
