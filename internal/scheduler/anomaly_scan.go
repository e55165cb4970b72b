// Package scheduler contém os serviços de agendamento de análises recorrentes
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/internal/config"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/analyzing"
)

type AnomalyScanConfig struct {
	CronSchedule string
	LookbackDays int
	ScanEnabled  bool
}

// AnomalyScanService executa diariamente a variante determinística do analista
// para cada workspace com dados, cobrindo a janela retroativa configurada que
// termina ontem. O resultado fica no histórico de execuções com origem
// "scheduler".
type AnomalyScanService struct {
	scheduler           *gocron.Scheduler
	analystService      *analyzing.Service
	metricRepo          repository.MetricRowRepository
	config              AnomalyScanConfig
	scanRunning         bool
	scanMutex           sync.Mutex
	lastScanStartedAt   time.Time
	lastScanCompletedAt time.Time
}

func NewAnomalyScanService(
	analystService *analyzing.Service,
	metricRepo repository.MetricRowRepository,
	cfg *config.Config,
) *AnomalyScanService {
	scanConfig := AnomalyScanConfig{
		CronSchedule: cfg.AnomalyScan.CronSchedule, // Default: 7h da manhã todos os dias
		LookbackDays: cfg.AnomalyScan.LookbackDays,
		ScanEnabled:  cfg.AnomalyScan.Enabled, // Default: desabilitado
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": scanConfig.CronSchedule,
		"lookback_days": scanConfig.LookbackDays,
	}).Info("Configuração do agendador de varredura de anomalias carregada")

	return &AnomalyScanService{
		scheduler:      scheduler,
		analystService: analystService,
		metricRepo:     metricRepo,
		config:         scanConfig,
	}
}

func (s *AnomalyScanService) Start(ctx context.Context) error {
	if !s.config.ScanEnabled {
		logrus.Info("Cron de varredura de anomalias desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de varredura de anomalias")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.RunScan(); err != nil {
			logrus.WithError(err).Error("Erro na varredura de anomalias")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de anomalias: %w", err)
	}

	// Executar o cron em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do cron quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de varredura de anomalias")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *AnomalyScanService) RunScan() error {
	s.scanMutex.Lock()
	defer s.scanMutex.Unlock()

	if s.scanRunning {
		logrus.Warn("Varredura de anomalias já está em execução")
		return nil
	}

	s.scanRunning = true
	s.lastScanStartedAt = time.Now()
	defer func() {
		s.scanRunning = false
		s.lastScanCompletedAt = time.Now()
	}()

	logrus.Info("Iniciando varredura de anomalias")

	workspaceIDs, err := s.metricRepo.ListWorkspaces()
	if err != nil {
		logrus.WithError(err).Error("Erro ao listar workspaces para a varredura de anomalias")
		return err
	}

	if len(workspaceIDs) == 0 {
		logrus.Info("Nenhum workspace encontrado para a varredura de anomalias")
		return nil
	}

	rng := s.scanRange(time.Now())

	for _, workspaceID := range workspaceIDs {
		s.scanWorkspace(context.Background(), workspaceID, rng)
	}

	logrus.Info("Varredura de anomalias concluída")

	return nil
}

// scanRange monta a janela retroativa que termina ontem
func (s *AnomalyScanService) scanRange(now time.Time) domain.DateRange {
	lookback := s.config.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}

	yesterday := now.AddDate(0, 0, -1)
	end := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)

	return domain.DateRange{
		Start: end.AddDate(0, 0, -(lookback - 1)),
		End:   end,
	}
}

func (s *AnomalyScanService) scanWorkspace(ctx context.Context, workspaceID string, rng domain.DateRange) {
	req := &domain.AnalystRequest{
		WorkspaceID: workspaceID,
		Question:    fmt.Sprintf("Varredura diária de anomalias de gasto no período %s", rng.String()),
		DateRange:   rng,
	}

	response, err := s.analystService.AnalyzeScheduled(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("workspace_id", workspaceID).Error("Erro ao analisar workspace na varredura de anomalias")
		return
	}

	logrus.WithFields(logrus.Fields{
		"workspace_id": workspaceID,
		"status":       response.Status,
	}).Info("Workspace analisado pela varredura de anomalias")
}

// TriggerManualScan inicia manualmente uma varredura de anomalias
func (s *AnomalyScanService) TriggerManualScan() {
	s.scanMutex.Lock()
	if s.scanRunning {
		s.scanMutex.Unlock()
		logrus.Info("Varredura de anomalias já em andamento, ignorando solicitação manual")
		return
	}
	s.scanMutex.Unlock()

	logrus.Info("Iniciando varredura manual de anomalias")
	go s.RunScan()
}

// GetStatus retorna o status atual do agendador
func (s *AnomalyScanService) GetStatus() map[string]any {
	return map[string]any{
		"scan_enabled":           s.config.ScanEnabled,
		"scan_cron":              s.config.CronSchedule,
		"lookback_days":          s.config.LookbackDays,
		"last_scan_started_at":   s.lastScanStartedAt,
		"last_scan_completed_at": s.lastScanCompletedAt,
	}
}
