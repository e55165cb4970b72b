package analyzing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// Service é a fachada do analista consumida pela API e pelo scheduler.
// Quando há um Completer configurado, tenta a variante guiada por modelo e cai
// para a determinística em qualquer falha do agente; sem Completer, usa a
// determinística diretamente. Toda resposta devolvida já passou pela checagem
// de evidências.
type Service struct {
	registry      *Registry
	deterministic *DeterministicAgent
	model         *ModelAgent
	runRepository repository.AnalysisRunRepository
}

func NewService(
	registry *Registry,
	completer Completer,
	runRepository repository.AnalysisRunRepository,
) *Service {
	service := &Service{
		registry:      registry,
		deterministic: NewDeterministicAgent(registry),
		runRepository: runRepository,
	}

	if completer != nil {
		service.model = NewModelAgent(registry, completer)
	}

	return service
}

func (s *Service) Analyze(ctx context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error) {
	response, err := s.analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	s.saveRun(ctx, req, response, domain.AnalysisTriggerAPI)

	return response, nil
}

// AnalyzeScheduled executa a variante determinística para a varredura
// agendada, sem consumir o modelo
func (s *Service) AnalyzeScheduled(ctx context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error) {
	response, err := s.deterministic.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	s.saveRun(ctx, req, response, domain.AnalysisTriggerScheduler)

	return response, nil
}

// Tools expõe o catálogo de ferramentas em ordem estável
func (s *Service) Tools() []ToolSpec {
	return s.registry.Specs()
}

// History lista as execuções persistidas do workspace
func (s *Service) History(workspaceID string, limit int) ([]*domain.AnalysisRun, error) {
	if s.runRepository == nil {
		return []*domain.AnalysisRun{}, nil
	}
	return s.runRepository.ListByWorkspace(workspaceID, limit)
}

func (s *Service) analyze(ctx context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error) {
	if s.model == nil {
		return s.deterministic.Analyze(ctx, req)
	}

	response, err := s.model.Analyze(ctx, req)
	if err == nil {
		return response, nil
	}

	// Qualquer falha do agente guiado por modelo (parse, validação pós-reparo,
	// indisponibilidade do colaborador) cai para a variante determinística,
	// que não depende de colaborador externo
	logrus.WithContext(ctx).WithFields(logrus.Fields{
		"workspace_id": req.WorkspaceID,
	}).Warnf("análise guiada por modelo falhou, usando a variante determinística: %v", err)

	return s.deterministic.Analyze(ctx, req)
}

// saveRun persiste o histórico em melhor esforço: falha de persistência não
// derruba uma análise já concluída
func (s *Service) saveRun(ctx context.Context, req *domain.AnalystRequest, response *domain.FinalResponse, triggeredBy string) {
	if s.runRepository == nil || response == nil {
		return
	}

	id, err := utils.GenerateID()
	if err != nil {
		logrus.WithContext(ctx).Errorf("erro ao gerar o id da execução de análise: %v", err)
		return
	}

	run := &domain.AnalysisRun{
		ID:          id,
		WorkspaceID: req.WorkspaceID,
		Question:    req.Question,
		Status:      response.Status,
		TriggeredBy: triggeredBy,
		Response:    response,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.runRepository.Save(run); err != nil {
		logrus.WithContext(ctx).WithFields(logrus.Fields{
			"workspace_id": req.WorkspaceID,
			"run_id":       run.ID,
		}).Errorf("erro ao salvar execução de análise: %v", err)
	}
}
