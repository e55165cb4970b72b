package analyzing

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

const (
	// maxPlanSteps limita o tamanho do plano retornado pelo modelo
	maxPlanSteps = 7
	// maxIterations limita o loop de seleção de ferramentas
	maxIterations = 8
	// minToolCalls impede encerramento antecipado sem evidência mínima
	minToolCalls = 2
)

// ModelAgent executa o ciclo plano → ferramentas → síntese guiado por um
// modelo de linguagem. O loop é estritamente sequencial e limitado: o modelo
// nunca escolhe o workspace, nunca invoca ferramenta fora do catálogo e nunca
// passa de 8 iterações. Qualquer saída do modelo que não seja JSON válido
// aborta a execução com um erro tipado; o fallback determinístico é
// responsabilidade do chamador.
type ModelAgent struct {
	registry  *Registry
	completer Completer
}

func NewModelAgent(registry *Registry, completer Completer) *ModelAgent {
	return &ModelAgent{
		registry:  registry,
		completer: completer,
	}
}

type toolChoice struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolSelection struct {
	Next *toolChoice `json:"next"`
	Done bool        `json:"done"`
}

func (a *ModelAgent) Analyze(ctx context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := a.buildPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	evidence, summaries, err := a.runToolLoop(ctx, req, plan)
	if err != nil {
		return nil, err
	}

	doc, err := a.synthesize(ctx, req, plan, evidence, summaries)
	if err != nil {
		return nil, err
	}

	// A checagem de evidências roda incondicionalmente, mesmo quando a
	// síntese validou na primeira tentativa
	return BindEvidence(doc), nil
}

func (a *ModelAgent) buildPlan(ctx context.Context, req *domain.AnalystRequest) ([]string, error) {
	raw, err := a.completer.Generate(ctx, buildPlanPrompt(req, a.registry.Specs()))
	if err != nil {
		return nil, err
	}

	var plan []string
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &plan); err != nil {
		return nil, &ParseError{Label: "plan", Reason: err.Error()}
	}

	if len(plan) > maxPlanSteps {
		plan = plan[:maxPlanSteps]
	}

	return plan, nil
}

func (a *ModelAgent) runToolLoop(ctx context.Context, req *domain.AnalystRequest, plan []string) ([]domain.Evidence, []string, error) {
	evidence := make([]domain.Evidence, 0, maxIterations)
	summaries := make([]string, 0, maxIterations)
	calls := 0

	for iteration := 0; iteration < maxIterations; iteration++ {
		raw, err := a.completer.Generate(ctx, buildToolPrompt(req, plan, evidence, summaries, a.registry.Specs()))
		if err != nil {
			return nil, nil, err
		}

		var selection toolSelection
		if err := json.Unmarshal([]byte(stripCodeFences(raw)), &selection); err != nil {
			return nil, nil, &ParseError{Label: "tool selection", Reason: err.Error()}
		}

		if selection.Done && calls >= minToolCalls {
			break
		}

		if selection.Next == nil {
			if selection.Done {
				// Encerramento pedido cedo demais; segue coletando evidência
				continue
			}
			// Sem próxima ação e sem done: parada silenciosa
			break
		}

		result, err := a.registry.Dispatch(req.WorkspaceID, selection.Next.Name, selection.Next.Arguments)
		if err != nil {
			var unknownErr *UnknownToolError
			var invalidErr *InvalidArgumentsError
			if errors.As(err, &unknownErr) || errors.As(err, &invalidErr) {
				// Escolha inválida do modelo não derruba a execução: registra
				// no resumo da iteração e segue
				logrus.WithContext(ctx).WithFields(logrus.Fields{
					"workspace_id": req.WorkspaceID,
					"tool":         selection.Next.Name,
				}).Warnf("ferramenta ignorada no loop de análise: %v", err)
				summaries = append(summaries, "skipped: "+err.Error())
				continue
			}
			return nil, nil, err
		}

		evidence = append(evidence, newEvidence(selection.Next.Name, paramsSummary(selection.Next.Arguments), result))
		summaries = append(summaries, resultSummary(selection.Next.Name, result))
		calls++
	}

	return evidence, summaries, nil
}

func (a *ModelAgent) synthesize(ctx context.Context, req *domain.AnalystRequest, plan []string, evidence []domain.Evidence, summaries []string) (*domain.FinalResponse, error) {
	raw, err := a.completer.Generate(ctx, buildSynthesisPrompt(req, plan, evidence, summaries))
	if err != nil {
		return nil, err
	}

	doc, parseErr := ParseFinalResponse(raw)
	if parseErr == nil {
		return doc, nil
	}

	// Uma única tentativa de reparo: reapresenta o documento rejeitado com o
	// texto do erro; uma segunda falha propaga ao chamador
	repaired, err := a.completer.Generate(ctx, buildRepairPrompt(parseErr, raw, evidence))
	if err != nil {
		return nil, err
	}

	return ParseFinalResponse(repaired)
}

// paramsSummary serializa os argumentos de uma invocação para registro na
// evidência
func paramsSummary(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	serialized, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}

	return string(serialized)
}
