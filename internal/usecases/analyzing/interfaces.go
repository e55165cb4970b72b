package analyzing

import (
	"context"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

// Analyst produz uma FinalResponse validada e com evidências vinculadas para
// uma pergunta sobre um workspace
type Analyst interface {
	// Analyze executa a variante guiada por modelo quando disponível, com
	// fallback para a variante determinística em caso de erro do agente
	Analyze(ctx context.Context, req *domain.AnalystRequest) (*domain.FinalResponse, error)
}

// Completer é o colaborador de text-completion consumido pelo agente.
// A saída pode vir envolvida em cercas de código Markdown; qualquer falha
// (quota, rede, payload malformado) chega como erro com mensagem descritiva.
type Completer interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
