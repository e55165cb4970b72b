package analyzing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

func TestBindEvidenceComMetricasSustentadas(t *testing.T) {
	doc := validDocument()

	bound := BindEvidence(doc)

	assert.Equal(t, domain.StatusOK, bound.Status)
	assert.Len(t, bound.Findings, 1)
}

func TestBindEvidenceNaoMutaODocumentoOriginal(t *testing.T) {
	doc := validDocument()
	doc.Findings[0].SupportingMetrics = []string{"ctr"}

	bound := BindEvidence(doc)

	// O original permanece intacto; só a cópia é rebaixada
	assert.Equal(t, domain.StatusOK, doc.Status)
	assert.Len(t, doc.Findings, 1)
	assert.Equal(t, domain.StatusInsufficientData, bound.Status)
}

func TestBindEvidenceRebaixaMetricaSemEvidencia(t *testing.T) {
	doc := validDocument()
	doc.Findings[0].SupportingMetrics = []string{"ctr"}

	bound := BindEvidence(doc)

	assert.Equal(t, domain.StatusInsufficientData, bound.Status)
	require.Len(t, bound.Findings, 2)

	synthetic := bound.Findings[1]
	assert.Equal(t, "Evidence binding failed", synthetic.Title)
	assert.Contains(t, synthetic.SupportingMetrics, "ctr")
}

func TestBindEvidenceComparaMetricasSemDiferenciarCaixa(t *testing.T) {
	doc := validDocument()
	doc.Findings[0].SupportingMetrics = []string{"REVENUE"}

	bound := BindEvidence(doc)

	assert.Equal(t, domain.StatusOK, bound.Status)
}

func TestBindEvidenceUsaPlaceholderQuandoFaltamMetricas(t *testing.T) {
	doc := validDocument()
	doc.Actions[0].SupportingMetrics = nil

	bound := BindEvidence(doc)

	require.Len(t, bound.Findings, 2)
	synthetic := bound.Findings[1]
	assert.Equal(t, []string{"evidence_binding"}, synthetic.SupportingMetrics)
	assert.Contains(t, synthetic.Detail, doc.Actions[0].Action)
}

func TestBindEvidenceEhIdempotente(t *testing.T) {
	doc := validDocument()
	doc.Findings[0].SupportingMetrics = []string{"ctr"}

	once := BindEvidence(doc)
	twice := BindEvidence(once)

	assert.Equal(t, once, twice)
	// O finding sintético não é duplicado na segunda passada
	require.Len(t, twice.Findings, 2)
}
