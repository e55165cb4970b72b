package analyzing

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/pkg/utils"
)

// maxKeyResultsPerCall limita quantos pares metric=value entram por evidência
const maxKeyResultsPerCall = 4

// newEvidence monta a entrada de evidência de uma invocação bem-sucedida.
// Imutável após a criação; as entradas são acumuladas em ordem de invocação.
func newEvidence(tool string, paramsSummary string, result domain.ToolResult) domain.Evidence {
	id, err := utils.GenerateID()
	if err != nil {
		id = tool
	}

	return domain.Evidence{
		ID:            id,
		Tool:          tool,
		ParamsSummary: paramsSummary,
		KeyResults:    keyResults(result),
	}
}

// keyResults achata os pares métrica→valor do resultado em strings
// "metric=<name> value=<value>", em ordem estável, limitado a 4 por chamada.
// Procura primeiro o mapa "metrics", depois "current", depois escalares do
// nível superior (mean, threshold etc.).
func keyResults(result domain.ToolResult) []string {
	pairs := make(map[string]float64)

	collect := func(raw any) {
		switch m := raw.(type) {
		case map[string]float64:
			for name, value := range m {
				pairs[name] = value
			}
		case map[string]any:
			for name, value := range m {
				if v, ok := value.(float64); ok {
					pairs[name] = v
				}
			}
		}
	}

	if nested, ok := result["metrics"]; ok {
		collect(nested)
	} else if nested, ok := result["current"]; ok {
		collect(nested)
	}

	for name, raw := range result {
		if name == "metrics" || name == "current" || name == "previous" {
			continue
		}
		if v, ok := raw.(float64); ok {
			pairs[name] = v
		}
	}

	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > maxKeyResultsPerCall {
		names = names[:maxKeyResultsPerCall]
	}

	results := make([]string, 0, len(names))
	for _, name := range names {
		results = append(results, fmt.Sprintf("metric=%s value=%s", name, strconv.FormatFloat(pairs[name], 'f', -1, 64)))
	}

	return results
}

// resultSummary produz o resumo compacto de um resultado para os prompts do
// loop: as 3 primeiras chaves em ordem estável, com valores stringificados
func resultSummary(tool string, result domain.ToolResult) string {
	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) > 3 {
		keys = keys[:3]
	}

	summary := tool + ":"
	for _, key := range keys {
		summary += fmt.Sprintf(" %s=%v", key, result[key])
	}

	return summary
}
