package analyzing

import (
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/marketing-analyst-api/internal/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/usecases/aggregating"
)

// ToolName identifica uma ferramenta do catálogo. O despacho é feito por um
// mapa tipado de identificadores, rejeitando nomes fora do catálogo na
// fronteira com um erro tipado.
type ToolName string

const (
	ToolGetKPIs         ToolName = "get_kpis"
	ToolComparePeriods  ToolName = "compare_periods"
	ToolGetTimeSeries   ToolName = "get_timeseries"
	ToolDetectAnomalies ToolName = "detect_anomalies"
)

// ToolSpec descreve uma ferramenta para seleção estruturada pelo modelo
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type toolEntry struct {
	spec   ToolSpec
	invoke func(workspaceID string, args map[string]any) (domain.ToolResult, error)
}

// Registry é o catálogo estático de ferramentas, usado tanto pela invocação
// determinística quanto pela guiada por modelo
type Registry struct {
	aggregator aggregating.Aggregator
	entries    map[ToolName]toolEntry
}

func NewRegistry(aggregator aggregating.Aggregator) *Registry {
	r := &Registry{
		aggregator: aggregator,
		entries:    make(map[ToolName]toolEntry),
	}

	dateRangeSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start": map[string]any{"type": "string", "format": "date"},
			"end":   map[string]any{"type": "string", "format": "date"},
		},
		"required": []string{"start", "end"},
	}
	metricsSchema := map[string]any{
		"type":    "array",
		"items":   map[string]any{"type": "string"},
		"default": domain.DefaultMetrics,
	}

	r.entries[ToolGetKPIs] = toolEntry{
		spec: ToolSpec{
			Name:        string(ToolGetKPIs),
			Description: "Soma as métricas solicitadas no período e deriva o ROAS, com as 3 campanhas de maior gasto",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dateRange": dateRangeSchema,
					"metrics":   metricsSchema,
				},
				"required": []string{"dateRange"},
			},
		},
		invoke: r.invokeGetKPIs,
	}

	r.entries[ToolComparePeriods] = toolEntry{
		spec: ToolSpec{
			Name:        string(ToolComparePeriods),
			Description: "Compara as somas das métricas entre dois períodos disjuntos, com top 5 campanhas do período atual",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"currentRange":  dateRangeSchema,
					"previousRange": dateRangeSchema,
					"metrics":       metricsSchema,
				},
				"required": []string{"currentRange", "previousRange"},
			},
		},
		invoke: r.invokeComparePeriods,
	}

	r.entries[ToolGetTimeSeries] = toolEntry{
		spec: ToolSpec{
			Name:        string(ToolGetTimeSeries),
			Description: "Série temporal diária das métricas solicitadas com ROAS por ponto",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dateRange":   dateRangeSchema,
					"granularity": map[string]any{"type": "string", "enum": []string{"daily"}},
					"metrics":     metricsSchema,
				},
				"required": []string{"dateRange"},
			},
		},
		invoke: r.invokeGetTimeSeries,
	}

	r.entries[ToolDetectAnomalies] = toolEntry{
		spec: ToolSpec{
			Name:        string(ToolDetectAnomalies),
			Description: "Marca linhas cujo valor da métrica ultrapassa mean + sensitivity*stddev (somente picos)",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"dateRange":   dateRangeSchema,
					"metric":      map[string]any{"type": "string", "default": domain.MetricSpend},
					"granularity": map[string]any{"type": "string", "enum": []string{"daily"}},
					"groupBy":     map[string]any{"type": "string"},
					"sensitivity": map[string]any{"type": "number", "default": aggregating.DefaultSensitivity},
				},
				"required": []string{"dateRange"},
			},
		},
		invoke: r.invokeDetectAnomalies,
	}

	return r
}

// Specs retorna o catálogo em ordem estável para exposição ao modelo e à API
func (r *Registry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.entries))
	for _, entry := range r.entries {
		specs = append(specs, entry.spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Dispatch invoca a ferramenta pelo nome. Nome fora do catálogo é um erro
// tipado, nunca um no-op silencioso. O workspace vem sempre do chamador,
// nunca dos argumentos do modelo.
func (r *Registry) Dispatch(workspaceID string, name string, args map[string]any) (domain.ToolResult, error) {
	entry, ok := r.entries[ToolName(name)]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	if workspaceID == "" {
		return nil, &InvalidArgumentsError{Tool: name, Reason: "workspaceId é obrigatório"}
	}

	if args == nil {
		args = map[string]any{}
	}

	return entry.invoke(workspaceID, args)
}

func (r *Registry) invokeGetKPIs(workspaceID string, args map[string]any) (domain.ToolResult, error) {
	rng, err := rangeArg(args, "dateRange", string(ToolGetKPIs))
	if err != nil {
		return nil, err
	}

	return r.aggregator.GetKPISnapshot(workspaceID, rng, metricsArg(args))
}

func (r *Registry) invokeComparePeriods(workspaceID string, args map[string]any) (domain.ToolResult, error) {
	current, err := rangeArg(args, "currentRange", string(ToolComparePeriods))
	if err != nil {
		return nil, err
	}

	previous, err := rangeArg(args, "previousRange", string(ToolComparePeriods))
	if err != nil {
		return nil, err
	}

	return r.aggregator.ComparePeriods(workspaceID, current, previous, metricsArg(args))
}

func (r *Registry) invokeGetTimeSeries(workspaceID string, args map[string]any) (domain.ToolResult, error) {
	rng, err := rangeArg(args, "dateRange", string(ToolGetTimeSeries))
	if err != nil {
		return nil, err
	}

	return r.aggregator.GetTimeSeries(workspaceID, rng, stringArg(args, "granularity"), metricsArg(args))
}

func (r *Registry) invokeDetectAnomalies(workspaceID string, args map[string]any) (domain.ToolResult, error) {
	rng, err := rangeArg(args, "dateRange", string(ToolDetectAnomalies))
	if err != nil {
		return nil, err
	}

	metric := stringArg(args, "metric")
	if metric == "" {
		metric = domain.MetricSpend
	}

	sensitivity := aggregating.DefaultSensitivity
	if raw, ok := args["sensitivity"]; ok {
		if v, ok := raw.(float64); ok && v > 0 {
			sensitivity = v
		}
	}

	return r.aggregator.DetectAnomalies(
		workspaceID,
		rng,
		metric,
		stringArg(args, "granularity"),
		stringArg(args, "groupBy"),
		sensitivity,
	)
}

// rangeArg extrai e valida um período {start,end} obrigatório dos argumentos
func rangeArg(args map[string]any, key, tool string) (domain.DateRange, error) {
	raw, ok := args[key]
	if !ok {
		return domain.DateRange{}, &InvalidArgumentsError{Tool: tool, Reason: fmt.Sprintf("%s é obrigatório", key)}
	}

	rawMap, ok := raw.(map[string]any)
	if !ok {
		return domain.DateRange{}, &InvalidArgumentsError{Tool: tool, Reason: fmt.Sprintf("%s deve ser um objeto {start, end}", key)}
	}

	start, err := dateField(rawMap, "start")
	if err != nil {
		return domain.DateRange{}, &InvalidArgumentsError{Tool: tool, Reason: err.Error()}
	}

	end, err := dateField(rawMap, "end")
	if err != nil {
		return domain.DateRange{}, &InvalidArgumentsError{Tool: tool, Reason: err.Error()}
	}

	rng := domain.DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		return domain.DateRange{}, &InvalidArgumentsError{Tool: tool, Reason: err.Error()}
	}

	return rng, nil
}

func dateField(m map[string]any, key string) (time.Time, error) {
	raw, ok := m[key].(string)
	if !ok || raw == "" {
		return time.Time{}, fmt.Errorf("%s deve ser uma data YYYY-MM-DD", key)
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s inválido: %v", key, err)
	}

	return date, nil
}

func metricsArg(args map[string]any) []string {
	raw, ok := args["metrics"]
	if !ok {
		return domain.DefaultMetrics
	}

	switch v := raw.(type) {
	case []string:
		if len(v) > 0 {
			return v
		}
	case []any:
		metrics := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				metrics = append(metrics, s)
			}
		}
		if len(metrics) > 0 {
			return metrics
		}
	}

	return domain.DefaultMetrics
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
