package domain

// ToolResult é a saída de qualquer ferramenta de agregação: um mapa plano de
// nome de métrica para valor numérico, normalmente aninhado sob "metrics",
// mais arrays auxiliares específicos de cada ferramenta.
type ToolResult map[string]any

// CampaignContribution é uma entrada do breakdown de contribuição por campanha,
// agrupada pelo par (campanha, plataforma)
type CampaignContribution struct {
	Campaign    string  `json:"campaign"`
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Conversions float64 `json:"conversions"`
}

// TimeSeriesPoint é um ponto da série temporal agregada por data
type TimeSeriesPoint struct {
	Date    string             `json:"date"`
	Metrics map[string]float64 `json:"metrics"`
}

// AnomalyRecord descreve uma linha cujo valor ultrapassou o limiar de anomalia
type AnomalyRecord struct {
	Date      string  `json:"date"`
	Campaign  string  `json:"campaign"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}
