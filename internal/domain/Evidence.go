package domain

// Evidence registra uma invocação de ferramenta bem-sucedida durante uma execução
// do analista. Imutável após a criação; as entradas são acumuladas em ordem estrita
// de invocação dentro de uma mesma execução.
type Evidence struct {
	ID            string   `json:"id"`
	Tool          string   `json:"tool"`
	ParamsSummary string   `json:"params_summary"`
	KeyResults    []string `json:"key_results"`
}
