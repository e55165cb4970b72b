// Package dataset fornece uma origem de métricas baseada em arquivo estático,
// usada quando o banco de dados está desabilitado (desenvolvimento e testes).
package dataset

import (
	"fmt"
	"os"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/repository"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// metricRowRecord é a forma da linha no arquivo JSON, com a data como string
type metricRowRecord struct {
	WorkspaceID string  `json:"workspace_id"`
	Date        string  `json:"date"`
	Campaign    string  `json:"campaign"`
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Conversions float64 `json:"conversions"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
}

// FileMetricSource implementa repository.MetricRowRepository sobre um arquivo
// JSON carregado uma única vez e tratado como somente leitura.
type FileMetricSource struct {
	byWS map[string][]*domain.MetricRow
}

var _ repository.MetricRowRepository = (*FileMetricSource)(nil)

// Load lê o dataset do caminho informado
func Load(path string) (*FileMetricSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler o dataset %s: %w", path, err)
	}

	var records []metricRowRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("erro ao desserializar o dataset %s: %w", path, err)
	}

	byWS := make(map[string][]*domain.MetricRow)
	for i, record := range records {
		date, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			return nil, fmt.Errorf("data inválida na linha %d do dataset: %w", i, err)
		}

		row := &domain.MetricRow{
			WorkspaceID: record.WorkspaceID,
			Date:        date,
			Campaign:    record.Campaign,
			Platform:    record.Platform,
			Spend:       record.Spend,
			Revenue:     record.Revenue,
			Conversions: record.Conversions,
			Clicks:      record.Clicks,
			Impressions: record.Impressions,
		}
		byWS[row.WorkspaceID] = append(byWS[row.WorkspaceID], row)
	}

	logrus.WithFields(logrus.Fields{
		"path":       path,
		"rows":       len(records),
		"workspaces": len(byWS),
	}).Info("Dataset de métricas carregado do arquivo")

	return &FileMetricSource{byWS: byWS}, nil
}

// NewFromRows monta uma origem em memória a partir de linhas já construídas
func NewFromRows(rows []*domain.MetricRow) *FileMetricSource {
	byWS := make(map[string][]*domain.MetricRow)
	for _, row := range rows {
		byWS[row.WorkspaceID] = append(byWS[row.WorkspaceID], row)
	}
	return &FileMetricSource{byWS: byWS}
}

func (s *FileMetricSource) ListByWorkspace(workspaceID string) ([]*domain.MetricRow, error) {
	return s.byWS[workspaceID], nil
}

func (s *FileMetricSource) ListWorkspaces() ([]string, error) {
	workspaces := make([]string, 0, len(s.byWS))
	for id := range s.byWS {
		workspaces = append(workspaces, id)
	}
	sort.Strings(workspaces)

	return workspaces, nil
}
