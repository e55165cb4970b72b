package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

const (
	metricRowsTable = "metric_rows mr"
)

// MetricRowRepository fornece as linhas de métricas somente leitura usadas
// pelas ferramentas de agregação. As implementações carregam o dataset uma
// única vez e o mantêm em memória pelo tempo de vida do processo.
type MetricRowRepository interface {
	ListByWorkspace(workspaceID string) ([]*domain.MetricRow, error)
	ListWorkspaces() ([]string, error)
}

type metricRowRepository struct {
	conn *postgres.Connection

	loadOnce sync.Once
	loadErr  error
	byWS     map[string][]*domain.MetricRow
}

func NewMetricRowRepository(conn *postgres.Connection) MetricRowRepository {
	return &metricRowRepository{
		conn: conn,
	}
}

// ListByWorkspace retorna as linhas do workspace, carregando o dataset do banco
// na primeira chamada
func (r *metricRowRepository) ListByWorkspace(workspaceID string) ([]*domain.MetricRow, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	return r.byWS[workspaceID], nil
}

// ListWorkspaces retorna os workspaces presentes no dataset em ordem estável
func (r *metricRowRepository) ListWorkspaces() ([]string, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}

	workspaces := make([]string, 0, len(r.byWS))
	for id := range r.byWS {
		workspaces = append(workspaces, id)
	}
	sort.Strings(workspaces)

	return workspaces, nil
}

func (r *metricRowRepository) ensureLoaded() error {
	r.loadOnce.Do(func() {
		r.byWS, r.loadErr = r.loadAll()
		if r.loadErr == nil {
			total := 0
			for _, rows := range r.byWS {
				total += len(rows)
			}
			logrus.WithFields(logrus.Fields{
				"workspaces": len(r.byWS),
				"rows":       total,
			}).Info("Dataset de métricas carregado do banco")
		}
	})

	return r.loadErr
}

func (r *metricRowRepository) loadAll() (map[string][]*domain.MetricRow, error) {
	query, args, err := squirrel.
		Select("mr.workspace_id, mr.date, mr.campaign, mr.platform, mr.spend, mr.revenue, mr.conversions, mr.clicks, mr.impressions").
		From(metricRowsTable).
		OrderBy("mr.workspace_id, mr.date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	byWS := make(map[string][]*domain.MetricRow)
	for rows.Next() {
		var row domain.MetricRow
		var date time.Time

		err := rows.Scan(
			&row.WorkspaceID,
			&date,
			&row.Campaign,
			&row.Platform,
			&row.Spend,
			&row.Revenue,
			&row.Conversions,
			&row.Clicks,
			&row.Impressions,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear metric row: %w", err)
		}

		row.Date = date
		byWS[row.WorkspaceID] = append(byWS[row.WorkspaceID], &row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return byWS, nil
}
