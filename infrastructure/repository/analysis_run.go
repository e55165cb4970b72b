package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/database/postgres"
	"github.com/vfg2006/marketing-analyst-api/internal/domain"
)

const (
	analysisRunsTable = "analysis_runs ar"
)

// AnalysisRunRepository persiste o histórico de execuções do analista
type AnalysisRunRepository interface {
	Save(run *domain.AnalysisRun) error
	ListByWorkspace(workspaceID string, limit int) ([]*domain.AnalysisRun, error)
}

type analysisRunRepository struct {
	conn *postgres.Connection
}

func NewAnalysisRunRepository(conn *postgres.Connection) AnalysisRunRepository {
	return &analysisRunRepository{
		conn: conn,
	}
}

func (r *analysisRunRepository) Save(run *domain.AnalysisRun) error {
	responseJSON, err := json.Marshal(run.Response)
	if err != nil {
		return fmt.Errorf("erro ao serializar a resposta da análise: %w", err)
	}

	query, args, err := squirrel.
		Insert("analysis_runs").
		Columns("id", "workspace_id", "question", "status", "triggered_by", "response", "created_at").
		Values(run.ID, run.WorkspaceID, run.Question, run.Status, run.TriggeredBy, responseJSON, run.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao salvar execução de análise: %w", err)
	}

	return nil
}

func (r *analysisRunRepository) ListByWorkspace(workspaceID string, limit int) ([]*domain.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := squirrel.
		Select("ar.id, ar.workspace_id, ar.question, ar.status, ar.triggered_by, ar.response, ar.created_at").
		From(analysisRunsTable).
		Where(squirrel.Eq{"ar.workspace_id": workspaceID}).
		OrderBy("ar.created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.AnalysisRun, 0)
	for rows.Next() {
		var run domain.AnalysisRun
		var responseJSON []byte
		var createdAt time.Time

		err := rows.Scan(&run.ID, &run.WorkspaceID, &run.Question, &run.Status, &run.TriggeredBy, &responseJSON, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear execução de análise: %w", err)
		}

		if len(responseJSON) > 0 {
			if err := json.Unmarshal(responseJSON, &run.Response); err != nil {
				return nil, fmt.Errorf("erro ao desserializar a resposta da análise: %w", err)
			}
		}

		run.CreatedAt = createdAt
		runs = append(runs, &run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return runs, nil
}
