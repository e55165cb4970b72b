package domain

import "errors"

var (
	// ErrMissingWorkspaceID indica requisição sem o identificador do workspace
	ErrMissingWorkspaceID = errors.New("workspace_id é obrigatório")

	// ErrWorkspaceNotFound indica que o workspace não existe ou não possui dados
	ErrWorkspaceNotFound = errors.New("workspace não encontrado")
)
