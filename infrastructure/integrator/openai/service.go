package openai

import (
	"context"

	"github.com/pkg/errors"
	openaidomain "github.com/vfg2006/marketing-analyst-api/infrastructure/integrator/openai/domain"
	"github.com/vfg2006/marketing-analyst-api/infrastructure/integrator/openai/openaiclient"
	"github.com/vfg2006/marketing-analyst-api/internal/config"
)

// OpenAIIntegrator expõe o colaborador de text-completion para o agente:
// uma única operação que recebe um prompt e devolve o texto cru do modelo.
type OpenAIIntegrator struct {
	cfg    *config.Config
	client openaiclient.Client
}

func New(cfg *config.Config, client openaiclient.Client) *OpenAIIntegrator {
	return &OpenAIIntegrator{
		cfg:    cfg,
		client: client,
	}
}

// Generate envia o prompt como uma única mensagem de usuário e retorna o
// conteúdo da primeira escolha
func (s *OpenAIIntegrator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &openaidomain.ChatCompletionRequest{
		Model: s.cfg.OpenAI.Model,
		Messages: []openaidomain.Message{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("serviço de completion retornou resposta sem choices")
	}

	return resp.Choices[0].Message.Content, nil
}
