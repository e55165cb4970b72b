package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	openaidomain "github.com/vfg2006/marketing-analyst-api/infrastructure/integrator/openai/domain"
	"github.com/vfg2006/marketing-analyst-api/internal/config"
)

type Client interface {
	CreateChatCompletion(ctx context.Context, req *openaidomain.ChatCompletionRequest) (*openaidomain.ChatCompletionResponse, error)
}

type OpenAIClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateChatCompletion chama o endpoint de chat completions. Qualquer falha
// (quota, rede, payload malformado) retorna erro com mensagem descritiva;
// retry e backoff são responsabilidade do provedor, não do agente.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req *openaidomain.ChatCompletionRequest) (*openaidomain.ChatCompletionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao serializar requisição de completion")
	}

	url := fmt.Sprintf("%s/chat/completions", c.cfg.OpenAI.BaseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar requisição de completion")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.OpenAI.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao chamar o serviço de completion")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler resposta do serviço de completion")
	}

	var completion openaidomain.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, errors.Wrapf(err, "resposta inválida do serviço de completion (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		message := resp.Status
		if completion.Error != nil {
			message = completion.Error.Message
		}
		return nil, errors.Errorf("serviço de completion retornou status %d: %s", resp.StatusCode, message)
	}

	return &completion, nil
}
