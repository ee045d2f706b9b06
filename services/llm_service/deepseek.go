package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"
)

// DeepSeekService talks to the DeepSeek chat-completions endpoint, which is
// wire-compatible with the OpenAI chat API.
type DeepSeekService struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewDeepSeekService(apiURL, apiKey, model string, logger *slog.Logger) *DeepSeekService {
	return &DeepSeekService{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
	}
}

func (s *DeepSeekService) CallChat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY is not configured")
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":       s.model,
		"messages":    messages,
		"temperature": temperature,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rawBody, providerErr := extractProviderErrorDetails(resp)
		httpErr := &ProviderHTTPError{
			StatusCode: resp.StatusCode,
			RawBody:    rawBody,
		}

		if providerErr != nil {
			httpErr.Message = providerErr.Error.Message
			httpErr.ErrorType = providerErr.Error.Type
		} else {
			httpErr.Message = "Unknown error"
			httpErr.ErrorType = "unknown"
		}

		s.logger.Error("DeepSeek API error",
			slog.Int("status_code", httpErr.StatusCode),
			slog.String("error_type", httpErr.ErrorType),
			slog.String("error_message", httpErr.Message),
			slog.String("model", s.model))

		return "", httpErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format from DeepSeek API: no choices")
	}

	return result.Choices[0].Message.Content, nil
}
