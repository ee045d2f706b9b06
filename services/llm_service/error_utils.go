package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ProviderError represents the error structure returned by OpenAI-compatible APIs
type ProviderError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

type ProviderHTTPError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("provider API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// extractProviderErrorDetails extracts error information from provider API responses
func extractProviderErrorDetails(resp *http.Response) (string, *ProviderError) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	// Try to parse as the OpenAI-compatible error format
	var providerErr ProviderError
	if err := json.Unmarshal(body, &providerErr); err == nil && providerErr.Error.Message != "" {
		return string(body), &providerErr
	}

	return string(body), nil
}
