package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Extractor pulls the answer span for question out of passage. An empty
// answer with a nil error means the model found nothing.
type Extractor interface {
	Extract(ctx context.Context, question, passage string) (string, error)
}

type extractRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type extractResponse struct {
	Answer string `json:"answer"`
}

// HTTPExtractor calls an inference server hosting the fine-tuned extractive
// QA model.
type HTTPExtractor struct {
	url        string
	httpClient *http.Client
}

func NewHTTPExtractor(url string, httpClient *http.Client) *HTTPExtractor {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPExtractor{url: url, httpClient: httpClient}
}

func (e *HTTPExtractor) Extract(ctx context.Context, question, passage string) (string, error) {
	body, err := json.Marshal(extractRequest{Question: question, Context: passage})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode extractor response: %w", err)
	}
	return strings.TrimSpace(out.Answer), nil
}
