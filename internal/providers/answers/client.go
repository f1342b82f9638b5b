package answers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wingman/internal/domain"
)

// Client requests short/long answer pairs from the generation service.
//
// The two answer fields fall back independently: a response carrying only one
// of them still yields that one verbatim, with the other replaced by its
// fallback string. The error return reports what the service actually failed
// to deliver.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Pointers distinguish absent fields from present-but-empty ones; both count
// as missing.
type generateResponse struct {
	ShortAnswer *string `json:"short_answer"`
	LongAnswer  *string `json:"long_answer"`
}

// Generate issues one generation request. One attempt per invocation; no
// retry. Both returned fields are always renderable.
func (c *Client) Generate(ctx context.Context, request domain.AnswerRequest) (domain.Answers, error) {
	fallback := domain.Answers{Short: domain.FallbackShortAnswer, Long: domain.FallbackLongAnswer}

	body, err := json.Marshal(request)
	if err != nil {
		return fallback, fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate_answer", bytes.NewReader(body))
	if err != nil {
		return fallback, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fallback, fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fallback, fmt.Errorf("generation service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fallback, fmt.Errorf("parse generate response: %w", err)
	}

	result := domain.Answers{}
	var missing []error

	if parsed.ShortAnswer != nil && strings.TrimSpace(*parsed.ShortAnswer) != "" {
		result.Short = *parsed.ShortAnswer
	} else {
		result.Short = domain.FallbackShortAnswer
		missing = append(missing, errors.New("generation service returned no short answer"))
	}

	if parsed.LongAnswer != nil && strings.TrimSpace(*parsed.LongAnswer) != "" {
		result.Long = *parsed.LongAnswer
	} else {
		result.Long = domain.FallbackLongAnswer
		missing = append(missing, errors.New("generation service returned no long answer"))
	}

	return result, errors.Join(missing...)
}
