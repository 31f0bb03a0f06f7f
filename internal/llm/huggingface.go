package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/urlsum/internal/util"
)

const (
	defaultHuggingFaceBaseURL = "https://router.huggingface.co/hf-inference/models"

	// DefaultHuggingFaceModel is the default checkpoint of the transformers summarization pipeline
	DefaultHuggingFaceModel = "sshleifer/distilbart-cnn-12-6"
)

// HuggingFaceProvider runs a pretrained summarization model through the HF Inference API
type HuggingFaceProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Hugging Face summarization task structures
type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength int  `json:"max_length,omitempty"`
	DoSample  bool `json:"do_sample"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewHuggingFaceProvider creates a new Hugging Face provider.
// The API key is optional for self-hosted inference endpoints.
func NewHuggingFaceProvider(config Config) (*HuggingFaceProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second // First call may wait for the model to load
	}

	return &HuggingFaceProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: util.NewHTTPClient(timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

// IsAvailable runs a tiny summarization to check the model is loaded and reachable
func (p *HuggingFaceProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.makeRequest(ctx, resolveModel(SummarizeRequest{}, p.config, DefaultHuggingFaceModel), hfRequest{
		Inputs:     "The quick brown fox jumps over the lazy dog.",
		Parameters: hfParameters{MaxLength: 16},
	})
	return err == nil
}

// Summarize runs the summarization task and returns the first generated summary
func (p *HuggingFaceProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	model := resolveModel(req, p.config, DefaultHuggingFaceModel)

	summaries, err := p.makeRequest(ctx, model, hfRequest{
		Inputs: req.Text,
		Parameters: hfParameters{
			MaxLength: resolveMaxTokens(req, p.config),
			DoSample:  false, // Greedy decoding keeps output deterministic
		},
	})
	if err != nil {
		return nil, err
	}

	if len(summaries) == 0 {
		return nil, ErrNoSummary
	}

	summary := strings.TrimSpace(summaries[0].SummaryText)
	if summary == "" {
		return nil, ErrNoSummary
	}

	return &SummarizeResponse{
		Summary:    summary,
		Model:      model,
		TokensUsed: EstimateTokens(req.Text) + EstimateTokens(summary),
	}, nil
}

// makeRequest posts a summarization task and classifies failures
func (p *HuggingFaceProvider) makeRequest(ctx context.Context, model string, apiReq hfRequest) ([]hfSummary, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", p.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %w", ErrModelUnavailable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		detail := string(respBody)
		var apiErr hfError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			detail = apiErr.Error
		}

		switch {
		case looksTooLong(detail):
			return nil, fmt.Errorf("%w: %w", ErrInputTooLong, apiError("Hugging Face", httpResp.StatusCode, detail))
		case httpResp.StatusCode == http.StatusServiceUnavailable && apiErr.EstimatedTime > 0:
			return nil, fmt.Errorf("%w: model %s is loading (estimated %.0fs)", ErrModelUnavailable, model, apiErr.EstimatedTime)
		case httpResp.StatusCode == http.StatusNotFound,
			httpResp.StatusCode == http.StatusUnauthorized,
			httpResp.StatusCode == http.StatusForbidden,
			httpResp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, apiError("Hugging Face", httpResp.StatusCode, detail))
		default:
			return nil, apiError("Hugging Face", httpResp.StatusCode, detail)
		}
	}

	var summaries []hfSummary
	if err := json.Unmarshal(respBody, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return summaries, nil
}
