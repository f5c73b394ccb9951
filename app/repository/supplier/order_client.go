package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"stock-reorder-service/app/domain"
	"time"
)

const (
	APIKeyHeader = "x-api-key"

	maxResponseBody = 1 << 20
)

type orderClient struct {
	httpClient *http.Client
}

func NewOrderClient(timeout time.Duration) domain.OrderClient {
	return &orderClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *orderClient) Submit(ctx context.Context, req domain.OrderRequest, endpoint, apiKey string) (*domain.OrderResponse, error) {
	if endpoint == "" || apiKey == "" {
		slog.ErrorContext(ctx, "[orderClient] Submit", "error_class", "ConfigurationError", "error", "supplier endpoint or api key missing")
		return nil, fmt.Errorf("%w: supplier endpoint or api key missing", domain.ErrConfiguration)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		slog.ErrorContext(ctx, "[orderClient] Submit", "error_class", "ConfigurationError", "newRequest", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(APIKeyHeader, apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.ErrorContext(ctx, "[orderClient] Submit error calling supplier API",
			"error_class", "TransportFailure",
			"error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		slog.ErrorContext(ctx, "[orderClient] Submit error reading supplier response",
			"error_class", "TransportFailure",
			"status", resp.StatusCode,
			"error", err)
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrTransportFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.ErrorContext(ctx, "[orderClient] Submit error from supplier API",
			"error_class", "RemoteRejection",
			"status", resp.StatusCode,
			"body", string(respBody))
		return nil, &domain.RemoteRejectionError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var orderResp domain.OrderResponse
	if err := json.Unmarshal(respBody, &orderResp); err != nil {
		slog.ErrorContext(ctx, "[orderClient] Submit undecodable supplier response",
			"error_class", "RemoteRejection",
			"status", resp.StatusCode,
			"body", string(respBody))
		return nil, &domain.RemoteRejectionError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	slog.InfoContext(ctx, "[orderClient] Submit supplier API response",
		"status", resp.StatusCode,
		"response", orderResp)
	return &orderResp, nil
}
