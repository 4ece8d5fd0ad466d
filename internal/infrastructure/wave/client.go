package wave

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"atlas-core-wave-layer/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wave_upstream_requests_total",
		Help: "Total GraphQL calls to the Wave API, labeled by outcome",
	}, []string{"outcome"})

	upstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wave_upstream_request_duration_seconds",
		Help:    "Latency distribution of Wave API calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// Client issues GraphQL operations against one fixed Wave endpoint. It holds
// no per-request state and is safe for concurrent use.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Wave client adapter.
func NewClient(url, token string, timeout time.Duration, logger zerolog.Logger) ports.GraphQLExecutor {
	return &Client{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute sends exactly one POST carrying the operation and decodes the data
// payload into out. Classification order: transport failure, GraphQL errors
// list, missing data, success. No retries.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	timer := prometheus.NewTimer(upstreamRequestDuration)
	resp, err := c.httpClient.Do(req)
	timer.ObserveDuration()
	if err != nil {
		upstreamRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Msg("Wave request failed")
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		upstreamRequestsTotal.WithLabelValues("network_error").Inc()
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamRequestsTotal.WithLabelValues("http_error").Inc()
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("Wave returned non-2xx status")
		return &TransportError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(respBody),
		}
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		upstreamRequestsTotal.WithLabelValues("decode_error").Inc()
		return &TransportError{Err: err}
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		upstreamRequestsTotal.WithLabelValues("graphql_error").Inc()
		c.logger.Error().Strs("errors", messages).Msg("Wave returned GraphQL errors")
		return &GraphQLError{Messages: messages}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		upstreamRequestsTotal.WithLabelValues("protocol_error").Inc()
		return ErrMissingData
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		upstreamRequestsTotal.WithLabelValues("decode_error").Inc()
		return &TransportError{Err: err}
	}

	upstreamRequestsTotal.WithLabelValues("success").Inc()
	return nil
}
