package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alturino/eats/internal/config"
	"github.com/Alturino/eats/internal/constants"
	inErrors "github.com/Alturino/eats/internal/errors"
	"github.com/Alturino/eats/internal/log"
	"github.com/Alturino/eats/internal/metric"
)

const (
	PathRestaurant      = "/api/restaurant/%s"
	PathSearch          = "/api/restaurant/search/%s"
	PathCheckoutSession = "/api/order/checkout/create-checkout-session"
)

// Client talks JSON to the upstream restaurant API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.Upstream) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
	}
}

// StatusError is returned for non 2xx upstream responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned statusCode=%d with message=%s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return inErrors.ErrUpstream
}

func (cl *Client) do(
	c context.Context,
	operation string,
	method string,
	path string,
	query url.Values,
	body interface{},
	out interface{},
) (err error) {
	start := time.Now()
	defer func() {
		outcome := metric.OutcomeSuccess
		if err != nil {
			outcome = metric.OutcomeFailed
		}
		metric.UpstreamRequests.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	}()

	u := cl.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "upstream Client do").
		Str(log.KeyUpstreamURL, u).
		Str(log.KeyRequestMethod, method).
		Logger()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed marshaling request body with error=%w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(c, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed creating request with error=%w", err)
	}
	if body != nil {
		req.Header.Set(constants.HeaderContentType, constants.ValueJson)
	}
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(constants.HeaderRequestID, requestID)
	}

	logger.Trace().Msg("sending upstream request")
	resp, err := cl.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed sending request with error=%w: %w", inErrors.ErrUpstream, err)
	}
	defer resp.Body.Close()
	logger = logger.With().Int(log.KeyStatusCode, resp.StatusCode).Logger()
	logger.Trace().Msg("received upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&respBody)
		message, _ := respBody["message"].(string)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed decoding response body with error=%w: %w", inErrors.ErrUpstream, err)
	}
	return nil
}

func newBreaker[T any](name string, cfg config.Breaker) *gobreaker.CircuitBreaker[T] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// a 4xx is an answer, not an outage
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil
		},
	})
}
