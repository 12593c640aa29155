// Package gateway is the client's only network boundary. Every call attaches
// the right credential, normalizes failures into the pkg/apierrors taxonomy,
// and validates the response shape; callers never see a raw transport error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"scanview/internal/platform/metrics"
	"scanview/internal/session"
	"scanview/pkg/apierrors"
)

// Client talks to the diagnostic backend. It reads the session store for
// credentials and clears it on authentication failures, but never writes the
// durable session record itself.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New builds a gateway client for the given base address. No request timeout
// is imposed beyond the transport's own; callers bound calls with contexts.
func New(baseURL string, sessions *session.Store, logger *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		sessions: sessions,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("scanview/gateway"),
	}
}

// call performs one backend request and decodes the 2xx body into out.
// contentType is set only when the body framing is fixed by the caller;
// multipart requests arrive with their own negotiated header.
func (c *Client) call(ctx context.Context, operation, method, path string, body io.Reader, contentType string, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway."+operation,
		trace.WithAttributes(attribute.String("http.method", method), attribute.String("http.path", path)))
	defer span.End()

	c.metrics.ObserveRequest(operation)
	err := c.doCall(ctx, method, path, body, contentType, out)
	if err != nil {
		kind := string(apierrors.KindOf(err))
		c.metrics.ObserveError(operation, kind)
		c.logger.WarnContext(ctx, "gateway call failed",
			"operation", operation,
			"kind", kind,
			"error", err,
		)
		span.SetStatus(codes.Error, apierrors.MessageOf(err))
		return err
	}

	c.logger.DebugContext(ctx, "gateway call succeeded", "operation", operation)
	return nil
}

func (c *Client) doCall(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apierrors.Wrap(err, apierrors.KindValidation, "could not build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Attach the credential iff a session exists; never an empty token.
	if sess := c.sessions.Current(); sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apierrors.Wrap(err, apierrors.KindTransport, "could not reach the diagnostic service")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apierrors.Wrap(err, apierrors.KindTransport, "connection lost while reading response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// The session is gone as far as the backend is concerned. Clear it
		// before surfacing the error so the route guard sees logged-out
		// state on the very next evaluation.
		if clearErr := c.sessions.Clear(); clearErr != nil {
			c.logger.WarnContext(ctx, "could not clear session after auth failure", "error", clearErr)
		}
		return apierrors.New(apierrors.KindAuthentication, errorMessage(raw, "authentication failed"))

	case resp.StatusCode == http.StatusForbidden:
		// Valid token, disallowed operation. The session stays.
		return apierrors.New(apierrors.KindAuthorization, errorMessage(raw, "operation not allowed"))

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if msg, ok := structuredError(raw); ok {
			return apierrors.New(apierrors.KindBackendDomain, msg)
		}
		return apierrors.New(apierrors.KindMalformedResponse, "the diagnostic service returned an unreadable error")

	case out == nil:
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apierrors.Wrap(err, apierrors.KindMalformedResponse, "the diagnostic service returned an unreadable response")
	}
	return nil
}

// structuredError extracts the backend's `error`/`message` field from a
// failure body.
func structuredError(raw []byte) (string, bool) {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false
	}
	if body.Error != "" {
		return body.Error, true
	}
	if body.Message != "" {
		return body.Message, true
	}
	return "", false
}

func errorMessage(raw []byte, fallback string) string {
	if msg, ok := structuredError(raw); ok {
		return msg
	}
	return fallback
}

func jsonBody(payload any) (io.Reader, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apierrors.Wrap(err, apierrors.KindValidation, "could not encode request")
	}
	return bytes.NewReader(raw), nil
}
