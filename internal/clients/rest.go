// Package clients implements the gateway interfaces over HTTP. Every client
// speaks JSON, forwards the caller's Authorization header and trace context,
// and turns non-2xx answers into *gateway.UpstreamError.
package clients

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

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/navikt/bidrag-dokument-arkiv/internal/auth"
	"github.com/navikt/bidrag-dokument-arkiv/internal/gateway"
)

// HeaderCallID is the correlation header understood by the upstream systems.
const HeaderCallID = "Nav-Call-Id"

const maxReasonLen = 500

type restClient struct {
	system  string
	baseURL string
	http    *http.Client
}

func newRestClient(system, baseURL string, timeout time.Duration) restClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return restClient{
		system:  system,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body (when non-nil) as JSON and decodes a 2xx answer into out
// (when non-nil).
func (c restClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := otel.Tracer("clients/"+c.system).Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("peer.service", c.system),
		),
	)
	defer span.End()

	err := c.send(ctx, method, path, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c restClient) send(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", c.system, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.system, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := auth.Token(ctx); tok != "" {
		req.Header.Set("Authorization", tok)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		req.Header.Set(HeaderCallID, sc.TraceID().String())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", c.system, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		uerr := &gateway.UpstreamError{System: c.system, Status: resp.StatusCode, Reason: reason(resp)}
		zerolog.Ctx(ctx).Warn().
			Str("system", c.system).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("reason", uerr.Reason).
			Msg("upstream answered with error")
		return uerr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", c.system, err)
	}
	return nil
}

// reason prefers the Warning header, then a short body.
func reason(resp *http.Response) string {
	if w := strings.TrimSpace(resp.Header.Get("Warning")); w != "" {
		return w
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxReasonLen))
	return strings.TrimSpace(string(b))
}
