// Package results forwards smoke test results to an external
// collector.
package results

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/raido/smoketest"
	"github.com/segmentio/encoding/json"
)

type Handler struct {
	Endpoint   string
	ResultChan chan smoketest.SmokeTestResults //buffered
	Transport  http.RoundTripper
}

// HandleResults starts a worker that drains the result channel and
// posts each result to the collector endpoint. The worker stops when
// the context is cancelled.
func (h Handler) HandleResults(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case res := <-h.ResultChan:
				h.forward(ctx, res)
			}
		}
	}()
}

func (h Handler) forward(ctx context.Context, res smoketest.SmokeTestResults) {
	start := time.Now()

	if err := h.post(ctx, res); err != nil {
		instrumentResultSendError(h.Endpoint, err)
		logs.Warn(errors.New("forwarding smoke test result failed").
			WithTag("collector_endpoint", h.Endpoint).
			WithTag("to_endpoint", res.ToEndpoint).
			WithTag("status", res.Status).
			Wrap(err))
		return
	}

	instrumentResultSend(h.Endpoint)
	instrumentResultLatency(h.Endpoint, start)
}

func (h Handler) post(ctx context.Context, res smoketest.SmokeTestResults) error {
	body, err := json.Marshal(res)
	if err != nil {
		return errors.New("encoding smoke test result failed").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.New("creating collector request failed").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := http.Client{Transport: h.Transport}
	httpRes, err := client.Do(req)
	if err != nil {
		return errors.New("posting smoke test result failed").Wrap(err)
	}
	defer httpRes.Body.Close()

	if httpRes.StatusCode >= http.StatusMultipleChoices {
		return errors.New("collector replied with an unexpected status").
			WithTag("status_code", httpRes.StatusCode)
	}
	return nil
}
