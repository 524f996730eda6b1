package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"stint/internal/modules/webhook/domain"
)

// HTTPSender posts delivery requests. Any 2xx response counts as success;
// everything else, including transport errors, maps to a recorded failure
// rather than a returned error.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender() *HTTPSender {
	// Per-request timeouts come from the webhook configuration, so the
	// client itself carries none.
	return &HTTPSender{client: &http.Client{}}
}

func (s *HTTPSender) Send(ctx context.Context, req domain.DeliveryRequest) domain.DeliveryResult {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return domain.DeliveryResult{Status: domain.StatusFailed, Error: fmt.Sprintf("build request: %v", err)}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.DeliveryResult{
				Status: domain.StatusTimeout,
				Error:  fmt.Sprintf("request timeout after %s", req.Timeout),
			}
		}
		return domain.DeliveryResult{Status: domain.StatusFailed, Error: err.Error()}
	}
	defer resp.Body.Close()
	// Drain a bounded amount so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return domain.DeliveryResult{Status: domain.StatusSuccess, StatusCode: resp.StatusCode}
	}
	return domain.DeliveryResult{
		Status:     domain.StatusFailed,
		StatusCode: resp.StatusCode,
		Error:      fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
}
