package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fhuszti/vod-ms-go/internal/logger"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// APIKeyHeader carries the shared secret between the VOD and transcode services.
const APIKeyHeader = "x-api-key"

// HTTPSubmitter posts transcode jobs to a transcode service endpoint and
// waits for its answer.
type HTTPSubmitter struct {
	url    string
	apiKey string
	client *http.Client
}

// compile-time check: *HTTPSubmitter must satisfy port.TranscodeSubmitter
var _ port.TranscodeSubmitter = (*HTTPSubmitter)(nil)

func NewHTTPSubmitter(url, apiKey string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSubmitter{url: url, apiKey: apiKey, client: client}
}

func (s *HTTPSubmitter) SubmitTranscode(ctx context.Context, in port.TranscodeInput) error {
	body, err := json.Marshal(payloadFromInput(in))
	if err != nil {
		return fmt.Errorf("could not marshal transcode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, s.apiKey)

	logger.Infof(ctx, "requesting transcode of %s/%s from %s", in.Bucket, in.Object, s.url)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("transcode request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("transcode service answered %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
