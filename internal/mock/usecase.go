package mock

import (
	"context"
	"io"
	"strings"

	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/fhuszti/vod-ms-go/internal/port"
)

// PlaylistResolver implements port.PlaylistResolver for tests.
type PlaylistResolver struct {
	Out    string
	Err    error
	Called bool
	In     port.ResolvePlaylistInput
}

func (m *PlaylistResolver) ResolvePlaylist(ctx context.Context, in port.ResolvePlaylistInput) (string, error) {
	m.Called = true
	m.In = in
	if m.Err != nil {
		return "", m.Err
	}
	return m.Out, nil
}

// HTTPRenderer implements port.HTTPRenderer for tests.
type HTTPRenderer struct {
	Data []byte
	Etag string
	Err  error

	Called   bool
	Resolver port.PlaylistResolver
	In       port.ResolvePlaylistInput
}

func (m *HTTPRenderer) RenderPlaylist(ctx context.Context, resolver port.PlaylistResolver, in port.ResolvePlaylistInput) ([]byte, string, error) {
	m.Called = true
	m.Resolver = resolver
	m.In = in
	return m.Data, m.Etag, m.Err
}

// TranscodeRunner implements port.TranscodeRunner for tests.
type TranscodeRunner struct {
	Out    port.TranscodeOutput
	Err    error
	Called bool
	In     port.TranscodeInput
}

func (m *TranscodeRunner) RunTranscode(ctx context.Context, in port.TranscodeInput) (port.TranscodeOutput, error) {
	m.Called = true
	m.In = in
	return m.Out, m.Err
}

// ThumbnailSigner implements port.ThumbnailSigner for tests.
type ThumbnailSigner struct {
	URL         string
	Body        string
	ContentType string
	Err         error

	SignCalled  bool
	FetchCalled bool
	Asset       model.Asset
}

func (m *ThumbnailSigner) SignThumbnail(ctx context.Context, asset model.Asset) (string, error) {
	m.SignCalled = true
	m.Asset = asset
	return m.URL, m.Err
}

func (m *ThumbnailSigner) FetchThumbnail(ctx context.Context, asset model.Asset) (port.Thumbnail, error) {
	m.FetchCalled = true
	m.Asset = asset
	if m.Err != nil {
		return port.Thumbnail{}, m.Err
	}
	return port.Thumbnail{Body: io.NopCloser(strings.NewReader(m.Body)), ContentType: m.ContentType}, nil
}

// CacheInvalidator implements port.CacheInvalidator for tests.
type CacheInvalidator struct {
	Outcome port.InvalidationOutcome

	PlaylistCalled  bool
	ThumbnailCalled bool
	StreamCalled    bool
	Key             string
}

func (m *CacheInvalidator) InvalidatePlaylist(ctx context.Context, videoName string) port.InvalidationOutcome {
	m.PlaylistCalled = true
	m.Key = videoName
	return m.Outcome
}

func (m *CacheInvalidator) InvalidateThumbnail(ctx context.Context, imgPath string) port.InvalidationOutcome {
	m.ThumbnailCalled = true
	m.Key = imgPath
	return m.Outcome
}

func (m *CacheInvalidator) InvalidateStream(ctx context.Context, asset model.Asset) port.InvalidationOutcome {
	m.StreamCalled = true
	m.Key = asset.String()
	return m.Outcome
}

// StreamDeleter implements port.StreamDeleter for tests.
type StreamDeleter struct {
	Out    port.DeleteStreamOutput
	Err    error
	Called bool
	Asset  model.Asset
}

func (m *StreamDeleter) DeleteStream(ctx context.Context, asset model.Asset) (port.DeleteStreamOutput, error) {
	m.Called = true
	m.Asset = asset
	return m.Out, m.Err
}
