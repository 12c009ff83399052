package renderer

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/fhuszti/vod-ms-go/internal/port"
)

type httpRenderer struct{}

// compile-time check: *httpRenderer must satisfy port.HTTPRenderer
var _ port.HTTPRenderer = (*httpRenderer)(nil)

// NewHTTPRenderer creates a new HTTPRenderer implementation.
func NewHTTPRenderer() port.HTTPRenderer {
	return &httpRenderer{}
}

// RenderPlaylist resolves the playlist and returns it with a quoted ETag
// derived from its content. Identical cached bytes yield identical ETags.
func (r *httpRenderer) RenderPlaylist(ctx context.Context, resolver port.PlaylistResolver, in port.ResolvePlaylistInput) ([]byte, string, error) {
	out, err := resolver.ResolvePlaylist(ctx, in)
	if err != nil {
		return nil, "", err
	}

	raw := []byte(out)
	return raw, ETag(raw), nil
}

func ETag(raw []byte) string {
	return fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(raw))
}
