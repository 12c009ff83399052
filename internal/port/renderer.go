package port

import "context"

// HTTPRenderer turns a resolved playlist into a response body plus ETag.
type HTTPRenderer interface {
	RenderPlaylist(ctx context.Context, resolver PlaylistResolver, in ResolvePlaylistInput) ([]byte, string, error)
}
