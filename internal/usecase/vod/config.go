package vod

import "time"

// Config holds the settings shared by the VOD use cases.
type Config struct {
	// VODBucket holds the transcoded HLS output of every asset.
	VODBucket string
	// CacheTTL is the lifetime of cached playlists and thumbnail URLs. It must
	// stay below SignedURLTTL so a cached entry never outlives its signatures.
	CacheTTL     time.Duration
	SignedURLTTL time.Duration
	// WorkDir is the parent of the temporary transcode workspaces.
	WorkDir string
}
