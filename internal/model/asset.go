package model

import (
	"path"
	"strings"
)

// PlaylistFile is the name of the HLS playlist written for every transcoded asset.
const PlaylistFile = "index.m3u8"

// Asset identifies a source video inside the object store.
type Asset struct {
	Bucket     string `json:"bucket"`
	ObjectPath string `json:"object_path"`
}

// VideoName is the object file name without its extension. It is the prefix
// under which the HLS output lives and the root of the playlist cache key.
//
// Two objects with the same stem in one bucket map to the same name.
func (a Asset) VideoName() string {
	return VideoName(a.ObjectPath)
}

// String returns "bucket/object_path".
func (a Asset) String() string {
	return a.Bucket + "/" + a.ObjectPath
}

// PlaylistObjectKey is the storage key of the asset playlist.
func (a Asset) PlaylistObjectKey() string {
	return PlaylistObjectKey(a.VideoName())
}

// VideoName derives the stem of an object path ("movies/intro.mp4" -> "intro").
func VideoName(objectPath string) string {
	base := path.Base(strings.TrimSuffix(objectPath, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// PlaylistObjectKey returns "{videoName}/index.m3u8".
func PlaylistObjectKey(videoName string) string {
	return videoName + "/" + PlaylistFile
}

// StreamPrefix returns the storage prefix holding every HLS file of a video.
func StreamPrefix(videoName string) string {
	return videoName + "/"
}
