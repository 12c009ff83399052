package model

// CacheNamespace separates independent families of cache entries.
type CacheNamespace string

const (
	NamespacePlaylist  CacheNamespace = "vod:playlist"
	NamespaceThumbnail CacheNamespace = "vod:thumbnail"
)

// CacheKey is a namespaced cache key. Build it with PlaylistKey or
// ThumbnailKey so entries of different namespaces can never collide.
type CacheKey struct {
	namespace CacheNamespace
	id        string
}

// PlaylistKey addresses a signed playlist.
func PlaylistKey(id string) CacheKey {
	return CacheKey{namespace: NamespacePlaylist, id: id}
}

// ThumbnailKey addresses a signed thumbnail URL.
func ThumbnailKey(id string) CacheKey {
	return CacheKey{namespace: NamespaceThumbnail, id: id}
}

func (k CacheKey) Namespace() CacheNamespace { return k.namespace }

func (k CacheKey) ID() string { return k.id }

func (k CacheKey) String() string {
	return string(k.namespace) + ":" + k.id
}
