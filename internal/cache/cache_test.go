package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fhuszti/vod-ms-go/internal/model"
	"github.com/redis/go-redis/v9"
)

func makeTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	// spin up in-memory Redis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	// point the real client at it
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return &Cache{client: rdb}, mr
}

func TestGetSetDelete(t *testing.T) {
	c, mr := makeTestCache(t)
	ctx := context.Background()
	key := model.PlaylistKey("intro")
	playlist := "#EXTM3U\n#EXTINF:10.0,\nhttps://cdn/intro/index0.ts?sig=1\n"

	// 1) Cache miss
	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get miss: %v", err)
	}
	if ok || got != "" {
		t.Errorf("Get miss: got (%q, %v); want (\"\", false)", got, ok)
	}

	// 2) Set + Get
	if err := c.Set(ctx, key, playlist, 45*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(key.String()); ttl != 45*time.Minute {
		t.Errorf("redis TTL = %v; want 45m", ttl)
	}
	if !mr.Exists("vod:playlist:intro") {
		t.Error("expected entry stored under the playlist namespace")
	}
	got, ok, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get hit: %v", err)
	}
	if !ok || got != playlist {
		t.Errorf("Get hit: got (%q, %v); want the stored playlist", got, ok)
	}

	// 3) Delete + miss again
	removed, err := c.Delete(ctx, key)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Error("Delete: removed = false; want true")
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("after delete, Get still hits")
	}

	// 4) Delete of an absent key reports nothing removed
	removed, err = c.Delete(ctx, key)
	if err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if removed {
		t.Error("Delete absent: removed = true; want false")
	}
}

func TestNamespacesDoNotCollide(t *testing.T) {
	c, _ := makeTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, model.PlaylistKey("raw/cat.jpg"), "playlist", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, model.ThumbnailKey("raw/cat.jpg"), "https://signed", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	p, _, _ := c.Get(ctx, model.PlaylistKey("raw/cat.jpg"))
	th, _, _ := c.Get(ctx, model.ThumbnailKey("raw/cat.jpg"))
	if p != "playlist" || th != "https://signed" {
		t.Errorf("got playlist=%q thumbnail=%q", p, th)
	}
}

func TestGet_RedisError(t *testing.T) {
	c, mr := makeTestCache(t)
	ctx := context.Background()

	// Simulate Redis unreachable
	mr.Close()

	_, ok, err := c.Get(ctx, model.PlaylistKey("intro"))
	if ok {
		t.Error("expected no hit on Redis error")
	}
	if err == nil || !strings.Contains(err.Error(), "redis get failed") {
		t.Errorf("expected redis get failed error, got %v", err)
	}
}

func TestSet_RedisError(t *testing.T) {
	c, mr := makeTestCache(t)
	mr.Close()

	err := c.Set(context.Background(), model.PlaylistKey("intro"), "x", time.Minute)
	if err == nil || !strings.Contains(err.Error(), "redis set failed") {
		t.Errorf("expected redis set failed error, got %v", err)
	}
}

func TestDelete_RedisError(t *testing.T) {
	c, mr := makeTestCache(t)

	// Simulate Redis unreachable before Delete
	mr.Close()

	_, err := c.Delete(context.Background(), model.PlaylistKey("intro"))
	if err == nil || !strings.Contains(err.Error(), "redis del failed") {
		t.Errorf("expected redis del failed error, got %v", err)
	}
}

func TestNoopCache(t *testing.T) {
	n := NewNoop()
	ctx := context.Background()
	key := model.PlaylistKey("intro")

	if err := n.Set(ctx, key, "x", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := n.Get(ctx, key); ok || err != nil {
		t.Errorf("Get = (%v, %v); want miss", ok, err)
	}
	if removed, err := n.Delete(ctx, key); removed || err != nil {
		t.Errorf("Delete = (%v, %v); want (false, nil)", removed, err)
	}
}
