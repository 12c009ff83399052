// Package playlist reads and rewrites HLS media playlists line by line.
package playlist

import (
	"fmt"
	"strings"
)

// ContentType is the MIME type of an HLS playlist.
const ContentType = "application/vnd.apple.mpegurl"

// SegmentExtensions are the file extensions treated as media segments.
var SegmentExtensions = []string{".ts", ".m4s"}

// IsSegment reports whether a playlist line references a media segment.
// Directives, comments and blank lines are not segments.
func IsSegment(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return false
	}
	for _, ext := range SegmentExtensions {
		if strings.HasSuffix(s, ext) {
			return true
		}
	}
	return false
}

// Segments returns the segment names referenced by a playlist, in order.
func Segments(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if IsSegment(line) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// Rewrite replaces every segment line of raw with the value returned by fn
// for that segment. All other lines, their order and the line separators are
// kept as they are. The first error returned by fn aborts the rewrite.
func Rewrite(raw string, fn func(segment string) (string, error)) (string, error) {
	lines := strings.Split(raw, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		if !IsSegment(line) {
			out[i] = line
			continue
		}
		segment := strings.TrimSpace(line)
		replaced, err := fn(segment)
		if err != nil {
			return "", fmt.Errorf("segment %q: %w", segment, err)
		}
		if strings.HasSuffix(line, "\r") {
			replaced += "\r"
		}
		out[i] = replaced
	}
	return strings.Join(out, "\n"), nil
}
