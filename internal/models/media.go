package models

import (
	"strings"
	"time"
)

const (
	MediaImage = "image"
	MediaVideo = "video"
)

// DisplayTimeLayout renders as DD/MM/YYYY HH:MM.
const DisplayTimeLayout = "02/01/2006 15:04"

// DisplayZone is the fixed UTC+7 zone post timestamps are shown in.
var DisplayZone = time.FixedZone("UTC+7", 7*60*60)

var allowedExtensions = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {},
	"mp4": {}, "mov": {}, "avi": {}, "webm": {}, "mkv": {},
}

var videoExtensions = map[string]struct{}{
	"mp4": {}, "mov": {}, "avi": {}, "webm": {}, "mkv": {},
}

// MediaItem is one attachment of a post, ready for rendering.
type MediaItem struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Extension returns the lowercased text after the last dot, or the whole
// name lowercased when there is no dot.
func Extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return strings.ToLower(name)
}

// AllowedFile reports whether an uploaded file name carries an accepted extension.
func AllowedFile(filename string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// MediaType classifies a stored path as video or image. Unknown extensions are images.
func MediaType(path string) string {
	if _, ok := videoExtensions[Extension(path)]; ok {
		return MediaVideo
	}
	return MediaImage
}

// ParseMedia splits a stored media list into classified items, skipping blanks.
func ParseMedia(mediaList string) []MediaItem {
	items := []MediaItem{}
	for _, p := range strings.Split(mediaList, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		items = append(items, MediaItem{Path: p, Type: MediaType(p)})
	}
	return items
}

// JoinMedia builds the stored form of a media list.
func JoinMedia(paths []string) string {
	return strings.Join(paths, ",")
}

// Media returns the post's attachments in upload order.
func (p Post) Media() []MediaItem {
	return ParseMedia(p.MediaList)
}

// DisplayTime formats t the way post timestamps are stored.
func DisplayTime(t time.Time) string {
	return t.In(DisplayZone).Format(DisplayTimeLayout)
}
