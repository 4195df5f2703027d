package models

import (
	"testing"
	"time"
)

func TestAllowedFile(t *testing.T) {
	cases := map[string]bool{
		"photo.jpg":       true,
		"PHOTO.JPEG":      true,
		"clip.MP4":        true,
		"archive.tar.gif": true,
		"movie.mkv":       true,
		"malware.exe":     false,
		"noextension":     false,
		"image.png.exe":   false,
		"":                false,
	}
	for name, want := range cases {
		if got := AllowedFile(name); got != want {
			t.Errorf("AllowedFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseMedia_ClassifiesInOrder(t *testing.T) {
	items := ParseMedia("uploads/a.mp4, uploads/b.jpg,,uploads/c.WEBM , ")
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	want := []MediaItem{
		{Path: "uploads/a.mp4", Type: MediaVideo},
		{Path: "uploads/b.jpg", Type: MediaImage},
		{Path: "uploads/c.WEBM", Type: MediaVideo},
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestParseMedia_Empty(t *testing.T) {
	items := ParseMedia("")
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

// unknown or missing extensions fall back to image
func TestMediaType_Fallback(t *testing.T) {
	if got := MediaType("uploads/file"); got != MediaImage {
		t.Fatalf("expected image, got %s", got)
	}
	if got := MediaType("uploads/file.xyz"); got != MediaImage {
		t.Fatalf("expected image, got %s", got)
	}
}

func TestDisplayTime(t *testing.T) {
	ts := time.Date(2024, 3, 9, 20, 5, 0, 0, time.UTC)
	if got := DisplayTime(ts); got != "10/03/2024 03:05" {
		t.Fatalf("unexpected display time %q", got)
	}
}
