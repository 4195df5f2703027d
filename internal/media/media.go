package media

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"

	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/models"
	"github.com/google/uuid"
)

var logg = logger.New()

// PathPrefix is prepended to stored file names to form the recorded relative path.
const PathPrefix = "uploads/"

// Store persists uploaded media under a generated name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) error
}

// NewName returns a collision-free name for an upload: 32 hex characters of a
// random UUID followed by the lowercased extension of filename.
func NewName(filename string) string {
	id := uuid.New()
	return hex.EncodeToString(id[:]) + "." + models.Extension(filename)
}

// SaveUploads stores every file with an allowed extension and returns the
// relative paths in upload order. Disallowed files are skipped silently.
func SaveUploads(ctx context.Context, st Store, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		if fh == nil || fh.Filename == "" || !models.AllowedFile(fh.Filename) {
			continue
		}

		name := NewName(fh.Filename)
		if err := saveOne(ctx, st, name, fh); err != nil {
			return nil, fmt.Errorf("save upload: %w", err)
		}
		paths = append(paths, PathPrefix+name)
	}
	return paths, nil
}

func saveOne(ctx context.Context, st Store, name string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	return st.Save(ctx, name, f, fh.Header.Get("Content-Type"))
}
