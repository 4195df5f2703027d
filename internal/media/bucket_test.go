package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

//
// --- Helpers ---
//

// fakeObject records what a bucket writer received.
type fakeObject struct {
	ctx         context.Context
	object      string
	contentType string
	buf         bytes.Buffer
	closed      bool
	canceled    bool // ctx was already canceled when Close ran
	closeErr    error
}

func (o *fakeObject) Write(p []byte) (int, error) { return o.buf.Write(p) }

func (o *fakeObject) Close() error {
	o.closed = true
	o.canceled = o.ctx.Err() != nil
	return o.closeErr
}

func fakeBucket(obj *fakeObject) *BucketStore {
	return &BucketStore{newWriter: func(ctx context.Context, object, contentType string) io.WriteCloser {
		obj.ctx = ctx
		obj.object = object
		obj.contentType = contentType
		return obj
	}}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

//
// --- Tests ---
//

func TestBucketStore_Save(t *testing.T) {
	obj := &fakeObject{}
	st := fakeBucket(obj)

	if err := st.Save(context.Background(), "abc.png", strings.NewReader("img"), "image/png"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if obj.object != "uploads/abc.png" || obj.contentType != "image/png" {
		t.Fatalf("unexpected object %q (%q)", obj.object, obj.contentType)
	}
	if obj.buf.String() != "img" {
		t.Fatalf("unexpected content %q", obj.buf.String())
	}
	if !obj.closed || obj.canceled {
		t.Fatalf("expected object committed, closed=%v canceled=%v", obj.closed, obj.canceled)
	}
}

func TestBucketStore_CopyErrorAbandonsObject(t *testing.T) {
	obj := &fakeObject{}
	st := fakeBucket(obj)

	err := st.Save(context.Background(), "abc.png", brokenReader{}, "image/png")
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected copy error, got %v", err)
	}
	if !obj.closed || !obj.canceled {
		t.Fatalf("expected writer closed after cancel, closed=%v canceled=%v", obj.closed, obj.canceled)
	}
}

func TestBucketStore_CloseError(t *testing.T) {
	closeErr := errors.New("precondition failed")
	obj := &fakeObject{closeErr: closeErr}
	st := fakeBucket(obj)

	err := st.Save(context.Background(), "abc.mp4", strings.NewReader("v"), "video/mp4")
	if !errors.Is(err, closeErr) {
		t.Fatalf("expected close error, got %v", err)
	}
}

func TestBucketStore_WithSaveUploads(t *testing.T) {
	obj := &fakeObject{}
	st := fakeBucket(obj)

	paths, err := SaveUploads(context.Background(), st, fileHeaders(t, upload{"clip.MP4", "v"}))
	if err != nil {
		t.Fatalf("save uploads: %v", err)
	}
	if len(paths) != 1 || obj.object != paths[0] {
		t.Fatalf("expected stored object %q to match path %v", obj.object, paths)
	}
}
