package blob_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"pharmstock/m/internal/blob"
	"pharmstock/m/internal/database"
	"pharmstock/m/internal/migrations"
)

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		mime    string
		data    string
		wantErr bool
	}{
		{name: "png", in: "data:image/png;base64,aGVsbG8=", mime: "image/png", data: "hello"},
		{name: "no mime", in: "data:;base64,aGk=", mime: "application/octet-stream", data: "hi"},
		{name: "remote url", in: "https://example.com/a.jpg", wantErr: true},
		{name: "no payload", in: "data:image/png;base64", wantErr: true},
		{name: "not base64", in: "data:text/plain,hello", wantErr: true},
		{name: "bad payload", in: "data:image/png;base64,@@@", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, err := blob.DecodeDataURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mime != tt.mime || string(data) != tt.data {
				t.Errorf("got (%q, %q), want (%q, %q)", mime, data, tt.mime, tt.data)
			}
		})
	}
}

func TestEncodeDataURLRoundTrip(t *testing.T) {
	mime, data, err := blob.DecodeDataURL(blob.EncodeDataURL("image/jpeg", []byte{0xff, 0xd8}))
	if err != nil || mime != "image/jpeg" || !bytes.Equal(data, []byte{0xff, 0xd8}) {
		t.Fatalf("round trip = %q, %v, %v", mime, data, err)
	}
}

func TestURL(t *testing.T) {
	if got := blob.URL("http://localhost:8080/", "/items/a.jpg"); got != "http://localhost:8080/blobs/items/a.jpg" {
		t.Errorf("URL = %q", got)
	}
	if got := blob.URL("", "a.jpg"); got != "/blobs/a.jpg" {
		t.Errorf("URL without base = %q", got)
	}
}

func stores(t *testing.T) map[string]blob.Store {
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return map[string]blob.Store{
		"memory": blob.NewMemory("http://files"),
		"sql":    blob.NewSQL(db, "http://files"),
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			url, err := s.Upload(ctx, "shortages/x.jpg", "image/jpeg", []byte("one"))
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if url != "http://files/blobs/shortages/x.jpg" {
				t.Errorf("url = %q", url)
			}
			if _, err := s.Upload(ctx, "shortages/x.jpg", "image/png", []byte("two")); err != nil {
				t.Fatalf("re-Upload: %v", err)
			}
			obj, err := s.Open(ctx, "shortages/x.jpg")
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if obj.ContentType != "image/png" || string(obj.Data) != "two" {
				t.Errorf("object = %+v", obj)
			}
			if err := s.Delete(ctx, "shortages/x.jpg"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Open(ctx, "shortages/x.jpg"); !errors.Is(err, blob.ErrNotFound) {
				t.Errorf("Open after delete err = %v", err)
			}
			if err := s.Delete(ctx, "shortages/x.jpg"); !errors.Is(err, blob.ErrNotFound) {
				t.Errorf("second Delete err = %v", err)
			}
		})
	}
}

func TestMemoryFailUploads(t *testing.T) {
	m := blob.NewMemory("")
	m.FailUploads = errors.New("offline")
	if _, err := m.Upload(context.Background(), "a", "image/png", nil); err == nil {
		t.Fatal("expected upload failure")
	}
	if m.Len() != 0 {
		t.Error("failed upload stored an object")
	}
}
