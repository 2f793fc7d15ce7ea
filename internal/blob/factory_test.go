package blob

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	appcfg "github.com/dkotl/macrolog/internal/config"
)

func TestNewBlobStoreLocalForced(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode:     appcfg.BlobModeLocal,
		LocalDir: t.TempDir(),
		S3:       appcfg.S3Config{},
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected *LocalStore, got %T", store)
	}
	if !strings.Contains(buf.String(), "mode=local (forced)") {
		t.Fatalf("expected local mode log, got: %s", buf.String())
	}
}

func TestNewBlobStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode:     appcfg.BlobModeAuto,
		LocalDir: t.TempDir(),
		S3:       appcfg.S3Config{},
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local fallback, got %s", mode)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Fatalf("expected *LocalStore on auto fallback, got %T", store)
	}

	logOut := buf.String()
	if !strings.Contains(logOut, "code=s3_not_configured") {
		t.Fatalf("expected s3_not_configured diagnostics, got: %s", logOut)
	}
	if !strings.Contains(logOut, "mode=local (auto, S3 not configured)") {
		t.Fatalf("expected auto fallback to local log, got: %s", logOut)
	}
}

func TestNewBlobStoreS3MissingRequiredReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	store, mode, err := NewBlobStore(appcfg.BlobConfig{
		Mode:     appcfg.BlobModeS3,
		LocalDir: t.TempDir(),
		S3: appcfg.S3Config{
			Endpoint: "https://s3.example.com",
		},
	}, logger)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	data := []byte("jpeg bytes")
	if _, err := store.PutObject(ctx, "photos/user-1/a.jpg", data, "image/jpeg"); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetObject(ctx, "photos/user-1/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("expected stored bytes back, got %q", got)
	}

	if err := store.DeleteObject(ctx, "photos/user-1/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetObject(ctx, "photos/user-1/a.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound after delete, got %v", err)
	}
}

func TestLocalStoreDeletePrefix(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	store.PutObject(ctx, "photos/user-1/a.jpg", []byte("a"), "image/jpeg")
	store.PutObject(ctx, "photos/user-1/b.jpg", []byte("b"), "image/jpeg")
	store.PutObject(ctx, "photos/user-2/c.jpg", []byte("c"), "image/jpeg")

	if err := store.DeletePrefix(ctx, "photos/user-1"); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetObject(ctx, "photos/user-1/a.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected user-1 objects gone, got %v", err)
	}
	if _, err := store.GetObject(ctx, "photos/user-2/c.jpg"); err != nil {
		t.Fatalf("expected user-2 object untouched, got %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := store.PutObject(context.Background(), "../escape", []byte("x"), ""); err == nil {
		t.Fatal("expected error for key with ..")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.PutObject(ctx, "photos/user-1/a.jpg", []byte("a"), "image/jpeg"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.PutObject(ctx, "photos/user-1/b.jpg", []byte("b"), "image/jpeg"); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetObject(ctx, "photos/user-1/a.jpg")
	if err != nil || string(got) != "a" {
		t.Fatalf("expected object back, got %q err=%v", got, err)
	}

	if err := store.DeletePrefix(ctx, "photos/user-1/"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetObject(ctx, "photos/user-1/b.jpg"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound after prefix delete, got %v", err)
	}
}
