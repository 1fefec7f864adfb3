package services

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"qr-logo-bot/internal/models"
)

func newTestLogoStore(t *testing.T, dir string) *LogoStore {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store, err := NewLogoStore(dir, logger)
	if err != nil {
		t.Fatalf("NewLogoStore() error: %v", err)
	}
	return store
}

func normalizedArtifact(t *testing.T, raw []byte) *models.LogoArtifact {
	t.Helper()
	artifact, _, err := newTestLogoService(t).Normalize(context.Background(), raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	return artifact
}

func TestLogoStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := newTestLogoStore(t, dir)
	artifact := normalizedArtifact(t, encodePNG(t, cornerCutImage(120, 80, 10, color.RGBA{255, 0, 0, 255})))

	if store.Exists(42) {
		t.Fatal("Exists() = true before Save")
	}
	if got, err := store.Load(42); err != nil || got != nil {
		t.Fatalf("Load() before Save = %v, %v; want nil, nil", got, err)
	}

	if err := store.Save(42, artifact); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if want := filepath.Join(dir, "logo_42.png"); store.Path(42) != want {
		t.Errorf("Path() = %q, want %q", store.Path(42), want)
	}

	// A fresh store has an empty cache and has to read the file back
	loaded, err := newTestLogoStore(t, dir).Load(42)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() returned nil after Save")
	}
	if loaded.Width != 120 || loaded.Height != 80 || loaded.Mode != models.ColorModeAlpha {
		t.Errorf("loaded = %dx%d %s, want 120x80 RGBA", loaded.Width, loaded.Height, loaded.Mode)
	}
	if !bytes.Equal(loaded.Data, artifact.Data) {
		t.Error("loaded bytes differ from saved bytes")
	}
}

func TestLogoStoreLoadReportsOpaqueMode(t *testing.T) {
	dir := t.TempDir()
	artifact := normalizedArtifact(t, encodeJPEG(t, solidImage(64, 64, color.RGBA{0, 0, 255, 255})))

	if err := newTestLogoStore(t, dir).Save(7, artifact); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := newTestLogoStore(t, dir).Load(7)
	if err != nil || loaded == nil {
		t.Fatalf("Load() = %v, %v", loaded, err)
	}
	if loaded.Mode != models.ColorModeOpaque {
		t.Errorf("loaded mode = %s, want RGB", loaded.Mode)
	}
}

func TestLogoStoreReplaceAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := newTestLogoStore(t, dir)
	first := normalizedArtifact(t, encodePNG(t, solidImage(30, 30, color.Black)))
	second := normalizedArtifact(t, encodePNG(t, solidImage(60, 40, color.White)))

	if err := store.Save(1, first); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(1, second); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := newTestLogoStore(t, dir).Load(1)
	if err != nil || loaded == nil {
		t.Fatalf("Load() = %v, %v", loaded, err)
	}
	if loaded.Width != 60 || loaded.Height != 40 {
		t.Errorf("loaded size = %dx%d, want the replacement 60x40", loaded.Width, loaded.Height)
	}

	if matches, _ := filepath.Glob(filepath.Join(dir, ".*.tmp")); len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}

	if err := store.Delete(1); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if store.Exists(1) {
		t.Error("Exists() = true after Delete")
	}
	if err := store.Delete(1); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestLogoStoreRemovesStaleTempFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, ".logo_5.crash.tmp")
	if err := os.WriteFile(stale, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	newTestLogoStore(t, dir)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale temp file still present: %v", err)
	}
}

func TestLogoStoreReadersNeverSeePartialWrites(t *testing.T) {
	dir := t.TempDir()
	store := newTestLogoStore(t, dir)
	a := normalizedArtifact(t, encodePNG(t, solidImage(300, 300, color.RGBA{255, 0, 0, 255})))
	b := normalizedArtifact(t, encodeJPEG(t, solidImage(400, 200, color.RGBA{0, 255, 0, 255})))

	if err := store.Save(9, a); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stop)
		for i := 0; i < 50; i++ {
			artifact := a
			if i%2 == 0 {
				artifact = b
			}
			if err := store.Save(9, artifact); err != nil {
				t.Errorf("Save() error: %v", err)
				return
			}
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				data, err := os.ReadFile(store.Path(9))
				if err != nil {
					t.Errorf("ReadFile() error: %v", err)
					return
				}
				if !bytes.Equal(data, a.Data) && !bytes.Equal(data, b.Data) {
					t.Error("reader saw a partially written artifact")
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestLogoStoreCacheFollowsConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	store := newTestLogoStore(t, dir)
	artifacts := []*models.LogoArtifact{
		normalizedArtifact(t, encodePNG(t, solidImage(120, 120, color.RGBA{255, 0, 0, 255}))),
		normalizedArtifact(t, encodePNG(t, solidImage(200, 100, color.RGBA{0, 255, 0, 255}))),
		normalizedArtifact(t, encodePNG(t, cornerCutImage(90, 160, 10, color.RGBA{0, 0, 255, 255}))),
	}

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(artifact *models.LogoArtifact) {
				defer wg.Done()
				if err := store.Save(11, artifact); err != nil {
					t.Errorf("Save() error: %v", err)
				}
				if _, err := store.Load(11); err != nil {
					t.Errorf("Load() error: %v", err)
				}
			}(artifacts[i%len(artifacts)])
		}
		wg.Wait()

		onDisk, err := os.ReadFile(store.Path(11))
		if err != nil {
			t.Fatalf("ReadFile() error: %v", err)
		}
		loaded, err := store.Load(11)
		if err != nil || loaded == nil {
			t.Fatalf("Load() = %v, %v", loaded, err)
		}
		if !bytes.Equal(loaded.Data, onDisk) {
			t.Fatalf("round %d: cached artifact differs from the stored file", round)
		}
	}
}
