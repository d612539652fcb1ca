package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kdduha/llama-vision/backend/internal/config"
	"github.com/rs/zerolog"
)

type listingRuntime struct {
	fakeRuntime
	ids []string
	err error
}

func (l *listingRuntime) ListModels(context.Context) ([]string, error) { return l.ids, l.err }

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_VerifiesFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.gguf")
	touch(t, dir, "mmproj.gguf")
	cfg := config.ModelConfig{Path: dir, Name: "model.gguf", ClipName: "mmproj.gguf", VerifyFiles: true}

	h, err := Load(context.Background(), cfg, &fakeRuntime{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !h.Loaded() || !h.VisionEnabled() || h.Name() != "model.gguf" {
		t.Fatalf("handle = %+v", h)
	}
}

func TestLoad_MissingProjectorDisablesVision(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "model.gguf")
	cfg := config.ModelConfig{Path: dir, Name: "model.gguf", ClipName: "mmproj.gguf", VerifyFiles: true}

	h, err := Load(context.Background(), cfg, &fakeRuntime{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !h.Loaded() || h.VisionEnabled() {
		t.Fatalf("expected loaded without vision, got %+v", h)
	}
}

func TestLoad_MissingModelFails(t *testing.T) {
	cfg := config.ModelConfig{Path: t.TempDir(), Name: "model.gguf", ClipName: "mmproj.gguf", VerifyFiles: true}

	h, err := Load(context.Background(), cfg, &fakeRuntime{}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error")
	}
	if h.Loaded() {
		t.Fatal("nil handle must report unloaded")
	}
}

func TestLoad_Probe(t *testing.T) {
	cfg := config.ModelConfig{Name: "llava", Probe: true}

	if _, err := Load(context.Background(), cfg, &listingRuntime{ids: []string{"other"}}, zerolog.Nop()); err != nil {
		t.Fatalf("unlisted model must only warn: %v", err)
	}

	_, err := Load(context.Background(), cfg, &listingRuntime{err: errors.New("connection refused")}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected probe error")
	}
}

func TestHandle_Nil(t *testing.T) {
	var h *Handle
	if h.Loaded() || h.VisionEnabled() || h.Name() != "" || h.Runtime() != nil {
		t.Fatal("nil handle must be unloaded")
	}
}
