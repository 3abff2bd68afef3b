package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"locres/internal/core"
	"locres/pkg/locfile"
)

func writeResource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func newTestRegistry(t *testing.T, dir string, maxStores int) *Registry {
	t.Helper()
	reg, err := New(core.ResourcesConfig{Dir: dir, BaseName: "app"}, maxStores, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return reg
}

func TestGetCachesStores(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "app_english.ini", "[messages]\nhello=Hello world.\n")

	reg := newTestRegistry(t, dir, 4)

	first, err := reg.Get("english")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := reg.Get("english")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Error("Get() returned a different store for a cached language")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestGetFallbackStoreIsCachedUnderRequestedLanguage(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "app_english.ini", "[messages]\nhello=Hello world.\n")

	reg := newTestRegistry(t, dir, 4)

	store, err := reg.Get("french")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if store.ResolvedLanguage() != locfile.DefaultLanguage {
		t.Errorf("ResolvedLanguage() = %q, want %q", store.ResolvedLanguage(), locfile.DefaultLanguage)
	}

	// The fallback store answers later "french" requests without reloading.
	again, err := reg.Get("french")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again != store {
		t.Error("Get() reloaded a store that was already cached")
	}
}

func TestGetMissingEverything(t *testing.T) {
	reg := newTestRegistry(t, t.TempDir(), 4)

	if _, err := reg.Get("french"); !errors.Is(err, locfile.ErrResourceNotFound) {
		t.Errorf("Get() error = %v, want ErrResourceNotFound", err)
	}
}

func TestPreload(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "app_english.ini", "[messages]\nhello=Hello world.\n")
	writeResource(t, dir, "app_french.ini", "[messages]\nhello=Bonjour.\n")
	writeResource(t, dir, "app_german.ini", "[messages]\nhello=Hallo.\n")

	reg := newTestRegistry(t, dir, 4)

	if err := reg.Preload(context.Background(), "english", "french", "german"); err != nil {
		t.Fatalf("Preload() error = %v", err)
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestLanguages(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "app_english.ini", "[messages]\nhello=Hello world.\n")
	writeResource(t, dir, "app_french.ini", "[messages]\nhello=Bonjour.\n")

	reg := newTestRegistry(t, dir, 4)

	got, err := reg.Languages()
	if err != nil {
		t.Fatalf("Languages() error = %v", err)
	}
	want := []string{"english", "french"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Languages() = %v, want %v", got, want)
	}
}

func TestCacheEviction(t *testing.T) {
	dir := t.TempDir()
	writeResource(t, dir, "app_english.ini", "[messages]\nhello=Hello world.\n")
	writeResource(t, dir, "app_french.ini", "[messages]\nhello=Bonjour.\n")
	writeResource(t, dir, "app_german.ini", "[messages]\nhello=Hallo.\n")

	reg := newTestRegistry(t, dir, 2)

	for _, lang := range []string{"english", "french", "german"} {
		if _, err := reg.Get(lang); err != nil {
			t.Fatalf("Get(%s) error = %v", lang, err)
		}
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", reg.Len())
	}
}
