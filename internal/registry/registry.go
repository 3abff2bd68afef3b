// Package registry caches loaded resource stores per language behind an LRU
// cache, so repeated lookups in one language never re-read the file.
package registry

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"locres/internal/core"
	"locres/pkg/locfile"
)

// Registry provides thread-safe access to per-language resource stores for
// one resource file family.
type Registry struct {
	resources core.ResourcesConfig
	logger    *zap.Logger
	cache     *lru.Cache[string, *locfile.Store]
	mutex     sync.Mutex
}

// New creates a registry over the configured resource directory and base
// name, keeping at most maxStores language stores resident.
func New(resources core.ResourcesConfig, maxStores int, logger *zap.Logger) (*Registry, error) {
	cache, err := lru.New[string, *locfile.Store](maxStores)
	if err != nil {
		return nil, err
	}

	return &Registry{
		resources: resources,
		logger:    logger,
		cache:     cache,
	}, nil
}

// Get returns the store for a language, loading it on first use. A store that
// silently fell back to the default language is logged once, at load time.
func (r *Registry) Get(language string) (*locfile.Store, error) {
	if store, ok := r.cache.Get(language); ok {
		return store, nil
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Re-check under the lock so concurrent misses load the file once.
	if store, ok := r.cache.Get(language); ok {
		return store, nil
	}

	store, err := locfile.New(r.resources.Dir, r.resources.BaseName, language)
	if err != nil {
		return nil, err
	}

	if store.ResolvedLanguage() != language {
		r.logger.Warn("Language fell back to default",
			zap.String("requested", language),
			zap.String("resolved", store.ResolvedLanguage()),
			zap.String("path", store.Path()))
	} else {
		r.logger.Debug("Loaded resource store",
			zap.String("language", language),
			zap.Int("error_codes", store.ErrorCodeCount()),
			zap.Int("messages", store.MessageCount()))
	}

	r.cache.Add(language, store)
	return store, nil
}

// Preload loads several languages concurrently, failing on the first language
// whose resource resolution fails entirely.
func (r *Registry) Preload(ctx context.Context, languages ...string) error {
	g, _ := errgroup.WithContext(ctx)
	for _, language := range languages {
		g.Go(func() error {
			_, err := r.Get(language)
			return err
		})
	}
	return g.Wait()
}

// Languages lists the languages available on disk for the registry's base
// name.
func (r *Registry) Languages() ([]string, error) {
	return locfile.Languages(r.resources.Dir, r.resources.BaseName)
}

// Len returns the number of resident stores.
func (r *Registry) Len() int {
	return r.cache.Len()
}
