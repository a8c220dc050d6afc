package xmlpo

import (
	"context"
	"errors"
	"sync"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/internal/worker"
)

// ExtractParallel is Extract with files processed concurrently on the
// engine's workers. Files share no tree state; their catalogs are merged
// in input order, so the result equals Extract's.
func (e *Engine) ExtractParallel(ctx context.Context, files []string) (*catalog.Catalog, error) {
	pool := worker.NewPool(e.workers, func(_ context.Context, file string) (*catalog.Catalog, error) {
		doc, err := ReadDocument(file)
		if err != nil {
			return nil, err
		}
		cat := catalog.New()
		if _, err := e.ExtractDocument(doc, file, cat); err != nil {
			return nil, err
		}
		return cat, nil
	})

	cat := catalog.New()
	var errs []error
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			e.logger.Error().Err(task.Err).Str("file", task.Input).Msg("Skipping document")
			errs = append(errs, task.Err)
			continue
		}
		cat.Merge(task.Result)
	}
	e.addCredits(cat)
	return cat, errors.Join(errs...)
}

// ParallelMemoryLookup looks the messages up in the memory concurrently.
// It returns the hits keyed by catalog key and the misses in their original
// order, each key appearing once.
func ParallelMemoryLookup(cache TranslationCache, msgs []*catalog.Message, lang string) (map[string]string, []*catalog.Message) {
	if cache == nil || len(msgs) == 0 {
		return make(map[string]string), msgs
	}

	type lookupResult struct {
		key   string
		value string
		found bool
	}

	unique := make(map[string]*catalog.Message)
	for _, m := range msgs {
		if _, exists := unique[m.Key()]; !exists {
			unique[m.Key()] = m
		}
	}

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup

	for key, m := range unique {
		wg.Add(1)
		go func(k string, m *catalog.Message) {
			defer wg.Done()
			if val, ok := cache.Get(MemoryKey(m.Context, m.ID, lang)); ok && val != "" {
				results <- lookupResult{key: k, value: val, found: true}
			} else {
				results <- lookupResult{key: k}
			}
		}(key, m)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	hits := make(map[string]string)
	for r := range results {
		if r.found {
			hits[r.key] = r.value
		}
	}

	var misses []*catalog.Message
	seen := make(map[string]bool)
	for _, m := range msgs {
		k := m.Key()
		if _, hit := hits[k]; hit || seen[k] {
			continue
		}
		seen[k] = true
		misses = append(misses, m)
	}

	return hits, misses
}
