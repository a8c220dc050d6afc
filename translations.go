package xmlpo

import "github.com/ZaguanLabs/xmlpo/catalog"

// Translations supplies translated text during a merge. context is empty
// for element messages and "tag:attribute" for attribute messages.
type Translations interface {
	Lookup(context, id string) (string, bool)
}

var _ Translations = (*catalog.Catalog)(nil)

// MapTranslations is an in-memory Translations keyed by catalog.Key.
type MapTranslations map[string]string

// Lookup implements Translations.
func (m MapTranslations) Lookup(context, id string) (string, bool) {
	t, ok := m[catalog.Key(context, id)]
	return t, ok && t != ""
}

// MemoryKey is the translation memory key of a message in lang.
func MemoryKey(context, id, lang string) string {
	return CacheKey(HashText(catalog.Key(context, id)), lang)
}

// MemoryTranslations looks translations up in a translation memory.
type MemoryTranslations struct {
	Cache TranslationCache
	Lang  string
}

// Lookup implements Translations.
func (m *MemoryTranslations) Lookup(context, id string) (string, bool) {
	t, ok := m.Cache.Get(MemoryKey(context, id, m.Lang))
	return t, ok && t != ""
}

// ChainTranslations consults each source in order and returns the first hit.
type ChainTranslations []Translations

// Lookup implements Translations.
func (c ChainTranslations) Lookup(context, id string) (string, bool) {
	for _, tr := range c {
		if t, ok := tr.Lookup(context, id); ok {
			return t, true
		}
	}
	return "", false
}

// LearnCatalog stores the translated, non-fuzzy entries of cat in the
// memory and returns how many were stored.
func LearnCatalog(cache TranslationCache, cat *catalog.Catalog, lang string) (int, error) {
	n := 0
	for _, m := range cat.Messages() {
		if m.Translation == "" || m.Fuzzy {
			continue
		}
		if err := cache.Set(MemoryKey(m.Context, m.ID, lang), m.Translation); err != nil {
			return n, &CacheError{Message: "storing translation", Cause: err}
		}
		n++
	}
	return n, nil
}
