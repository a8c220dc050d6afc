// Package cache provides translation memory stores. Keys are built by the
// caller from a message hash and a language; values are translated
// message bodies.
package cache

// TranslationCache is the interface for translation memory lookups.
type TranslationCache interface {
	// Get retrieves a translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation.
	Set(key string, value string) error
}

// Lister is a store whose entries can be enumerated for export.
type Lister interface {
	Entries() (map[string]string, error)
}

// Store is a translation memory that supports export.
type Store interface {
	TranslationCache
	Lister
}
