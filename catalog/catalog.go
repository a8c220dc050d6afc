// Package catalog collects extracted messages and reads and writes them in
// the gettext PO text format.
package catalog

// Location is one source reference of a message.
type Location struct {
	File string
	Tag  string
	Line int
}

// Message is a single catalog entry.
type Message struct {
	Context     string // msgctxt, set for attribute messages ("p:title")
	ID          string // normalized source text
	Locations   []Location
	Comment     string
	NoWrap      bool
	Fuzzy       bool
	Translation string
}

// Key returns the lookup key of a message the way gettext combines context
// and id.
func Key(context, id string) string {
	if context == "" {
		return id
	}
	return context + "\x04" + id
}

// Key returns the message's lookup key.
func (m *Message) Key() string {
	return Key(m.Context, m.ID)
}

// Catalog is an ordered message collection.
//
// A regular catalog deduplicates messages by key and accumulates their
// locations. A positional catalog, used to recover translations from an
// already translated document, keeps one entry per occurrence and assigns
// translations by position once TranslationsFollow has been called.
type Catalog struct {
	messages []*Message
	index    map[string]*Message

	positional bool
	following  bool
	cursor     int

	// UseFuzzy makes Lookup return translations flagged fuzzy.
	UseFuzzy bool
}

// New returns an empty deduplicating catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]*Message)}
}

// NewPositional returns an empty catalog that keeps duplicate messages.
func NewPositional() *Catalog {
	c := New()
	c.positional = true
	return c
}

// Positional reports whether the catalog keeps one entry per occurrence.
func (c *Catalog) Positional() bool {
	return c.positional
}

// Add records a message. Blank messages are dropped.
func (c *Catalog) Add(m Message) {
	if isBlank(m.ID) {
		return
	}
	if c.following {
		c.assign(m.ID)
		return
	}

	key := m.Key()
	existing, seen := c.index[key]
	if c.positional || !seen {
		msg := m
		msg.Locations = append([]Location(nil), m.Locations...)
		if !seen {
			c.index[key] = &msg
		}
		c.messages = append(c.messages, &msg)
		return
	}

	existing.Locations = append(existing.Locations, m.Locations...)
	if existing.Comment == "" && m.Comment != "" {
		existing.Comment = m.Comment
	}
	if m.NoWrap {
		existing.NoWrap = true
	}
}

// TranslationsFollow switches a positional catalog into translation mode:
// subsequent Add calls supply the translation of the next message in order.
func (c *Catalog) TranslationsFollow() {
	c.following = true
}

func (c *Catalog) assign(text string) {
	if c.cursor >= len(c.messages) {
		c.cursor++
		return
	}
	msg := c.messages[c.cursor]
	c.cursor++
	if text != msg.ID {
		msg.Translation = text
	}
}

// Messages returns the entries in insertion order.
func (c *Catalog) Messages() []*Message {
	return c.messages
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.messages)
}

// Get returns the first entry with the given context and id.
func (c *Catalog) Get(context, id string) (*Message, bool) {
	m, ok := c.index[Key(context, id)]
	return m, ok
}

// Lookup returns a non-empty translation for the given context and id.
// Fuzzy entries are skipped unless UseFuzzy is set.
func (c *Catalog) Lookup(context, id string) (string, bool) {
	m, ok := c.index[Key(context, id)]
	if !ok || m.Translation == "" {
		return "", false
	}
	if m.Fuzzy && !c.UseFuzzy {
		return "", false
	}
	return m.Translation, true
}

// Merge appends every message of other in order, as if each had been added
// to c directly.
func (c *Catalog) Merge(other *Catalog) {
	for _, m := range other.messages {
		c.Add(*m)
	}
}

// Translated counts entries with a translation.
func (c *Catalog) Translated() int {
	n := 0
	for _, m := range c.messages {
		if m.Translation != "" {
			n++
		}
	}
	return n
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}
