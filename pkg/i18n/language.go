// Package i18n holds translation tables. A format looks like
// "Regular string ${key} continuing regular string"; placeholders without an
// argument render as "?".
package i18n

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// ErrUnknownKey is returned when a key is absent from a translation table.
var ErrUnknownKey = errors.New("key is not found in the translation table")

var keyRegex = regexp.MustCompile(`[$]\{([\w.]+)}`)

// Language is a named, read-only translation table.
type Language struct {
	name  string
	table map[string]string
}

// NewLanguage copies table into a new Language.
func NewLanguage(name string, table map[string]string) *Language {
	t := make(map[string]string, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &Language{name: name, table: t}
}

// Name returns the language name.
func (l *Language) Name() string { return l.name }

// Has reports whether key exists.
func (l *Language) Has(key string) bool {
	_, ok := l.table[key]
	return ok
}

// Keys returns the sorted keys of the table.
func (l *Language) Keys() []string {
	keys := make([]string, 0, len(l.table))
	for k := range l.table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Translate renders key with args.
func (l *Language) Translate(key string, args map[string]string) (string, error) {
	format, ok := l.table[key]
	if !ok {
		return "", fmt.Errorf("%s: %q: %w", l.name, key, ErrUnknownKey)
	}
	return keyRegex.ReplaceAllStringFunc(format, func(m string) string {
		name := keyRegex.FindStringSubmatch(m)[1]
		if v, ok := args[name]; ok {
			return v
		}
		return "?"
	}), nil
}

// Catalog indexes languages by name. Safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	langs map[string]*Language
}

// NewCatalog returns a catalog holding langs.
func NewCatalog(langs ...*Language) *Catalog {
	c := &Catalog{langs: make(map[string]*Language)}
	c.Add(langs...)
	return c
}

// Add registers languages, replacing any with the same name.
func (c *Catalog) Add(langs ...*Language) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range langs {
		if l != nil {
			c.langs[l.name] = l
		}
	}
}

// Get looks up a language by name.
func (c *Catalog) Get(name string) (*Language, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.langs[name]
	return l, ok
}

// Names returns the registered language names, sorted.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.langs))
	for n := range c.langs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
