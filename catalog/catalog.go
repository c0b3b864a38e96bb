// Package catalog resolves translated UI strings from a loaded Qt
// Linguist catalog.
//
// A Catalog is built once and never modified, so it may be shared by any
// number of goroutines without locking. Lookups never fail: a string that
// is not in the catalog resolves to itself.
//
// Usage:
//
//	cat, err := catalog.LoadFileOrEmpty("translations/es.ts")
//	if err != nil {
//	    log.Printf("translations disabled: %v", err)
//	}
//	general := cat.Context("GeneralWidget")
//	button.SetText(general.T("Settings")) // "Configuración"
package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"golang.org/x/text/language"

	"github.com/minios-linux/tskit/tsfile"
)

type key struct {
	context        string
	source         string
	disambiguation string
}

// Catalog is an immutable translation table for one target language.
type Catalog struct {
	language       language.Tag
	sourceLanguage language.Tag
	contexts       []string
	messages       map[key]string
	ids            map[string]string
}

// Empty returns a catalog without messages. Every lookup falls back to
// the source text.
func Empty() *Catalog {
	return &Catalog{
		language:       language.Und,
		sourceLanguage: language.Und,
		messages:       map[key]string{},
		ids:            map[string]string{},
	}
}

// New indexes a parsed TS document. Obsolete and vanished messages are
// left out; unfinished ones are kept with whatever text they carry.
func New(f *tsfile.File) (*Catalog, error) {
	if f == nil {
		return nil, errors.New("catalog: nil TS document")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	c := Empty()
	c.language = parseTag(f.Language)
	c.sourceLanguage = parseTag(f.SourceLanguage)

	for _, ctx := range f.Contexts {
		c.contexts = append(c.contexts, ctx.Name)
		for _, m := range ctx.Messages {
			if m.IsObsolete() {
				continue
			}
			text := m.Text()
			c.messages[key{context: ctx.Name, source: m.Source, disambiguation: m.Comment}] = text
			if m.ID != "" {
				c.ids[m.ID] = text
			}
		}
	}
	return c, nil
}

// Load parses a TS document from r and indexes it.
func Load(r io.Reader) (*Catalog, error) {
	f, err := tsfile.ParseReader(r)
	if err != nil {
		return nil, err
	}
	return New(f)
}

// LoadFile parses and indexes a TS file.
func LoadFile(path string) (*Catalog, error) {
	f, err := tsfile.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(f)
}

// LoadFS parses and indexes a TS file from fsys, typically an embed.FS.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	f, err := tsfile.Parse(data)
	if err != nil {
		var perr *tsfile.ParseError
		if errors.As(err, &perr) {
			perr.Path = name
		}
		return nil, err
	}
	return New(f)
}

// LoadFileOrEmpty loads path, or returns Empty() together with the load
// error so the caller can log it and keep showing source text.
func LoadFileOrEmpty(path string) (*Catalog, error) {
	c, err := LoadFile(path)
	if err != nil {
		return Empty(), err
	}
	return c, nil
}

// parseTag accepts Qt-style tags such as "es_US". Unknown or empty
// tags become language.Und.
func parseTag(s string) language.Tag {
	if s == "" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

// Language returns the target language of the catalog.
func (c *Catalog) Language() language.Tag {
	if c == nil {
		return language.Und
	}
	return c.language
}

// SourceLanguage returns the language of the source texts.
func (c *Catalog) SourceLanguage() language.Tag {
	if c == nil {
		return language.Und
	}
	return c.sourceLanguage
}

// Contexts returns context names in document order.
func (c *Catalog) Contexts() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.contexts...)
}

// Len returns the number of resolvable messages.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

// Lookup returns the translation stored for the key and whether it exists.
func (c *Catalog) Lookup(context, source, disambiguation string) (string, bool) {
	if c == nil {
		return "", false
	}
	text, ok := c.messages[key{context: context, source: source, disambiguation: disambiguation}]
	return text, ok
}

// Resolve returns the translation of source in context, or source itself
// when the catalog has no such message. An empty translation is returned as is.
func (c *Catalog) Resolve(context, source string) string {
	return c.ResolveDisambiguated(context, source, "")
}

// ResolveDisambiguated is Resolve for messages carrying a disambiguation comment.
func (c *Catalog) ResolveDisambiguated(context, source, disambiguation string) string {
	if text, ok := c.Lookup(context, source, disambiguation); ok {
		return text
	}
	return source
}

// ResolveID resolves an id-based message, falling back to the id.
func (c *Catalog) ResolveID(id string) string {
	if c == nil {
		return id
	}
	if text, ok := c.ids[id]; ok {
		return text
	}
	return id
}

// Context binds a context name, for UI code that translates one form.
func (c *Catalog) Context(name string) Scope {
	return Scope{catalog: c, name: name}
}

// Scope is a catalog bound to one context.
type Scope struct {
	catalog *Catalog
	name    string
}

// Name returns the bound context name.
func (s Scope) Name() string { return s.name }

// T resolves source in the bound context.
func (s Scope) T(source string) string {
	return s.catalog.Resolve(s.name, source)
}

// Disambiguated resolves source with a disambiguation comment in the bound context.
func (s Scope) Disambiguated(source, disambiguation string) string {
	return s.catalog.ResolveDisambiguated(s.name, source, disambiguation)
}
