// Package langmeta derives display metadata (native name, English name and
// emoji flag) for catalog language codes such as es_US or pt-BR.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Tag is the canonical BCP 47 form of the code, e.g. "es-US".
	Tag     string
	Name    string
	English string
	Flag    string
}

// canonicalize turns catalog codes (es_US, " EN-us ") into BCP 47 tags.
func canonicalize(lang string) (language.Tag, bool) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.Und, false
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// Resolve returns best-effort metadata for a language code. Codes that
// cannot be parsed, or that have no known name, are passed through as the
// name.
func Resolve(lang string) Meta {
	tag, ok := canonicalize(lang)
	if !ok {
		return Meta{Tag: lang, Name: lang, English: lang}
	}

	m := Meta{
		Tag:     tag.String(),
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
		Flag:    flag(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = m.Name
	}
	return m
}

// flag builds the regional indicator pair for the tag's region. A tag
// without an explicit region uses the most likely one (es -> ES).
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		b.WriteRune('\U0001F1E6' + (r - 'A'))
	}
	return b.String()
}
