// Package convert translates between Qt Linguist TS catalogs and GNU
// gettext PO files, so catalogs can be edited with gettext tooling.
//
// Mapping:
//
//	context, comment   → msgctxt "context" or "context|comment"
//	source             → msgid (and msgid_plural for numerus messages)
//	translation        → msgstr / msgstr[N]
//	locations          → "#: file:line" references
//	extracomment, id   → "#." extracted comments ("id: …" for the id)
//	translatorcomment  → "# " translator comments
//	unfinished         → fuzzy flag
//	obsolete, vanished → "#~" obsolete entries
package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minios-linux/tskit/pofile"
	"github.com/minios-linux/tskit/tsfile"
)

// contextSeparator splits msgctxt into context name and disambiguation.
const contextSeparator = "|"

const idPrefix = "id: "

// sourceLanguageHeader carries TS sourcelanguage through the PO header.
const sourceLanguageHeader = "X-Source-Language"

// ToPO converts a TS document to a PO file.
func ToPO(f *tsfile.File, project string) *pofile.File {
	numerus := false
	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			numerus = numerus || m.Numerus
		}
	}

	po := pofile.NewFile()
	po.Header = pofile.MakeHeader(project, f.Language, numerus)
	if f.SourceLanguage != "" {
		po.Header.MsgStr += fmt.Sprintf("%s: %s\n", sourceLanguageHeader, f.SourceLanguage)
	}

	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			po.Entries = append(po.Entries, toEntry(c.Name, m))
		}
	}
	return po
}

func toEntry(context string, m *tsfile.Message) *pofile.Entry {
	e := &pofile.Entry{
		MsgCtxt:      context,
		MsgID:        m.Source,
		MsgStrPlural: make(map[int]string),
		Obsolete:     m.IsObsolete(),
	}
	if m.Comment != "" {
		e.MsgCtxt += contextSeparator + m.Comment
	}
	for _, loc := range m.Locations {
		ref := loc.File
		if loc.Line > 0 {
			ref += ":" + strconv.Itoa(loc.Line)
		}
		e.References = append(e.References, ref)
	}
	if m.ID != "" {
		e.ExtractedComments = append(e.ExtractedComments, idPrefix+m.ID)
	}
	if m.ExtraComment != "" {
		e.ExtractedComments = append(e.ExtractedComments, strings.Split(m.ExtraComment, "\n")...)
	}
	if m.TranslatorComment != "" {
		e.TranslatorComments = strings.Split(m.TranslatorComment, "\n")
	}
	if m.Type == tsfile.TypeUnfinished {
		e.Flags = append(e.Flags, "fuzzy")
	}

	if m.Numerus {
		e.MsgIDPlural = m.Source
		for i, form := range m.NumerusForms {
			e.MsgStrPlural[i] = form
		}
	} else {
		e.MsgStr = m.Translation
	}
	return e
}

// FromPO converts a PO file back to a TS document. Context order follows
// first appearance. The result is validated like a parsed TS file.
func FromPO(po *pofile.File) (*tsfile.File, error) {
	f := &tsfile.File{
		Version:        tsfile.DefaultVersion,
		Language:       po.HeaderField("Language"),
		SourceLanguage: po.HeaderField(sourceLanguageHeader),
	}

	byName := make(map[string]*tsfile.Context)
	for _, e := range po.Entries {
		name, comment, _ := strings.Cut(e.MsgCtxt, contextSeparator)
		if name == "" {
			return nil, fmt.Errorf("entry %q has no context", e.MsgID)
		}
		c, ok := byName[name]
		if !ok {
			c = &tsfile.Context{Name: name}
			byName[name] = c
			f.Contexts = append(f.Contexts, c)
		}
		c.Messages = append(c.Messages, fromEntry(e, comment))
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func fromEntry(e *pofile.Entry, comment string) *tsfile.Message {
	m := &tsfile.Message{
		Source:  e.MsgID,
		Comment: comment,
	}
	for _, ref := range e.References {
		m.Locations = append(m.Locations, parseReference(ref))
	}

	var extra []string
	for _, c := range e.ExtractedComments {
		if id, ok := strings.CutPrefix(c, idPrefix); ok {
			m.ID = id
			continue
		}
		extra = append(extra, c)
	}
	m.ExtraComment = strings.Join(extra, "\n")
	m.TranslatorComment = strings.Join(e.TranslatorComments, "\n")

	switch {
	case e.Obsolete:
		m.Type = tsfile.TypeObsolete
	case e.IsFuzzy():
		m.Type = tsfile.TypeUnfinished
	}

	if e.MsgIDPlural != "" {
		m.Numerus = true
		m.NumerusForms = e.PluralForms()
	} else {
		m.Translation = e.MsgStr
	}
	return m
}

// parseReference splits "file:line". A reference without a numeric line
// is taken as a bare file name.
func parseReference(ref string) tsfile.Location {
	if idx := strings.LastIndex(ref, ":"); idx > 0 {
		if line, err := strconv.Atoi(ref[idx+1:]); err == nil {
			return tsfile.Location{File: ref[:idx], Line: line}
		}
	}
	return tsfile.Location{File: ref}
}
