package tsfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFile writes the document to disk, creating parent directories.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, f.Marshal(), 0644)
}

// Marshal produces lupdate-style XML. Locations are always written with
// absolute line numbers.
func (f *File) Marshal() []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<!DOCTYPE TS>\n")

	version := f.Version
	if version == "" {
		version = DefaultVersion
	}
	fmt.Fprintf(&b, `<TS version="%s"`, escape(version))
	if f.Language != "" {
		fmt.Fprintf(&b, ` language="%s"`, escape(f.Language))
	}
	if f.SourceLanguage != "" {
		fmt.Fprintf(&b, ` sourcelanguage="%s"`, escape(f.SourceLanguage))
	}
	b.WriteString(">\n")

	for _, c := range f.Contexts {
		b.WriteString("<context>\n")
		fmt.Fprintf(&b, "    <name>%s</name>\n", escape(c.Name))
		if c.Comment != "" {
			fmt.Fprintf(&b, "    <comment>%s</comment>\n", escape(c.Comment))
		}
		for _, m := range c.Messages {
			writeMessage(&b, m)
		}
		b.WriteString("</context>\n")
	}

	b.WriteString("</TS>\n")
	return []byte(b.String())
}

func writeMessage(b *strings.Builder, m *Message) {
	b.WriteString("    <message")
	if m.ID != "" {
		fmt.Fprintf(b, ` id="%s"`, escape(m.ID))
	}
	if m.Numerus {
		b.WriteString(` numerus="yes"`)
	}
	b.WriteString(">\n")

	for _, loc := range m.Locations {
		b.WriteString("        <location")
		if loc.File != "" {
			fmt.Fprintf(b, ` filename="%s"`, escape(loc.File))
		}
		if loc.Line > 0 {
			fmt.Fprintf(b, ` line="%d"`, loc.Line)
		}
		b.WriteString("/>\n")
	}

	fmt.Fprintf(b, "        <source>%s</source>\n", escape(m.Source))
	writeOptional(b, "oldsource", m.OldSource)
	writeOptional(b, "comment", m.Comment)
	writeOptional(b, "oldcomment", m.OldComment)
	writeOptional(b, "extracomment", m.ExtraComment)
	writeOptional(b, "translatorcomment", m.TranslatorComment)

	b.WriteString("        <translation")
	if m.Type != TypeFinished {
		fmt.Fprintf(b, ` type="%s"`, escape(string(m.Type)))
	}
	b.WriteString(">")
	if m.Numerus {
		for _, form := range m.NumerusForms {
			fmt.Fprintf(b, "\n            <numerusform>%s</numerusform>", escape(form))
		}
		if len(m.NumerusForms) > 0 {
			b.WriteString("\n        ")
		}
	} else {
		b.WriteString(escape(m.Translation))
	}
	b.WriteString("</translation>\n")
	b.WriteString("    </message>\n")
}

func writeOptional(b *strings.Builder, elem, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "        <%s>%s</%s>\n", elem, escape(value), elem)
}

// escape applies Qt's TS escaping. Control characters other than newline
// and tab become <byte> elements, which the XML decoder would otherwise reject.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '\n', '\t':
			b.WriteRune(r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `<byte value="x%x"/>`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
