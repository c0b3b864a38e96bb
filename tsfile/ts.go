// Package tsfile implements reading and writing of Qt Linguist .ts
// translation catalogs (TS format version 2.x).
//
// A document holds contexts (usually one per UI form), each holding
// messages keyed by source text plus an optional disambiguation comment.
// Parse enforces that keys are unique among the active messages of a
// context and that context names are unique within the document.
package tsfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spkg/bom"
)

// DefaultVersion is written when File.Version is empty.
const DefaultVersion = "2.1"

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// TranslationType is the type="…" attribute of a <translation> element.
type TranslationType string

const (
	// TypeFinished marks a reviewed translation (no type attribute).
	TypeFinished TranslationType = ""
	// TypeUnfinished marks a translation that still needs work.
	TypeUnfinished TranslationType = "unfinished"
	// TypeObsolete marks a message no longer present in the sources.
	TypeObsolete TranslationType = "obsolete"
	// TypeVanished is the newer lupdate spelling of obsolete.
	TypeVanished TranslationType = "vanished"
)

// Location is a source reference hint. It is informational only.
type Location struct {
	File string
	Line int
}

// Key identifies a message within its context.
type Key struct {
	Source  string
	Comment string
}

// Message is a single source/translation pair.
type Message struct {
	// ID is the optional id="…" attribute used by id-based lookups.
	ID string
	// Numerus is set for numerus="yes" messages; their text lives in NumerusForms.
	Numerus bool
	// Locations are the <location> hints in document order.
	Locations []Location

	Source    string
	OldSource string
	// Comment is the disambiguation text.
	Comment    string
	OldComment string
	// ExtraComment is the developer comment (<extracomment>).
	ExtraComment      string
	TranslatorComment string

	Translation  string
	NumerusForms []string
	Type         TranslationType
}

// Key returns the lookup key of the message.
func (m *Message) Key() Key { return Key{Source: m.Source, Comment: m.Comment} }

// IsObsolete reports whether the message is obsolete or vanished.
func (m *Message) IsObsolete() bool {
	return m.Type == TypeObsolete || m.Type == TypeVanished
}

// IsFinished reports whether the translation is active and not marked unfinished.
func (m *Message) IsFinished() bool { return m.Type == TypeFinished }

// IsTranslated reports whether the message is finished and carries text.
func (m *Message) IsTranslated() bool {
	if !m.IsFinished() {
		return false
	}
	if m.Numerus {
		if len(m.NumerusForms) == 0 {
			return false
		}
		for _, f := range m.NumerusForms {
			if f == "" {
				return false
			}
		}
		return true
	}
	return m.Translation != ""
}

// Text returns the translation text. For numerus messages it is the first form.
func (m *Message) Text() string {
	if m.Numerus {
		if len(m.NumerusForms) == 0 {
			return ""
		}
		return m.NumerusForms[0]
	}
	return m.Translation
}

// Context is a named group of messages.
type Context struct {
	Name     string
	Comment  string
	Messages []*Message
}

// Message returns the active message with the given key, or nil.
func (c *Context) Message(source, comment string) *Message {
	for _, m := range c.Messages {
		if m.Source == source && m.Comment == comment && !m.IsObsolete() {
			return m
		}
	}
	return nil
}

// File is a parsed TS document.
type File struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []*Context
}

// Context returns the context with the given name, or nil.
func (f *File) Context(name string) *Context {
	for _, c := range f.Contexts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Stats returns message counts. total counts active messages only.
func (f *File) Stats() (total, finished, unfinished, obsolete int) {
	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			switch {
			case m.IsObsolete():
				obsolete++
			case m.Type == TypeUnfinished:
				total++
				unfinished++
			default:
				total++
				finished++
			}
		}
	}
	return
}

// UnfinishedMessages returns active messages marked unfinished.
func (f *File) UnfinishedMessages() []*Message {
	var result []*Message
	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			if m.Type == TypeUnfinished {
				result = append(result, m)
			}
		}
	}
	return result
}

// Validate checks the invariants Parse enforces. It is meant for files
// assembled in code.
func (f *File) Validate() error {
	ck := newChecker()
	for _, c := range f.Contexts {
		if c.Name == "" {
			return &ParseError{Err: ErrMissingField, Detail: "context without <name>"}
		}
		ck.beginContext()
		for _, m := range c.Messages {
			if perr := ck.message(c.Name, m); perr != nil {
				return perr
			}
		}
		if perr := ck.endContext(c.Name); perr != nil {
			return perr
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a TS file. Errors are *ParseError.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return f, nil
}

// Parse parses TS document data.
func Parse(data []byte) (*File, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses a TS document from r. A leading UTF-8 byte order
// mark, as written by some Windows editors, is ignored.
func ParseReader(r io.Reader) (*File, error) {
	p := &parser{
		dec:   xml.NewDecoder(bom.NewReader(r)),
		lines: make(map[string]int),
		check: newChecker(),
	}
	return p.parse()
}

type parser struct {
	dec *xml.Decoder
	// curFile and lines resolve <location> elements that omit filename
	// or use relative line numbers.
	curFile string
	lines   map[string]int
	check   *checker
}

// fail builds a ParseError at the given position.
func (p *parser) fail(err error, line, col int, detail string) *ParseError {
	return &ParseError{Line: line, Column: col, Err: err, Detail: detail}
}

// at stamps a position onto an error from the checker.
func at(perr *ParseError, line, col int) *ParseError {
	perr.Line, perr.Column = line, col
	return perr
}

func (p *parser) token() (xml.Token, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		line, col := p.dec.InputPos()
		return nil, p.fail(ErrMalformed, line, col, "unexpected end of document")
	}
	if err != nil {
		if serr, ok := err.(*xml.SyntaxError); ok {
			return nil, p.fail(ErrMalformed, serr.Line, 0, serr.Msg)
		}
		line, col := p.dec.InputPos()
		return nil, p.fail(ErrMalformed, line, col, err.Error())
	}
	return tok, nil
}

func (p *parser) skip() error {
	if err := p.dec.Skip(); err != nil {
		line, col := p.dec.InputPos()
		return p.fail(ErrMalformed, line, col, err.Error())
	}
	return nil
}

func (p *parser) parse() (*File, error) {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, p.fail(ErrMalformed, 0, 0, "no <TS> root element")
		}
		if err != nil {
			if serr, ok := err.(*xml.SyntaxError); ok {
				return nil, p.fail(ErrMalformed, serr.Line, 0, serr.Msg)
			}
			return nil, p.fail(ErrMalformed, 0, 0, err.Error())
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "TS" {
			line, col := p.dec.InputPos()
			return nil, p.fail(ErrMalformed, line, col, fmt.Sprintf("unexpected root element <%s>", start.Name.Local))
		}
		return p.parseTS(start)
	}
}

func (p *parser) parseTS(start xml.StartElement) (*File, error) {
	f := &File{}
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "version":
			f.Version = attr.Value
		case "language":
			f.Language = attr.Value
		case "sourcelanguage":
			f.SourceLanguage = attr.Value
		}
	}

	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "context" {
				// <dependencies> and friends carry nothing we resolve.
				if err := p.skip(); err != nil {
					return nil, err
				}
				continue
			}
			c, err := p.parseContext()
			if err != nil {
				return nil, err
			}
			f.Contexts = append(f.Contexts, c)
		case xml.EndElement:
			return f, nil
		}
	}
}

func (p *parser) parseContext() (*Context, error) {
	line, col := p.dec.InputPos()
	c := &Context{}
	hasName := false
	p.check.beginContext()

	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if c.Name, err = p.readText(); err != nil {
					return nil, err
				}
				hasName = true
			case "comment":
				if c.Comment, err = p.readText(); err != nil {
					return nil, err
				}
			case "message":
				m, err := p.parseMessage(t, c.Name)
				if err != nil {
					return nil, err
				}
				c.Messages = append(c.Messages, m)
			default:
				if err := p.skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if !hasName {
				return nil, p.fail(ErrMissingField, line, col, "context without <name>")
			}
			if perr := p.check.endContext(c.Name); perr != nil {
				return nil, at(perr, line, col)
			}
			return c, nil
		}
	}
}

func (p *parser) parseMessage(start xml.StartElement, context string) (*Message, error) {
	line, col := p.dec.InputPos()
	m := &Message{}
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "id":
			m.ID = attr.Value
		case "numerus":
			m.Numerus = attr.Value == "yes"
		}
	}

	hasSource, hasTranslation := false, false
	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var err error
			switch t.Name.Local {
			case "location":
				var loc Location
				if loc, err = p.location(t); err == nil {
					m.Locations = append(m.Locations, loc)
					err = p.skip()
				}
			case "source":
				if hasSource {
					err = p.duplicate(t)
					break
				}
				m.Source, err = p.readText()
				hasSource = true
			case "oldsource":
				m.OldSource, err = p.readText()
			case "comment":
				m.Comment, err = p.readText()
			case "oldcomment":
				m.OldComment, err = p.readText()
			case "extracomment":
				m.ExtraComment, err = p.readText()
			case "translatorcomment":
				m.TranslatorComment, err = p.readText()
			case "translation":
				if hasTranslation {
					err = p.duplicate(t)
					break
				}
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" {
						m.Type = TranslationType(attr.Value)
					}
				}
				if m.Numerus {
					m.NumerusForms, err = p.readNumerusForms()
				} else {
					m.Translation, err = p.readText()
				}
				hasTranslation = true
			default:
				err = p.skip()
			}
			if err != nil {
				if perr, ok := err.(*ParseError); ok && perr.Context == "" {
					perr.Context, perr.Source = context, m.Source
				}
				return nil, err
			}
		case xml.EndElement:
			if !hasSource {
				perr := p.fail(ErrMissingField, line, col, "message without <source>")
				perr.Context = context
				return nil, perr
			}
			if !hasTranslation {
				perr := p.fail(ErrMissingField, line, col, fmt.Sprintf("message %q without <translation>", m.Source))
				perr.Context, perr.Source = context, m.Source
				return nil, perr
			}
			if perr := p.check.message(context, m); perr != nil {
				return nil, at(perr, line, col)
			}
			return m, nil
		}
	}
}

// duplicate reports a second occurrence of a single-valued message child.
func (p *parser) duplicate(t xml.StartElement) error {
	line, col := p.dec.InputPos()
	return p.fail(ErrMalformed, line, col, fmt.Sprintf("message has more than one <%s>", t.Name.Local))
}

// location resolves a <location> element. A missing filename means the
// previous file; a signed line is relative to the last line seen in that file.
func (p *parser) location(t xml.StartElement) (Location, error) {
	var lineAttr string
	for _, attr := range t.Attr {
		switch attr.Name.Local {
		case "filename":
			p.curFile = attr.Value
		case "line":
			lineAttr = attr.Value
		}
	}
	loc := Location{File: p.curFile}
	if lineAttr == "" {
		return loc, nil
	}
	n, err := strconv.Atoi(lineAttr)
	if err != nil {
		line, col := p.dec.InputPos()
		return loc, p.fail(ErrMalformed, line, col, fmt.Sprintf("invalid location line %q", lineAttr))
	}
	if lineAttr[0] == '+' || lineAttr[0] == '-' {
		n += p.lines[p.curFile]
	}
	p.lines[p.curFile] = n
	loc.Line = n
	return loc, nil
}

// readText reads character data up to the end of the current element.
// <byte value="…"/> escapes are decoded; with variants="yes" only the
// first <lengthvariant> is kept. Any other child element is malformed.
func (p *parser) readText() (string, error) {
	var b, variant strings.Builder
	hasVariant := false
	for {
		tok, err := p.token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "byte":
				r, err := p.byteValue(t)
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
				if err := p.skip(); err != nil {
					return "", err
				}
			case "lengthvariant":
				if hasVariant {
					if err := p.skip(); err != nil {
						return "", err
					}
					continue
				}
				s, err := p.readText()
				if err != nil {
					return "", err
				}
				variant.WriteString(s)
				hasVariant = true
			default:
				line, col := p.dec.InputPos()
				return "", p.fail(ErrMalformed, line, col, fmt.Sprintf("unexpected <%s> in text", t.Name.Local))
			}
		case xml.EndElement:
			if hasVariant {
				return variant.String(), nil
			}
			return b.String(), nil
		}
	}
}

func (p *parser) readNumerusForms() ([]string, error) {
	var forms []string
	for {
		tok, err := p.token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "numerusform" {
				line, col := p.dec.InputPos()
				return nil, p.fail(ErrMalformed, line, col, fmt.Sprintf("unexpected <%s> in numerus translation", t.Name.Local))
			}
			s, err := p.readText()
			if err != nil {
				return nil, err
			}
			forms = append(forms, s)
		case xml.EndElement:
			return forms, nil
		}
	}
}

// byteValue decodes value="x1b" (hex) or value="27" (decimal).
func (p *parser) byteValue(t xml.StartElement) (rune, error) {
	var v string
	for _, attr := range t.Attr {
		if attr.Name.Local == "value" {
			v = attr.Value
		}
	}
	var n int64
	var err error
	if strings.HasPrefix(v, "x") {
		n, err = strconv.ParseInt(v[1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(v, 10, 32)
	}
	if err != nil || v == "" {
		line, col := p.dec.InputPos()
		return 0, p.fail(ErrMalformed, line, col, fmt.Sprintf("invalid <byte value=%q>", v))
	}
	return rune(n), nil
}
