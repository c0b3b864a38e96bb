// Package pofile implements reading and writing of PO files following the
// GNU gettext format. tskit uses it to exchange TS catalogs with
// gettext-based translation tools.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entry represents a single translatable message in a PO file.
type Entry struct {
	// TranslatorComments are "# " lines.
	TranslatorComments []string
	// ExtractedComments are "#." lines.
	ExtractedComments []string
	// References are "#:" locations, one "file:line" each. File names
	// may contain spaces.
	References []string
	// Flags are "#," entries.
	Flags []string

	MsgCtxt      string
	MsgID        string
	MsgIDPlural  string
	MsgStr       string
	MsgStrPlural map[int]string

	// Obsolete marks entries prefixed with "#~".
	Obsolete bool
}

// IsFuzzy returns true if the entry is marked fuzzy.
func (e *Entry) IsFuzzy() bool { return e.HasFlag("fuzzy") }

// HasFlag checks if a specific flag is present.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// PluralForms returns MsgStrPlural ordered by index.
func (e *Entry) PluralForms() []string {
	indices := make([]int, 0, len(e.MsgStrPlural))
	for idx := range e.MsgStrPlural {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	forms := make([]string, 0, len(indices))
	for _, idx := range indices {
		forms = append(forms, e.MsgStrPlural[idx])
	}
	return forms
}

// File represents a parsed PO file.
type File struct {
	// Header is the metadata entry (msgid "").
	Header  *Entry
	Entries []*Entry
}

// NewFile creates a new empty PO file.
func NewFile() *File {
	return &File{Header: &Entry{}}
}

// HeaderField returns a header field value by name.
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// MakeHeader builds the header entry for a catalog exported to language.
func MakeHeader(project, language string, numerus bool) *Entry {
	now := time.Now().UTC().Format("2006-01-02 15:04+0000")
	var b strings.Builder
	fmt.Fprintf(&b, "Project-Id-Version: %s\n", project)
	fmt.Fprintf(&b, "PO-Revision-Date: %s\n", now)
	fmt.Fprintf(&b, "Language: %s\n", language)
	b.WriteString("MIME-Version: 1.0\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\n")
	if numerus {
		fmt.Fprintf(&b, "Plural-Forms: %s\n", PluralFormsForLang(language))
	}
	return &Entry{MsgStr: b.String()}
}

// PluralFormsForLang returns the standard Plural-Forms header for a language code.
func PluralFormsForLang(lang string) string {
	base := lang
	if idx := strings.IndexAny(lang, "_-"); idx > 0 {
		base = lang[:idx]
	}
	switch base {
	case "ja", "ko", "zh", "vi", "th", "id", "ms":
		return "nplurals=1; plural=0;"
	case "fr", "pt":
		return "nplurals=2; plural=(n > 1);"
	case "ru", "uk", "be", "hr", "sr", "bs":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "pl":
		return "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "cs", "sk":
		return "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"
	case "ar":
		return "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);"
	default:
		return "nplurals=2; plural=(n != 1);"
	}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads a PO file from disk.
func ParseFile(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	f, err := Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse reads a PO file. Entries are separated by blank lines.
func Parse(r io.Reader) (*File, error) {
	f := NewFile()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cur *Entry
	var target *string          // field receiving continuation lines
	var plurals map[int]*string // msgstr[N] text of cur; map values are not addressable
	lineNum := 0

	flush := func() {
		if cur == nil {
			return
		}
		for idx, text := range plurals {
			cur.MsgStrPlural[idx] = *text
		}
		if cur.MsgID == "" && cur.MsgCtxt == "" && !cur.Obsolete {
			f.Header = cur
		} else {
			f.Entries = append(f.Entries, cur)
		}
		cur, target, plurals = nil, nil, nil
	}

	field := func(name string) (*string, error) {
		switch name {
		case "msgctxt":
			return &cur.MsgCtxt, nil
		case "msgid":
			return &cur.MsgID, nil
		case "msgid_plural":
			return &cur.MsgIDPlural, nil
		case "msgstr":
			return &cur.MsgStr, nil
		}
		if strings.HasPrefix(name, "msgstr[") && strings.HasSuffix(name, "]") {
			idx, err := strconv.Atoi(name[len("msgstr[") : len(name)-1])
			if err != nil {
				return nil, fmt.Errorf("invalid msgstr index: %s", name)
			}
			text := new(string)
			plurals[idx] = text
			return text, nil
		}
		return nil, fmt.Errorf("unknown keyword %q", name)
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if cur == nil {
			cur = &Entry{MsgStrPlural: make(map[int]string)}
			plurals = make(map[int]*string)
		}
		if strings.HasPrefix(line, "#~") {
			cur.Obsolete = true
			line = strings.TrimSpace(line[2:])
		}

		switch {
		case strings.HasPrefix(line, "#:"):
			cur.References = append(cur.References, splitReferences(line[2:])...)
		case strings.HasPrefix(line, "#,"):
			for _, flag := range strings.Split(line[2:], ",") {
				if flag = strings.TrimSpace(flag); flag != "" {
					cur.Flags = append(cur.Flags, flag)
				}
			}
		case strings.HasPrefix(line, "#."):
			cur.ExtractedComments = append(cur.ExtractedComments, strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "#|"):
			// previous-msgid lines are not carried over
		case strings.HasPrefix(line, "#"):
			cur.TranslatorComments = append(cur.TranslatorComments, strings.TrimPrefix(line[1:], " "))
		case strings.HasPrefix(line, "\""):
			if target == nil {
				return nil, fmt.Errorf("line %d: continuation without a field", lineNum)
			}
			*target += unquote(line)
		default:
			keyword, value, ok := strings.Cut(line, " ")
			if !ok {
				return nil, fmt.Errorf("line %d: invalid line: %s", lineNum, line)
			}
			t, err := field(keyword)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			*t = unquote(value)
			target = t
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	flush()
	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile writes the PO file to disk.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return f.Write(out)
}

// Write writes the PO file to w.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.Header != nil {
		writeEntry(bw, f.Header)
	}
	for _, e := range f.Entries {
		bw.WriteString("\n")
		writeEntry(bw, e)
	}
	return bw.Flush()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	for _, c := range e.TranslatorComments {
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", formatReference(ref))
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}
	if e.MsgCtxt != "" {
		writeField(w, prefix, "msgctxt", e.MsgCtxt)
	}
	writeField(w, prefix, "msgid", e.MsgID)
	if e.MsgIDPlural != "" {
		writeField(w, prefix, "msgid_plural", e.MsgIDPlural)
		for i, form := range e.PluralForms() {
			writeField(w, prefix, fmt.Sprintf("msgstr[%d]", i), form)
		}
		if len(e.MsgStrPlural) > 0 {
			return
		}
	}
	writeField(w, prefix, "msgstr", e.MsgStr)
}

// writeField writes a keyword and its quoted value, splitting after each newline.
func writeField(w *bufio.Writer, prefix, keyword, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s%s %s\n", prefix, keyword, quote(value))
		return
	}
	fmt.Fprintf(w, "%s%s \"\"\n", prefix, keyword)
	for _, part := range strings.SplitAfter(value, "\n") {
		if part != "" {
			fmt.Fprintf(w, "%s%s\n", prefix, quote(part))
		}
	}
}

// File names with whitespace are wrapped in Unicode isolates, as GNU
// gettext 0.20+ does: "#: \u2068My Form.ui\u2069:12".
const (
	isolateStart = '\u2068'
	isolateEnd   = '\u2069'
)

// formatReference isolates the file part of ref when it contains whitespace.
func formatReference(ref string) string {
	if !strings.ContainsAny(ref, " \t") {
		return ref
	}
	file, line := ref, ""
	if idx := strings.LastIndex(ref, ":"); idx > 0 {
		if _, err := strconv.Atoi(ref[idx+1:]); err == nil {
			file, line = ref[:idx], ref[idx:]
		}
	}
	return string(isolateStart) + file + string(isolateEnd) + line
}

// splitReferences splits a "#:" line on whitespace outside isolates and
// drops the isolate marks.
func splitReferences(s string) []string {
	var refs []string
	var b strings.Builder
	isolated := false
	for _, r := range s {
		switch {
		case r == isolateStart:
			isolated = true
		case r == isolateEnd:
			isolated = false
		case (r == ' ' || r == '\t') && !isolated:
			if b.Len() > 0 {
				refs = append(refs, b.String())
				b.Reset()
			}
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		refs = append(refs, b.String())
	}
	return refs
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
