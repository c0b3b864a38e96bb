package tsfile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by ParseError. Test with errors.Is.
var (
	// ErrMalformed means the document is not well-formed XML or is not a TS document.
	ErrMalformed = errors.New("malformed TS document")
	// ErrMissingField means a required element is absent (context <name>,
	// message <source> or <translation>).
	ErrMissingField = errors.New("missing required element")
	// ErrDuplicateContext means two contexts share a name.
	ErrDuplicateContext = errors.New("duplicate context")
	// ErrDuplicateMessage means two active messages in one context share
	// (source, comment), or two messages share an id.
	ErrDuplicateMessage = errors.New("duplicate message")
)

// ParseError describes why a TS document could not be loaded.
type ParseError struct {
	// Path is the file name, empty when parsing from memory.
	Path string
	// Line and Column locate the offending element (1-based, 0 if unknown).
	Line   int
	Column int
	// Context is the enclosing context name, if known.
	Context string
	// Source is the offending message source text, if known.
	Source string
	// Detail is a human-readable explanation.
	Detail string
	// Err is one of the sentinel errors above.
	Err error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(":")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Line, e.Column)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "context %q: ", e.Context)
	}
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// checker enforces the uniqueness rules shared by Parse and Validate.
type checker struct {
	contexts map[string]bool
	ids      map[string]bool
	keys     map[Key]bool
}

func newChecker() *checker {
	return &checker{
		contexts: make(map[string]bool),
		ids:      make(map[string]bool),
	}
}

// beginContext resets the per-context key set.
func (ck *checker) beginContext() {
	ck.keys = make(map[Key]bool)
}

// endContext registers a finished context name.
func (ck *checker) endContext(name string) *ParseError {
	if ck.contexts[name] {
		return &ParseError{Context: name, Err: ErrDuplicateContext, Detail: fmt.Sprintf("%q defined more than once", name)}
	}
	ck.contexts[name] = true
	return nil
}

func (ck *checker) message(context string, m *Message) *ParseError {
	if m.IsObsolete() {
		return nil
	}
	k := m.Key()
	if ck.keys[k] {
		detail := fmt.Sprintf("source %q", m.Source)
		if m.Comment != "" {
			detail += fmt.Sprintf(" with comment %q", m.Comment)
		}
		return &ParseError{Context: context, Source: m.Source, Err: ErrDuplicateMessage, Detail: detail}
	}
	ck.keys[k] = true
	if m.ID != "" {
		if ck.ids[m.ID] {
			return &ParseError{Context: context, Source: m.Source, Err: ErrDuplicateMessage, Detail: fmt.Sprintf("id %q", m.ID)}
		}
		ck.ids[m.ID] = true
	}
	return nil
}
