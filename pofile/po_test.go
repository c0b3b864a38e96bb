package pofile

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParseWriteRoundTrip(t *testing.T) {
	input := `msgid ""
msgstr ""
"Project-Id-Version: carbon-calculator\n"
"Language: es_US\n"

#. Tab title
#: generalTabWidget.ui:17 ui_generalTabWidget.py:506
msgctxt "GeneralWidget"
msgid "General"
msgstr "General"

# checked by Luis
#, fuzzy
msgctxt "visualizationTab"
msgid "%n graph(s)"
msgid_plural "%n graph(s)"
msgstr[0] "%n gráfico"
msgstr[1] "%n gráficos"

msgctxt "feedbackTabWidget"
msgid ""
"line one\n"
"line \"two\""
msgstr "otra"

#~ msgctxt "MainWindow"
#~ msgid "Old"
#~ msgstr "Viejo"
`

	f, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := f.HeaderField("language"); got != "es_US" {
		t.Fatalf("HeaderField(language) = %q, want es_US", got)
	}
	if len(f.Entries) != 4 {
		t.Fatalf("entries len = %d, want 4", len(f.Entries))
	}

	general := f.Entries[0]
	if general.MsgCtxt != "GeneralWidget" || general.MsgID != "General" {
		t.Fatalf("first entry = %#v", general)
	}
	if want := []string{"generalTabWidget.ui:17", "ui_generalTabWidget.py:506"}; !reflect.DeepEqual(general.References, want) {
		t.Fatalf("References = %v, want %v", general.References, want)
	}

	plural := f.Entries[1]
	if !plural.IsFuzzy() || plural.TranslatorComments[0] != "checked by Luis" {
		t.Fatalf("plural entry flags/comments = %v/%v", plural.Flags, plural.TranslatorComments)
	}
	if want := []string{"%n gráfico", "%n gráficos"}; !reflect.DeepEqual(plural.PluralForms(), want) {
		t.Fatalf("PluralForms() = %v, want %v", plural.PluralForms(), want)
	}

	if got := f.Entries[2].MsgID; got != "line one\nline \"two\"" {
		t.Fatalf("multiline msgid = %q", got)
	}
	if !f.Entries[3].Obsolete || f.Entries[3].MsgStr != "Viejo" {
		t.Fatalf("obsolete entry = %#v", f.Entries[3])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	round, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse roundtrip error: %v", err)
	}
	if !reflect.DeepEqual(f, round) {
		t.Fatalf("roundtrip mismatch:\n%s", buf.String())
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := []string{
		"msgid \"a\"\nbogus \"b\"\n",
		"\"orphan continuation\"\n",
		"msgid \"a\"\nmsgstr[x] \"b\"\n",
		"msgid\n",
	}
	for _, input := range tests {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Fatalf("Parse(%q) should fail", input)
		}
	}
}

func TestMakeHeaderAndPluralForms(t *testing.T) {
	f := NewFile()
	f.Header = MakeHeader("carbon-calculator", "es_US", true)
	if got := f.HeaderField("Language"); got != "es_US" {
		t.Fatalf("Language = %q, want es_US", got)
	}
	if got := f.HeaderField("Plural-Forms"); got != "nplurals=2; plural=(n != 1);" {
		t.Fatalf("Plural-Forms = %q", got)
	}
	if got := MakeHeader("x", "es", false); strings.Contains(got.MsgStr, "Plural-Forms") {
		t.Fatal("Plural-Forms should be omitted without numerus messages")
	}

	cases := map[string]string{
		"ru":    "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
		"pt-BR": "nplurals=2; plural=(n > 1);",
		"ja":    "nplurals=1; plural=0;",
		"zz":    "nplurals=2; plural=(n != 1);",
	}
	for lang, want := range cases {
		if got := PluralFormsForLang(lang); got != want {
			t.Fatalf("PluralFormsForLang(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestReferencesWithSpaces(t *testing.T) {
	f := NewFile()
	f.Entries = []*Entry{{
		References:   []string{"forms/Key Dialog.ui:9", "read me.txt", "main.py:12"},
		MsgCtxt:      "settingsWidget",
		MsgID:        "add key here...",
		MsgStr:       "Aplica tu Llave aqui...",
		MsgStrPlural: map[int]string{},
	}}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !strings.Contains(buf.String(), "#: \u2068forms/Key Dialog.ui\u2069:9\n") {
		t.Fatalf("file name with spaces not isolated:\n%s", buf.String())
	}

	round, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := round.Entries[0].References; !reflect.DeepEqual(got, f.Entries[0].References) {
		t.Fatalf("References = %q, want %q", got, f.Entries[0].References)
	}

	got := splitReferences(" a.ui:1 \u2068b c.ui\u2069:2\td.ui")
	if want := []string{"a.ui:1", "b c.ui:2", "d.ui"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("splitReferences() = %q, want %q", got, want)
	}
}
