package convert

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/minios-linux/tskit/pofile"
	"github.com/minios-linux/tskit/tsfile"
)

func poRoundTrip(t *testing.T, f *tsfile.File) *tsfile.File {
	t.Helper()
	var buf bytes.Buffer
	if err := ToPO(f, "carbon-calculator").Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	po, err := pofile.Parse(&buf)
	if err != nil {
		t.Fatalf("pofile.Parse error: %v\n%s", err, buf.String())
	}
	back, err := FromPO(po)
	if err != nil {
		t.Fatalf("FromPO error: %v", err)
	}
	return back
}

func TestCarbonCatalogSurvivesPO(t *testing.T) {
	f, err := tsfile.ParseFile("../tsfile/testdata/es.ts")
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}

	po := ToPO(f, "carbon-calculator")
	if got := po.HeaderField("Language"); got != "es_US" {
		t.Fatalf("Language header = %q, want es_US", got)
	}
	if got := po.HeaderField("X-Source-Language"); got != "en_US" {
		t.Fatalf("X-Source-Language header = %q, want en_US", got)
	}
	if len(po.Entries) != 62 {
		t.Fatalf("entries = %d, want 62", len(po.Entries))
	}
	first := po.Entries[0]
	if first.MsgCtxt != "GeneralWidget" || first.MsgID != "General" {
		t.Fatalf("first entry = %q/%q", first.MsgCtxt, first.MsgID)
	}
	if want := []string{"generalTabWidget.ui:17", "ui_generalTabWidget.py:506"}; !reflect.DeepEqual(first.References, want) {
		t.Fatalf("References = %v, want %v", first.References, want)
	}

	if back := poRoundTrip(t, f); !reflect.DeepEqual(f, back) {
		t.Fatal("TS -> PO -> TS changed the catalog")
	}
}

func TestMessageMetadataSurvivesPO(t *testing.T) {
	f := &tsfile.File{
		Version:        tsfile.DefaultVersion,
		Language:       "es",
		SourceLanguage: "en",
		Contexts: []*tsfile.Context{{
			Name: "settingsWidget",
			Messages: []*tsfile.Message{
				{
					ID:                "settings.open",
					Locations:         []tsfile.Location{{File: "settings.ui", Line: 115}, {File: "forms/Key Dialog.ui", Line: 9}, {File: "read me.txt"}, {File: "notes.txt"}},
					Source:            "Open",
					Comment:           "verb",
					ExtraComment:      "Button label",
					TranslatorComment: "revisar\ncon Luis",
					Translation:       "Abrir",
				},
				{
					Source:      "Open",
					Comment:     "adjective",
					Translation: "Abierto",
					Type:        tsfile.TypeUnfinished,
				},
				{
					Numerus:      true,
					Source:       "%n key(s)",
					NumerusForms: []string{"%n llave", "%n llaves"},
				},
				{
					Source:      "Old label",
					Translation: "Etiqueta vieja",
					Type:        tsfile.TypeObsolete,
				},
			},
		}},
	}

	po := ToPO(f, "carbon-calculator")
	if po.Entries[0].MsgCtxt != "settingsWidget|verb" {
		t.Fatalf("msgctxt = %q, want settingsWidget|verb", po.Entries[0].MsgCtxt)
	}
	if !po.Entries[1].IsFuzzy() {
		t.Fatal("unfinished message should export as fuzzy")
	}
	if po.HeaderField("Plural-Forms") == "" {
		t.Fatal("numerus catalog should carry Plural-Forms")
	}
	if !po.Entries[3].Obsolete {
		t.Fatal("obsolete message should export as #~")
	}

	if back := poRoundTrip(t, f); !reflect.DeepEqual(f, back) {
		t.Fatalf("round trip mismatch: %#v", back.Contexts[0].Messages[0])
	}
}

func TestFromPORejectsInvalidCatalogs(t *testing.T) {
	noContext := pofile.NewFile()
	noContext.Entries = []*pofile.Entry{{MsgID: "Settings", MsgStr: "Configuración"}}
	if _, err := FromPO(noContext); err == nil {
		t.Fatal("FromPO should reject entries without msgctxt")
	}

	dup := pofile.NewFile()
	dup.Entries = []*pofile.Entry{
		{MsgCtxt: "GeneralWidget", MsgID: "Settings", MsgStr: "Configuración"},
		{MsgCtxt: "GeneralWidget", MsgID: "Settings", MsgStr: "Ajustes"},
	}
	if _, err := FromPO(dup); !errors.Is(err, tsfile.ErrDuplicateMessage) {
		t.Fatalf("FromPO(dup) error = %v, want ErrDuplicateMessage", err)
	}
}

func TestParseReference(t *testing.T) {
	tests := map[string]tsfile.Location{
		"settings.ui:141": {File: "settings.ui", Line: 141},
		"notes.txt":       {File: "notes.txt"},
		"C:/src/app.ui:7": {File: "C:/src/app.ui", Line: 7},
		"weird:name:oops": {File: "weird:name:oops"},
	}
	for ref, want := range tests {
		if got := parseReference(ref); got != want {
			t.Fatalf("parseReference(%q) = %#v, want %#v", ref, got, want)
		}
	}
}
