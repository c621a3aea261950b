package watchlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_CleansEntries(t *testing.T) {
	input := "\xEF\xBB\xBF" + `
# comment, 2
"Meteor", 2
  'Death' : , 1
Chainspell,1

no comma here
Hundred Fists:, 2
`
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []Entry{
		{Move: "Meteor", Key: "meteor", Level: Critical},
		{Move: "Death", Key: "death", Level: Watch},
		{Move: "Chainspell", Key: "chainspell", Level: Watch},
		{Move: "Hundred Fists", Key: "hundred fists", Level: Critical},
	}
	got := res.List.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries = %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %#v, want %#v", i, got[i], want[i])
		}
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("Skipped = %v, want none", res.Skipped)
	}
}

func TestParse_SplitsOnLastComma(t *testing.T) {
	res, err := Parse(strings.NewReader("Tornado, Kick, 2\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	level, ok := res.List.Lookup("Tornado, Kick")
	if !ok || level != Critical {
		t.Fatalf("Lookup = (%v, %v), want (critical, true)", level, ok)
	}
}

func TestParse_SkipsMalformedLevels(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{"non numeric", "Meteor, high", "invalid level"},
		{"missing level", "Meteor,", "invalid level"},
		{"zero", "Meteor, 0", "out of range"},
		{"three", "Meteor, 3", "out of range"},
		{"empty move", `"", 2`, "empty move name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader("Ok, 1\n" + tt.line + "\n"))
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if res.List.Len() != 1 {
				t.Fatalf("Len = %d, want 1", res.List.Len())
			}
			if len(res.Skipped) != 1 {
				t.Fatalf("Skipped = %v, want one entry", res.Skipped)
			}
			skip := res.Skipped[0]
			if skip.Line != 2 {
				t.Errorf("Skipped line = %d, want 2", skip.Line)
			}
			if !strings.Contains(skip.Reason, tt.reason) {
				t.Errorf("Skipped reason = %q, want it to contain %q", skip.Reason, tt.reason)
			}
		})
	}
}

func TestParse_DuplicateKeepsPositionTakesLaterLevel(t *testing.T) {
	res, err := Parse(strings.NewReader("Meteor, 1\nDeath, 1\nMeteor, 2\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got := res.List.Entries()
	if len(got) != 2 {
		t.Fatalf("Entries = %#v, want 2 entries", got)
	}
	if got[0].Move != "Meteor" || got[0].Level != Critical {
		t.Fatalf("first entry = %#v, want Meteor at critical", got[0])
	}
	if got[1].Move != "Death" {
		t.Fatalf("second entry = %#v, want Death", got[1])
	}
}

func TestParseYAML_KeepsDocumentOrder(t *testing.T) {
	input := `
Meteor: 2
"Death": 1
Bad: nope
Chainspell: 1
Nested: [1]
`
	res, err := ParseYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseYAML returned error: %v", err)
	}
	got := res.List.Entries()
	names := make([]string, 0, len(got))
	for _, e := range got {
		names = append(names, e.Move)
	}
	if strings.Join(names, ",") != "Meteor,Death,Chainspell" {
		t.Fatalf("moves = %v, want [Meteor Death Chainspell]", names)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2", res.Skipped)
	}
}

func TestParseYAML_RejectsNonMapping(t *testing.T) {
	if _, err := ParseYAML(strings.NewReader("- Meteor\n- Death\n")); err == nil {
		t.Fatal("ParseYAML returned nil error, want mapping error")
	}
}

func TestLoad_PicksParserByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "watchlist.txt")
	yml := filepath.Join(dir, "watchlist.yaml")
	if err := os.WriteFile(txt, []byte("Meteor, 2\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(yml, []byte("Meteor: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	res, err := Load(txt)
	if err != nil {
		t.Fatalf("Load(txt) returned error: %v", err)
	}
	if level, _ := res.List.Lookup("Meteor"); level != Critical {
		t.Fatalf("txt level = %v, want critical", level)
	}

	res, err = Load(yml)
	if err != nil {
		t.Fatalf("Load(yaml) returned error: %v", err)
	}
	if level, _ := res.List.Lookup("Meteor"); level != Watch {
		t.Fatalf("yaml level = %v, want watch", level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}
