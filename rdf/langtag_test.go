package rdf

import "testing"

func TestIsValidLanguageTag(t *testing.T) {
	cases := []struct {
		tag  string
		want bool
	}{
		{"en", true},
		{"en-US", true},
		{"pt-BR", true},
		{"", false},
		{"not a tag", false},
		{"!!!", false},
	}
	for _, c := range cases {
		if got := IsValidLanguageTag(c.tag); got != c.want {
			t.Errorf("IsValidLanguageTag(%q) = %v, want %v", c.tag, got, c.want)
		}
	}
}

// The parser itself accepts any @lang tail verbatim (spec.md §4.1's AFTER_LITERAL
// dispatch never validates it); IsValidLanguageTag lets a caller check a
// parsed Literal's Lang after the fact.
func TestIsValidLanguageTagRejectsIllFormedTagTheParserCaptured(t *testing.T) {
	sink := runNQuads(t, `<http://s> <http://p> "hi"@en-overlongsubtag .`, 0)
	got := sink.Statements[0].Lang
	if got != "en-overlongsubtag" {
		t.Fatalf("expected the parser to capture the tag verbatim, got %q", got)
	}
	if IsValidLanguageTag(got) {
		t.Fatalf("expected %q to be rejected by IsValidLanguageTag", got)
	}
}
