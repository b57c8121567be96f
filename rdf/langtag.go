package rdf

import "golang.org/x/text/language"

// IsValidLanguageTag reports whether tag parses as a well-formed BCP-47
// language tag. Neither parser calls this from its hot path — the N-Quads
// @lang tail and the RDF/XML xml:lang chain both accept any tag verbatim,
// matching the grammar's lenient token surface. It is exposed for callers
// who want to validate Literal.Lang values after the fact.
func IsValidLanguageTag(tag string) bool {
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}
