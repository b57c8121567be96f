package rdf

// IsValidNCName reports whether value is a non-colonized XML name: it must
// be non-empty, start with a letter or underscore, and contain only name
// characters thereafter. No colon is permitted anywhere. Required for
// rdf:ID values and for resolveNoResolve's bare-name inputs.
func IsValidNCName(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if i == 0 {
			if !isNCNameStartChar(ch) {
				return false
			}
			continue
		}
		if !isNCNameChar(ch) {
			return false
		}
	}
	return true
}

func isNCNameStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_' || ch >= 0x80
}

func isNCNameChar(ch byte) bool {
	return isNCNameStartChar(ch) || (ch >= '0' && ch <= '9') || ch == '-' || ch == '.' || ch >= 0x80
}
