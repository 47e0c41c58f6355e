package hashing

import (
	"strings"
	"unicode"
)

// Stop words carry no topical signal and are skipped.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "how": true, "what": true, "when": true, "why": true,
	"or": true, "i": true, "my": true, "can": true, "if": true, "into": true,
}

// tokenize splits text into lowercase word tokens. Identifiers are kept whole
// and additionally split at case changes, digits and underscores.
func tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		parts := splitIdentifier(word)
		whole := strings.ToLower(strings.Trim(word, "_"))
		if whole != "" && !stopWords[whole] {
			tokens = append(tokens, whole)
		}
		if len(parts) < 2 {
			continue
		}
		for _, part := range parts {
			if !stopWords[part] {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// splitIdentifier breaks camelCase, PascalCase, snake_case and letter/digit
// boundaries into lowercase parts. "HTTPServer2_conf" becomes
// ["http", "server", "2", "conf"].
func splitIdentifier(word string) []string {
	runes := []rune(word)
	var (
		parts   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if r == '_' {
			flush()
			continue
		}
		if i > 0 && len(current) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return parts
}

// trigrams returns the character trigrams of token padded with boundary
// markers. Tokens shorter than three runes yield none.
func trigrams(token string) []string {
	runes := []rune("^" + token + "$")
	if len(runes) < 5 {
		return nil
	}
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+3]))
	}
	return grams
}
