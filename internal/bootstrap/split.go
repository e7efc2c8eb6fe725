package bootstrap

import (
	"regexp"
	"strings"
	"unicode"
)

var triggerStart = regexp.MustCompile(`(?i)^CREATE\s+(TEMP\s+|TEMPORARY\s+)?TRIGGER\b`)

// Split cuts a schema script into statements on semicolons.
// Semicolons inside quoted strings, identifiers, comments and trigger bodies do not split.
// A trigger ends at the semicolon after the END matching its BEGIN; CASE opens a level too.
// Comments are dropped and empty statements skipped.
func Split(script string) []string {
	var (
		out     []string
		current strings.Builder
		word    strings.Builder
		depth   int
		runes   = []rune(script)
	)

	endWord := func() {
		switch strings.ToUpper(word.String()) {
		case "BEGIN", "CASE":
			depth++
		case "END":
			if depth > 0 {
				depth--
			}
		}

		word.Reset()
	}

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			out = append(out, stmt)
		}

		current.Reset()
		depth = 0
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if isWordRune(r) {
			word.WriteRune(r)
		} else {
			endWord()
		}

		switch {
		case r == '\'' || r == '"' || r == '`':
			end := closingQuote(runes, i, r)
			current.WriteString(string(runes[i : end+1]))
			i = end
		case r == '[':
			end := closingQuote(runes, i, ']')
			current.WriteString(string(runes[i : end+1]))
			i = end
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}

			current.WriteRune('\n')
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && (runes[i] != '*' || runes[i+1] != '/') {
				i++
			}

			i++

			current.WriteRune(' ')
		case r == ';':
			if depth > 0 && triggerStart.MatchString(strings.TrimSpace(current.String())) {
				current.WriteRune(r)
				continue
			}

			flush()
		default:
			current.WriteRune(r)
		}
	}

	endWord()
	flush()

	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// closingQuote returns the index of the quote closing the one opened at start.
// A doubled quote is an escaped quote. Unterminated quotes run to the end of the script.
func closingQuote(runes []rune, start int, closing rune) int {
	for i := start + 1; i < len(runes); i++ {
		if runes[i] != closing {
			continue
		}

		if closing != ']' && i+1 < len(runes) && runes[i+1] == closing {
			i++
			continue
		}

		return i
	}

	return len(runes) - 1
}
