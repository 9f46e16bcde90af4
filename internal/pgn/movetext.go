package pgn

import (
	"regexp"
	"strings"
)

var (
	moveNumberRe = regexp.MustCompile(`^\d+\.+`)
	nagRe        = regexp.MustCompile(`^\$\d+$`)
	resultRe     = regexp.MustCompile(`(1-0|0-1|1/2-1/2|½-½|\*)\s*$`)
)

// Tokens strips comments, variations, annotation glyphs, move numbers and result
// markers from movetext and returns the bare move tokens in order.
func Tokens(movetext string) []string {
	var out []string
	for _, field := range strings.Fields(stripNonMoves(movetext)) {
		field = moveNumberRe.ReplaceAllString(field, "")
		if field == "" || nagRe.MatchString(field) || isResult(field) {
			continue
		}
		field = strings.TrimRight(field, "!?")
		field = strings.TrimSuffix(field, "e.p.")
		if field == "" || field == "--" {
			continue
		}
		out = append(out, field)
	}
	return out
}

// TerminalResult returns the result marker ending the movetext, if any.
func TerminalResult(movetext string) (string, bool) {
	m := resultRe.FindStringSubmatch(strings.TrimSpace(stripNonMoves(movetext)))
	if m == nil {
		return "", false
	}
	if m[1] == "½-½" {
		return "1/2-1/2", true
	}
	return m[1], true
}

func isResult(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "½-½", "*":
		return true
	}
	return false
}

// stripNonMoves removes brace comments, rest-of-line comments, stray tag lines and
// nested variations. Unbalanced openers swallow the remaining text.
func stripNonMoves(s string) string {
	var sb strings.Builder
	depth := 0
	inBrace := false
	inLine := false
	lineStart := true

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inLine:
			if r == '\n' {
				inLine = false
				lineStart = true
				sb.WriteRune(' ')
			}
			continue
		case inBrace:
			if r == '}' {
				inBrace = false
				sb.WriteRune(' ')
			}
			continue
		}

		switch r {
		case '{':
			inBrace = true
		case ';':
			inLine = true
		case '%':
			if lineStart {
				inLine = true
			} else if depth == 0 {
				sb.WriteRune(r)
			}
		case '[':
			if lineStart {
				inLine = true
			}
		case '(':
			depth++
			sb.WriteRune(' ')
		case ')':
			if depth > 0 {
				depth--
			}
			sb.WriteRune(' ')
		default:
			if depth == 0 {
				sb.WriteRune(r)
			}
		}

		if r == '\n' {
			lineStart = true
		} else if r != ' ' && r != '\t' && r != '\r' {
			lineStart = false
		}
	}
	return sb.String()
}
