package pgn

import (
	"regexp"
	"strings"
)

var headerRe = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)

var recordStartRe = regexp.MustCompile(`(?m)^[ \t\x{FEFF}]*\[Event\s`)

// SplitRecords cuts a multi-game blob at every line starting with an Event tag.
// Leading text before the first tag is kept as its own record when it holds anything.
func SplitRecords(blob string) []string {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	starts := recordStartRe.FindAllStringIndex(blob, -1)
	if len(starts) == 0 {
		if strings.TrimSpace(blob) == "" {
			return nil
		}
		return []string{strings.TrimSpace(blob)}
	}

	var out []string
	if head := strings.TrimSpace(blob[:starts[0][0]]); head != "" {
		out = append(out, head)
	}
	for i, loc := range starts {
		end := len(blob)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		if rec := strings.TrimSpace(blob[loc[0]:end]); rec != "" {
			out = append(out, rec)
		}
	}
	return out
}

// ParsePGNHeaders extracts the leading tag block into a map. Parsing stops at the
// first line that is neither blank nor a well-formed tag pair.
func ParsePGNHeaders(record string) map[string]string {
	headers, _ := splitHeaderBlock(record)
	return headers
}

// splitHeaderBlock returns the strict header map and the movetext following the tag block.
func splitHeaderBlock(record string) (map[string]string, string) {
	out := map[string]string{}
	lines := strings.Split(strings.ReplaceAll(record, "\r\n", "\n"), "\n")

	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			if len(out) > 0 {
				i++
				break
			}
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			break
		}
		out[m[1]] = unescape(m[2])
	}
	return out, strings.TrimSpace(strings.Join(lines[min(i, len(lines)):], "\n"))
}

func unescape(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(v)
}

// FindTag pattern-matches every `[Tag "value"]` occurrence in raw text and returns the
// first usable value. It is the fallback for truncated or mangled header blocks.
func FindTag(raw, tag string) (string, bool) {
	re, ok := tagPatterns[tag]
	if !ok {
		re = tagPattern(tag)
	}
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		if usable(m[1]) {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

var tagPatterns = func() map[string]*regexp.Regexp {
	out := map[string]*regexp.Regexp{}
	for _, tag := range MetadataTags {
		out[tag] = tagPattern(tag)
	}
	return out
}()

func tagPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\s+"([^"]*)"\s*\]`)
}

// usable rejects placeholders that stand for "no value".
func usable(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "?", "??", "-", "unknown", "????.??.??":
		return false
	}
	return true
}
