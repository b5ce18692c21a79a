package oif

import (
	"strconv"
	"strings"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// KeywordRecord is one parsed user-area keyword. Records are created once per
// input file and never mutated; source order is preserved for round-trip
// fidelity.
type KeywordRecord struct {
	Name    string
	Value   any // string, int64, float64 or bool
	Comment string
	Index   int  // source order
	Text    bool // HISTORY/COMMENT line carried verbatim
}

// ParseUserArea parses the free-text keyword block into ordered records. One
// logical keyword per line in the historical "NAME = VALUE / comment"
// convention. Value types are inferred; duplicate names keep the first
// definition with a warning; unparsable lines warn rather than abort. Lines
// before the first recognizable keyword, blanks, and NUL padding are skipped
// silently. Both string encodings reduce to dropping NUL bytes here, since
// the block is ASCII line text either way.
func ParseUserArea(raw []byte, findings *valid.Findings) []KeywordRecord {
	clean := make([]byte, 0, len(raw))
	for _, c := range raw {
		if c != 0 {
			clean = append(clean, c)
		}
	}

	var records []KeywordRecord
	seen := map[string]bool{}
	for _, line := range strings.Split(string(clean), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// HISTORY and COMMENT text passes through untouched.
		if name, ok := commentaryName(line); ok {
			text := ""
			if len(line) > 8 {
				text = line[8:]
			}
			records = append(records, KeywordRecord{Name: name, Value: text, Index: len(records), Text: true})
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			if len(records) > 0 {
				findings.Warnf("", "unparsable user-area line %q", line)
			}
			continue
		}
		name := strings.TrimSpace(strings.ReplaceAll(line[:eq], "/", ""))
		if name == "" {
			findings.Warnf("", "user-area line %q has no keyword name", line)
			continue
		}
		folded := strings.ToUpper(name)
		if seen[folded] {
			findings.Warnf(name, "duplicate keyword; first definition wins")
			continue
		}
		seen[folded] = true

		value, comment := splitValue(line[eq+1:])
		records = append(records, KeywordRecord{
			Name:    name,
			Value:   typedValue(value),
			Comment: comment,
			Index:   len(records),
		})
	}
	return records
}

func commentaryName(line string) (string, bool) {
	for _, name := range []string{"HISTORY", "COMMENT"} {
		if strings.HasPrefix(line, name) {
			return name, true
		}
	}
	return "", false
}

// splitValue separates the value text from the trailing comment. A '/' inside
// a quoted string does not start a comment.
func splitValue(rest string) (value, comment string) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "'") {
		if end := closingQuote(rest); end > 0 {
			value = rest[:end+1]
			tail := strings.TrimSpace(rest[end+1:])
			comment = strings.TrimSpace(strings.TrimPrefix(tail, "/"))
			return value, comment
		}
	}
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return strings.TrimSpace(rest[:slash]), strings.TrimSpace(rest[slash+1:])
	}
	return rest, ""
}

// closingQuote returns the index of the quote ending a leading quoted value;
// a doubled quote is an escaped literal, not a terminator. Returns -1 when
// the quote never closes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		return i
	}
	return -1
}

// typedValue infers the keyword value type: quoted text is a string, T/F
// tokens are booleans, then integer and real patterns; anything else stays a
// bare string.
func typedValue(v string) any {
	if strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") && len(v) >= 2 {
		return strings.ReplaceAll(strings.TrimRight(v[1:len(v)-1], " "), "''", "'")
	}
	switch strings.ToLower(v) {
	case "t", "true":
		return true
	case "f", "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
