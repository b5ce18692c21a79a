// Package fits emits the primitive single-image header/data convention of the
// FITS container: fixed 80-column header cards in 2880-byte blocks followed by
// a big-endian pixel payload. Compression and extension mechanisms are not
// implemented.
package fits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

const (
	// CardSize is the fixed width of one header record.
	CardSize = 80
	// BlockSize is the fixed allocation unit of the container.
	BlockSize = 2880
	// CardsPerBlock is how many cards one header block holds.
	CardsPerBlock = BlockSize / CardSize
)

// Card is one 80-column header record. A nil Value renders a commentary card
// (HISTORY, COMMENT or blank keyword) carrying Comment as free text.
type Card struct {
	Name    string
	Value   any // bool, int64/int, float64, string, or nil for commentary
	Comment string
}

// Render formats the card to exactly CardSize characters. A record whose
// rendered line would exceed the card width is truncated with a warning
// finding; the keyword name itself is capped at 8 characters the same way.
func (c Card) Render(findings *valid.Findings) string {
	name := strings.ToUpper(strings.TrimSpace(c.Name))
	if len(name) > 8 {
		findings.Warnf(c.Name, "keyword name truncated to %q", name[:8])
		name = name[:8]
	}

	var line string
	if c.Value == nil {
		line = fmt.Sprintf("%-8s%s", name, c.Comment)
	} else {
		line = fmt.Sprintf("%-8s= %s", name, formatValue(c.Value))
		if c.Comment != "" {
			line += " / " + c.Comment
		}
	}
	if len(line) > CardSize {
		findings.Warnf(name, "card truncated at %d characters", CardSize)
		line = line[:CardSize]
	}
	return line + strings.Repeat(" ", CardSize-len(line))
}

// formatValue renders a typed value in fixed format: strings quoted from
// column 11, everything else right-justified to column 30.
func formatValue(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return fmt.Sprintf("%20s", "T")
		}
		return fmt.Sprintf("%20s", "F")
	case int:
		return fmt.Sprintf("%20d", val)
	case int32:
		return fmt.Sprintf("%20d", val)
	case int64:
		return fmt.Sprintf("%20d", val)
	case float32:
		return fmt.Sprintf("%20s", formatReal(float64(val)))
	case float64:
		return fmt.Sprintf("%20s", formatReal(val))
	case string:
		quoted := "'" + strings.ReplaceAll(val, "'", "''")
		// closing quote lands no earlier than column 20
		for len(quoted) < 9 {
			quoted += " "
		}
		return quoted + "'"
	}
	return fmt.Sprintf("%20v", v)
}

// formatReal keeps a real value recognizably real: a bare integer rendering
// gains a trailing ".0" so it does not re-parse as an integer.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".EIN") { // decimal point, exponent, or Inf/NaN
		s += ".0"
	}
	return s
}
