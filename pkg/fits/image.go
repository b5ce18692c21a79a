package fits

import (
	"fmt"
	"strings"

	"github.com/jpfielding/oif2fits.go/pkg/valid"
)

// Image is a single primitive HDU: structural description, additional header
// cards, and a flat payload in host byte order.
type Image struct {
	Bitpix int   // 8, 16, 32, -32 or -64
	Shape  []int // NAXIS1..NAXISn axis lengths

	// Optional linear scaling (physical = BScale*stored + BZero); written
	// only when Scaled is set.
	Scaled bool
	BZero  float64
	BScale float64

	// Cards are appended after the structural set, in order.
	Cards []Card

	// Data is the payload in host byte order, one element per
	// |Bitpix|/8 bytes, first axis varying fastest.
	Data []byte
}

// ElementWidth returns the payload element width in bytes.
func (img *Image) ElementWidth() int {
	w := img.Bitpix / 8
	if w < 0 {
		w = -w
	}
	return w
}

// Elements returns the product of the shape.
func (img *Image) Elements() int {
	n := 1
	for _, l := range img.Shape {
		n *= l
	}
	return n
}

// AddCard appends a keyword card.
func (img *Image) AddCard(name string, value any, comment string) {
	img.Cards = append(img.Cards, Card{Name: name, Value: value, Comment: comment})
}

// AddHistory appends a HISTORY commentary card.
func (img *Image) AddHistory(text string) {
	img.Cards = append(img.Cards, Card{Name: "HISTORY", Comment: text})
}

// AddComment appends a COMMENT commentary card.
func (img *Image) AddComment(text string) {
	img.Cards = append(img.Cards, Card{Name: "COMMENT", Comment: text})
}

// headerCards synthesizes the full card sequence: the mandatory structural
// set, the appended cards in their original order, and the END marker.
func (img *Image) headerCards() []Card {
	cards := []Card{
		{Name: "SIMPLE", Value: true, Comment: "file conforms to the standard"},
		{Name: "BITPIX", Value: img.Bitpix, Comment: "bits per data element"},
		{Name: "NAXIS", Value: len(img.Shape), Comment: "number of data axes"},
	}
	for i, l := range img.Shape {
		cards = append(cards, Card{Name: fmt.Sprintf("NAXIS%d", i+1), Value: l, Comment: fmt.Sprintf("length of data axis %d", i+1)})
	}
	if img.Scaled {
		cards = append(cards,
			Card{Name: "BSCALE", Value: img.BScale, Comment: "physical = BSCALE*stored + BZERO"},
			Card{Name: "BZERO", Value: img.BZero, Comment: "zero point of physical scaling"},
		)
	}
	cards = append(cards, img.Cards...)
	cards = append(cards, Card{Name: "END"})
	return cards
}

// checkNames flags keyword name collisions introduced by case-folding.
// Commentary keywords repeat freely and are exempt. Non-fatal: output is
// still produced.
func checkNames(cards []Card, findings *valid.Findings) {
	seen := map[string]string{}
	for _, c := range cards {
		name := strings.ToUpper(strings.TrimSpace(c.Name))
		if name == "" || name == "END" || name == "HISTORY" || name == "COMMENT" {
			continue
		}
		if len(name) > 8 {
			name = name[:8]
		}
		if prev, ok := seen[name]; ok {
			findings.Warnf(c.Name, "keyword collides with %q after case folding", prev)
			continue
		}
		seen[name] = c.Name
	}
}
