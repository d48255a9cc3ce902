// CLAUDE:SUMMARY Classifies a booking page as available or unavailable from its HTML, and defines PageStructureError.
// Package page turns the HTML of a booking form into an availability reading.
// It holds no browser state: the driver hands it the serialised DOM.
package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// State is the availability of the page after all selections are applied.
type State int

const (
	Unavailable State = iota
	Available
)

func (s State) String() string {
	if s == Available {
		return "available"
	}
	return "unavailable"
}

// Reading is the classified result element.
type Reading struct {
	State State
	Text  string // trimmed visible text of the result element
	HTML  string // inner HTML of the result element
}

// StructureError reports that the page no longer matches the expected
// structure: a selector found nothing, navigation failed, or the DOM could
// not be read.
type StructureError struct {
	Step     string // navigate, gate, select, read
	Selector string
	URL      string
	Err      error
}

func (e *StructureError) Error() string {
	msg := "page structure: " + e.Step
	if e.Selector != "" {
		msg += fmt.Sprintf(" %q", e.Selector)
	}
	if e.URL != "" {
		msg += " on " + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructureError) Unwrap() error { return e.Err }

// Classify locates the result element and decides availability. The page is
// unavailable when the element is empty or its text contains one of the
// indicators (case-insensitive); any other text means a slot is offered.
// A missing element is a StructureError.
func Classify(html, selector string, indicators []string) (Reading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Reading{}, &StructureError{Step: "read", Selector: selector, Err: err}
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return Reading{}, &StructureError{Step: "read", Selector: selector,
			Err: fmt.Errorf("result element not found")}
	}

	text := normalizeSpace(sel.Text())
	inner, _ := sel.Html()
	r := Reading{State: Unavailable, Text: text, HTML: strings.TrimSpace(inner)}

	if text == "" {
		return r, nil
	}
	folded := fold(text)
	for _, ind := range indicators {
		if ind != "" && strings.Contains(folded, fold(normalizeSpace(ind))) {
			return r, nil
		}
	}
	r.State = Available
	return r, nil
}

// turkishFold maps the dotted/dotless i pair onto plain "i" so upper-cased
// Turkish indicators still match.
var turkishFold = strings.NewReplacer("ı", "i", "\u0307", "")

func fold(s string) string {
	return turkishFold.Replace(strings.ToLower(s))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
