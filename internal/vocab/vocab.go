// Package vocab loads the four controlled vocabularies the chronicle exposes
// through its filter widgets and classifies reports against them.
package vocab

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind identifies one of the four vocabularies. Each kind owns the CSS
// selector of its filter widget and the namespace prefix that turns a raw
// option value into a classifier token, so "7" under the motive widget
// becomes "motiv-7" and can never collide with "kontext-7".
type Kind int

// The four vocabulary kinds.
const (
	Location Kind = iota
	Motive
	Action
	Context
)

// Kinds lists all vocabulary kinds in a stable order.
func Kinds() []Kind {
	return []Kind{Location, Motive, Action, Context}
}

func (k Kind) String() string {
	switch k {
	case Location:
		return "location"
	case Motive:
		return "motive"
	case Action:
		return "action"
	case Context:
		return "context"
	}
	return "unknown"
}

// Selector returns the CSS selector of the kind's filter widget on the
// listing page.
func (k Kind) Selector() string {
	switch k {
	case Location:
		return ".sf-field-category"
	case Motive:
		return ".sf-field-taxonomy-motiv"
	case Action:
		return ".sf-field-taxonomy-handlung"
	case Context:
		return ".sf-field-taxonomy-kontext"
	}
	return ""
}

// Prefix returns the namespace prepended to raw option values to form
// classifier tokens. The prefixes match the class names WordPress puts on
// report articles.
func (k Kind) Prefix() string {
	switch k {
	case Location:
		return "category-"
	case Motive:
		return "motiv-"
	case Action:
		return "handlung-"
	case Context:
		return "kontext-"
	}
	return ""
}

// Vocabularies maps classifier tokens to human-readable labels, one map per
// kind. It is built once per run from the live listing page and read-only
// afterwards.
type Vocabularies struct {
	labels [4]map[string]string
}

// Load scrapes the four filter widgets of the listing page. A missing widget
// yields an empty vocabulary for that kind; not every page carries all four,
// so absence is degradation, not an error.
func Load(doc *goquery.Document) Vocabularies {
	var v Vocabularies
	for _, k := range Kinds() {
		m := make(map[string]string)
		doc.Find(k.Selector() + " option").Each(func(_ int, opt *goquery.Selection) {
			value, _ := opt.Attr("value")
			if value == "" {
				// placeholder option
				return
			}
			m[k.Prefix()+value] = strings.TrimSpace(opt.Text())
		})
		v.labels[k] = m
	}
	return v
}

// Len reports the number of entries for a kind.
func (v Vocabularies) Len(k Kind) int {
	return len(v.labels[k])
}

// Label resolves a classifier token to its label for one kind.
func (v Vocabularies) Label(k Kind, token string) (string, bool) {
	label, ok := v.labels[k][token]
	return label, ok
}

// Classify returns the labels of every class token that belongs to the
// kind's vocabulary, in class-list order. A report may match zero or many.
func (v Vocabularies) Classify(k Kind, classes []string) []string {
	var matched []string
	for _, c := range classes {
		if label, ok := v.labels[k][c]; ok {
			matched = append(matched, label)
		}
	}
	return matched
}
