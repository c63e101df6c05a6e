package clean

import (
	"regexp"

	"github.com/agnivade/levenshtein"
)

// Mask tokens substituted for emphasized spans
const (
	EntityToken = " *ENTITY* "
	FillerToken = " *FILLER* "
	MarkedToken = "*EMWORD*"
)

var emphasisPattern = regexp.MustCompile(`<em>(.*?)</em>|<b>(.*?)</b>`)

// Masker replaces emphasized spans in snippet text
type Masker struct {
	MarkedWords      bool
	MarkEntityFiller bool
}

// Mask returns text with each <em>/<b> span replaced. With MarkEntityFiller
// the span becomes the entity or filler token, whichever name is closer by
// edit distance (ties go to the entity); otherwise it becomes MarkedToken.
// Text is returned unchanged when MarkedWords is off.
func (m Masker) Mask(text, entity, filler string) string {
	if !m.MarkedWords {
		return text
	}
	return emphasisPattern.ReplaceAllStringFunc(text, func(span string) string {
		if !m.MarkEntityFiller {
			return MarkedToken
		}
		sub := emphasisPattern.FindStringSubmatch(span)
		word := sub[1]
		if word == "" {
			word = sub[2]
		}
		if levenshtein.ComputeDistance(word, entity) <= levenshtein.ComputeDistance(word, filler) {
			return EntityToken
		}
		return FillerToken
	})
}
