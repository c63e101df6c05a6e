package annotate

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*|[^\s\p{L}\p{N}]`)

// RuleSplitter splits on sentence terminators followed by whitespace
type RuleSplitter struct{}

// Split returns the sentences of text with their byte offsets and tokens
func (RuleSplitter) Split(text string) []Sentence {
	var sentences []Sentence
	start := 0

	emit := func(end int) {
		begin, stop := trimSpan(text, start, end)
		if begin < stop {
			sentences = append(sentences, NewSentence(text[begin:stop], begin))
		}
		start = end
	}

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		// look ahead to avoid splitting inside "e.g" or "3.5"
		if next < len(text) {
			nr, _ := utf8.DecodeRuneInString(text[next:])
			if unicode.IsSpace(nr) {
				emit(next)
			}
		}
	}
	emit(len(text))
	return sentences
}

// NewSentence tokenizes text, offsetting every span by base
func NewSentence(text string, base int) Sentence {
	return Sentence{
		Text:   text,
		Begin:  base,
		End:    base + len(text),
		Tokens: Tokenize(text, base),
	}
}

// Tokenize splits text into words and single punctuation marks
func Tokenize(text string, base int) []Token {
	locs := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(locs))
	for _, loc := range locs {
		tokens = append(tokens, Token{
			Word:  text[loc[0]:loc[1]],
			Begin: base + loc[0],
			End:   base + loc[1],
		})
	}
	return tokens
}

func trimSpan(text string, begin, end int) (int, int) {
	for begin < end {
		r, size := utf8.DecodeRuneInString(text[begin:end])
		if !unicode.IsSpace(r) {
			break
		}
		begin += size
	}
	for end > begin {
		r, size := utf8.DecodeLastRuneInString(text[begin:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return begin, end
}
