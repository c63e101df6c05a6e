package annotate

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "You are a linguistic annotator. You label tokens with Penn Treebank part-of-speech tags, " +
	"CoNLL named-entity classes (PERSON, ORGANIZATION, LOCATION, MISC or O) and lemmas. " +
	"You reply with JSON only."

// labelResponse is the JSON shape requested from remote providers
type labelResponse struct {
	Sentences []struct {
		Labels []struct {
			POS   string `json:"pos"`
			NER   string `json:"ner"`
			Lemma string `json:"lemma"`
		} `json:"labels"`
	} `json:"sentences"`
}

// BuildPrompt lists the tokens of every sentence by index and asks for
// one label object per token
func BuildPrompt(sentences []Sentence) string {
	var b strings.Builder
	b.WriteString("Label every token below. Reply with a JSON object of the form\n")
	b.WriteString(`{"sentences":[{"labels":[{"pos":"NNP","ner":"PERSON","lemma":"obama"}]}]}`)
	b.WriteString("\nwith exactly one sentence entry per sentence and one label per token, in order.\n\n")

	for i, s := range sentences {
		fmt.Fprintf(&b, "Sentence %d:\n", i+1)
		for j, tok := range s.Tokens {
			fmt.Fprintf(&b, "%d\t%s\n", j+1, tok.Word)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// applyLabels parses a provider reply and copies the labels onto sentences
func applyLabels(sentences []Sentence, content string) error {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var resp labelResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return fmt.Errorf("decode labels: %w", err)
	}
	if len(resp.Sentences) != len(sentences) {
		return fmt.Errorf("expected %d labeled sentences, got %d", len(sentences), len(resp.Sentences))
	}

	for i := range sentences {
		labels := resp.Sentences[i].Labels
		if len(labels) != len(sentences[i].Tokens) {
			return fmt.Errorf("sentence %d: expected %d labels, got %d", i+1, len(sentences[i].Tokens), len(labels))
		}
		for j := range labels {
			tok := &sentences[i].Tokens[j]
			tok.POS = labels[j].POS
			tok.NER = labels[j].NER
			tok.Lemma = labels[j].Lemma
		}
	}
	return nil
}
