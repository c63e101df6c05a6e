package pipeline

import (
	"bufio"
	"fmt"

	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/model"
)

// Lookup collects path into memory and prints the Mentions of an entity,
// of a slot, or of an entity restricted to a slot. With neither given it
// prints each slot with its Mention count. It returns the number of
// Mentions printed.
func (p *Pipeline) Lookup(path, slot, entity string) (int, error) {
	collector := handler.NewCollector()
	if err := p.run(path, p.config.Format.AutoClean, collector); err != nil {
		return 0, err
	}

	out := bufio.NewWriter(p.stdout)
	if slot == "" && entity == "" {
		for _, s := range collector.Slots() {
			fmt.Fprintf(out, "%s\t%d\n", s, len(collector.BySlot(s)))
		}
		return 0, out.Flush()
	}

	var matches []*model.Mention
	if entity != "" {
		for _, m := range collector.ByEntity(entity) {
			if slot == "" || m.SlotName() == slot {
				matches = append(matches, m)
			}
		}
	} else {
		matches = collector.BySlot(slot)
	}

	for _, m := range matches {
		if err := handler.WriteMention(out, m, m.Snippets); err != nil {
			return 0, fmt.Errorf("write mention: %w", err)
		}
	}
	return len(matches), out.Flush()
}
