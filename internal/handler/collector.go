package handler

import (
	"sort"

	"github.com/ppiankov/websnip/internal/model"
)

// Collector keeps every started Mention, indexed by slot and by entity
type Collector struct {
	Base
	bySlot   map[string][]*model.Mention
	byEntity map[string][]*model.Mention
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		bySlot:   make(map[string][]*model.Mention),
		byEntity: make(map[string][]*model.Mention),
	}
}

func (c *Collector) StartMention(m *model.Mention) error {
	c.bySlot[m.SlotName()] = append(c.bySlot[m.SlotName()], m)
	c.byEntity[m.EntityName()] = append(c.byEntity[m.EntityName()], m)
	return c.Base.StartMention(m)
}

// BySlot returns the Mentions of a slot in arrival order
func (c *Collector) BySlot(slot string) []*model.Mention {
	return c.bySlot[slot]
}

// ByEntity returns the Mentions of an entity in arrival order
func (c *Collector) ByEntity(entity string) []*model.Mention {
	return c.byEntity[entity]
}

// Slots returns the collected slot names, sorted
func (c *Collector) Slots() []string {
	slots := make([]string, 0, len(c.bySlot))
	for slot := range c.bySlot {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}
