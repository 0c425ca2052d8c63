package provider

import "sort"

// ToolCallRecord identifies one tool invocation requested by the model.
// Arguments holds the raw concatenated argument text, which may be malformed
// JSON; parsing is the orchestrator's problem, not the adapter's.
type ToolCallRecord struct {
	ID        string
	Name      string
	Arguments string
}

type toolCallSlot struct {
	record ToolCallRecord
	index  int
}

// ToolCallAccumulator reassembles fragmented, possibly interleaved tool-call
// deltas into complete records. Fragments are keyed by a stable
// provider-supplied index: OpenAI-style APIs number parallel calls, and
// Anthropic-style APIs number content blocks. Multiple indices may be live
// at once.
//
// Merge rules per index: the id takes the first non-empty value and is never
// overwritten; name and argument fragments are appended in arrival order to
// support incremental streaming. The zero value is ready to use.
type ToolCallAccumulator struct {
	slots map[int]*toolCallSlot
}

// Add merges one fragment into the record at index.
func (a *ToolCallAccumulator) Add(index int, id, name, arguments string) {
	if a.slots == nil {
		a.slots = make(map[int]*toolCallSlot)
	}

	slot, ok := a.slots[index]
	if !ok {
		slot = &toolCallSlot{index: index}
		a.slots[index] = slot
	}

	if slot.record.ID == "" && id != "" {
		slot.record.ID = id
	}
	slot.record.Name += name
	slot.record.Arguments += arguments
}

// Calls flushes the arena to an ordered list: records sorted by index,
// excluding any record whose id was never populated.
func (a *ToolCallAccumulator) Calls() []ToolCallRecord {
	slots := make([]*toolCallSlot, 0, len(a.slots))
	for _, slot := range a.slots {
		if slot.record.ID == "" {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].index < slots[j].index })

	calls := make([]ToolCallRecord, len(slots))
	for i, slot := range slots {
		calls[i] = slot.record
	}
	return calls
}

// Len reports how many indices have been seen, complete or not.
func (a *ToolCallAccumulator) Len() int {
	return len(a.slots)
}
