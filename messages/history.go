package messages

// History is the caller-owned, ordered conversation log. The chat loop has
// read and append access only: entries are never replaced or reordered once
// added, so a History that was valid for a provider stays valid after every
// round. All mutation funnels through Add to keep aliasing visible.
//
// History is not safe for concurrent use; the loop drives one conversation
// at a time.
type History struct {
	msgs []Message
}

// NewHistory seeds a history with the given messages in order.
func NewHistory(msgs ...Message) *History {
	h := &History{msgs: make([]Message, 0, len(msgs))}
	h.msgs = append(h.msgs, msgs...)
	return h
}

// Add appends one message.
func (h *History) Add(msg Message) {
	h.msgs = append(h.msgs, msg)
}

// Messages returns a copy of the entries so readers cannot alias the
// underlying slice.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len reports the number of entries.
func (h *History) Len() int {
	return len(h.msgs)
}

// Last returns the most recent entry, if any.
func (h *History) Last() (Message, bool) {
	if len(h.msgs) == 0 {
		return Message{}, false
	}
	return h.msgs[len(h.msgs)-1], true
}

// LastIsAssistantAnswer reports whether the trailing entry is a plain
// assistant message with exactly this content. The loop uses it as an
// idempotence guard so re-entering with an already-terminal history does not
// append a duplicate answer.
func (h *History) LastIsAssistantAnswer(content string) bool {
	last, ok := h.Last()
	if !ok {
		return false
	}
	return last.Role == RoleAssistant &&
		last.Blocks == nil &&
		len(last.ToolCalls) == 0 &&
		last.Content == content
}
