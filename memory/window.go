// Package memory keeps the recent question/answer turns of each conversation.
package memory

import (
	"strings"

	"nyayasahaya-backend/models"
)

// DefaultWindowSize is the number of turns kept per conversation
const DefaultWindowSize = 2

// Window is a bounded FIFO of the most recent turns.
// A Window is not safe for concurrent use; Store hands it out under a per-session lock.
type Window struct {
	size  int
	turns []models.Turn
}

// NewWindow creates an empty window keeping at most size turns
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		size:  size,
		turns: make([]models.Turn, 0, size+1),
	}
}

// Append adds a turn, evicting the oldest ones past capacity
func (w *Window) Append(turn models.Turn) {
	w.turns = append(w.turns, turn)
	if over := len(w.turns) - w.size; over > 0 {
		w.turns = append(w.turns[:0], w.turns[over:]...)
	}
}

// Turns returns a copy of the kept turns, oldest first
func (w *Window) Turns() []models.Turn {
	out := make([]models.Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len returns the number of kept turns
func (w *Window) Len() int {
	return len(w.turns)
}

// Size returns the window capacity
func (w *Window) Size() int {
	return w.size
}

// AsHistoryText renders the kept turns as chat history for the prompt
func (w *Window) AsHistoryText() string {
	if len(w.turns) == 0 {
		return ""
	}
	var builder strings.Builder
	for i, turn := range w.turns {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("Human: ")
		builder.WriteString(turn.Question)
		builder.WriteString("\nAssistant: ")
		builder.WriteString(turn.Answer)
	}
	return builder.String()
}
