package models

import (
	"time"

	"github.com/google/uuid"
)

// LegalChunk represents a chunk of statute text from the knowledge base
type LegalChunk struct {
	ID             uuid.UUID `json:"id"`
	SourceDocument string    `json:"source_document"`
	ChunkIndex     int       `json:"chunk_index"`
	Act            string    `json:"act"`               // e.g. "Indian Penal Code"
	Section        string    `json:"section,omitempty"` // e.g. "420"
	Title          string    `json:"title,omitempty"`
	Text           string    `json:"text"`
	Embedding      []float32 `json:"-"`
	Distance       float64   `json:"distance,omitempty"` // Cosine distance to the query vector
	CreatedAt      time.Time `json:"created_at"`
}

// Heading returns a short human-readable label for the chunk
func (c LegalChunk) Heading() string {
	switch {
	case c.Act != "" && c.Section != "":
		return c.Act + ", Section " + c.Section
	case c.Section != "":
		return "Section " + c.Section
	default:
		return c.Act
	}
}
