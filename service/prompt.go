package service

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"nyayasahaya-backend/models"
)

//go:embed templates/legal_prompt.tmpl
var promptTemplates embed.FS

// ResponseSchemaSections are the numbered sections every structured answer must have
var ResponseSchemaSections = []string{
	"1. Applicable Law and Section:",
	"2. Legal Consequences:",
	"3. Steps to Take if Accused:",
	"4. Additional Support:",
	"5. Key Reminder:",
}

// PromptBuilder composes the instruction sent to the language model
type PromptBuilder struct {
	tmpl *template.Template
}

// NewPromptBuilder parses the embedded legal prompt template
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(promptTemplates, "templates/legal_prompt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}
	return &PromptBuilder{tmpl: tmpl}, nil
}

// MustPromptBuilder is NewPromptBuilder for package-level wiring
func MustPromptBuilder() *PromptBuilder {
	b, err := NewPromptBuilder()
	if err != nil {
		panic(err)
	}
	return b
}

// Build substitutes the retrieved context, chat history and question into the template
func (b *PromptBuilder) Build(context, history, question string) (string, error) {
	var builder strings.Builder
	err := b.tmpl.Execute(&builder, struct {
		Context  string
		History  string
		Question string
	}{
		Context:  context,
		History:  history,
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return builder.String(), nil
}

// JoinPassages renders retrieved passages for the prompt's context slot, best match first
func JoinPassages(passages []models.RetrievedPassage) string {
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		heading := models.LegalChunk{Act: p.Act, Section: p.Section}.Heading()
		if heading != "" {
			text = fmt.Sprintf("[%s]\n%s", heading, text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
