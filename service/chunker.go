package service

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"nyayasahaya-backend/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMaxChunkChars bounds a chunk before it is split on paragraph breaks
const DefaultMaxChunkChars = 2000

// A heading is "Section 420. Cheating..." / "Sec. 41: When police may arrest" / "302. Punishment for murder."
var sectionHeading = regexp.MustCompile(`(?i)^\s*(?:(?:section|sec\.)\s+(\d+[a-z]*)|(\d+[a-z]*)\.)\s*[.:\-]?\s*(.*)$`)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// ActName derives a display name for the Act from a corpus file name,
// e.g. "indian_penal_code.txt" becomes "Indian Penal Code"
func ActName(documentName string) string {
	name := strings.TrimSuffix(documentName, filepath.Ext(documentName))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

type section struct {
	number string
	title  string
	lines  []string
}

// ChunkStatute splits statute text into one chunk per section.
// Text before the first heading becomes an unnumbered chunk; sections longer
// than maxChars are split on blank lines.
func ChunkStatute(sourceDocument, act, text string, maxChars int) []models.LegalChunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	sections := []*section{{}}
	for _, line := range strings.Split(text, "\n") {
		if m := sectionHeading.FindStringSubmatch(line); m != nil {
			number := m[1]
			if number == "" {
				number = m[2]
			}
			sections = append(sections, &section{
				number: strings.ToUpper(number),
				title:  headingTitle(m[3]),
				lines:  []string{strings.TrimSpace(line)},
			})
			continue
		}
		current := sections[len(sections)-1]
		current.lines = append(current.lines, line)
	}

	var chunks []models.LegalChunk
	for _, sec := range sections {
		body := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		if body == "" {
			continue
		}
		for _, part := range splitParagraphs(body, maxChars) {
			chunks = append(chunks, models.LegalChunk{
				SourceDocument: sourceDocument,
				ChunkIndex:     len(chunks),
				Act:            act,
				Section:        sec.number,
				Title:          sec.title,
				Text:           part,
			})
		}
	}
	return chunks
}

const maxTitleBytes = 120

// headingTitle keeps the first sentence of a heading line
func headingTitle(rest string) string {
	rest = strings.TrimSpace(rest)
	if idx := strings.IndexAny(rest, ".—"); idx > 0 {
		rest = rest[:idx]
	}
	if len(rest) > maxTitleBytes {
		cut := maxTitleBytes
		for cut > 0 && !utf8.RuneStart(rest[cut]) {
			cut--
		}
		rest = rest[:cut]
	}
	return strings.TrimSpace(rest)
}

// splitParagraphs packs paragraphs into parts of at most maxChars.
// A single paragraph longer than maxChars is kept whole.
func splitParagraphs(body string, maxChars int) []string {
	if len(body) <= maxChars {
		return []string{body}
	}

	var parts []string
	var current strings.Builder
	for _, para := range paragraphBreak.Split(body, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > maxChars {
			parts = append(parts, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
