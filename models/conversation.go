package models

import "time"

// Turn is one answered question/answer pair of a conversation
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

// RetrievedPassage is a reference passage returned by the context retriever
type RetrievedPassage struct {
	Text    string  `json:"text"`
	Act     string  `json:"act,omitempty"`
	Section string  `json:"section,omitempty"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
}
