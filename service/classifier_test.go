package service

import (
	"testing"

	"nyayasahaya-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Category
	}{
		{"plain greeting", "hello", models.CategoryGreeting},
		{"mixed case greeting", "Good Morning", models.CategoryGreeting},
		{"greeting pre-empts legal", "Hi, what is the bail process?", models.CategoryGreeting},
		{"namaste", "Namaste ji", models.CategoryGreeting},
		{"farewell", "ok thank you, bye", models.CategoryFarewell},
		{"identity", "Who are you?", models.CategoryIdentity},
		{"identity name", "what is your name", models.CategoryIdentity},
		{"capability", "What can you do?", models.CategoryCapability},
		{"capability help", "how can you help me", models.CategoryCapability},
		{"comparison", "Are you better than ChatGPT?", models.CategoryComparison},
		{"legal arrest", "I was arrested without a warrant", models.CategoryLegal},
		{"legal upper case keyword", "I need HELP regarding Bail", models.CategoryLegal},
		{"legal section", "What does Section 420 say about cheating?", models.CategoryLegal},
		{"legal civil", "My landlord refuses to return my deposit", models.CategoryLegal},
		{"legal procedural", "how do I file an affidavit", models.CategoryLegal},
		{"non legal", "what's the weather today", models.CategoryNonLegal},
		{"non legal recipe", "give me a pasta recipe", models.CategoryNonLegal},
		{"word boundary", "this is about my dowry harassment", models.CategoryLegal},
		{"act before question mark", "What is the POCSO Act?", models.CategoryLegal},
		{"act before full stop", "Tell me about the Motor Vehicles Act.", models.CategoryLegal},
		{"act in parentheses", "Is this covered (under the RTI act) or not", models.CategoryLegal},
		{"act at end", "explain the consumer protection act", models.CategoryLegal},
		{"theft verb past", "My neighbour stole my phone", models.CategoryLegal},
		{"theft verb participle", "my bike was stolen yesterday", models.CategoryLegal},
		{"theft verb present", "someone tries to steal from my shop", models.CategoryLegal},
		{"act inside a word", "that was an exact copy of my drawing", models.CategoryNonLegal},
		{"contact is not act", "how do I contact, my friend", models.CategoryNonLegal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Greeting and farewell both present: greeting is checked first
	assert.Equal(t, models.CategoryGreeting, Classify("hello and goodbye"))
	// Farewell before identity
	assert.Equal(t, models.CategoryFarewell, Classify("thanks, who are you?"))
	// Identity before capability
	assert.Equal(t, models.CategoryIdentity, Classify("who are you and what can you do"))
}

func TestClassify_Idempotent(t *testing.T) {
	for _, text := range []string{"hello", "I was arrested", "weather", ""} {
		assert.Equal(t, Classify(text), Classify(text))
	}
}

func TestLegalKeywordGroups(t *testing.T) {
	groups := LegalKeywordGroups()
	for _, name := range []string{"general", "criminal", "civil", "procedural"} {
		assert.NotEmpty(t, groups[name], name)
	}

	groups["criminal"][0] = "mutated"
	assert.NotEqual(t, "mutated", LegalKeywordGroups()["criminal"][0])
}
