package service

import (
	"regexp"
	"strings"

	"nyayasahaya-backend/models"
)

// conversationalRule maps a pattern to the category it signals
type conversationalRule struct {
	category models.Category
	pattern  *regexp.Regexp
}

// Rules are evaluated in order; the first match wins, even over legal keywords
var conversationalRules = []conversationalRule{
	{
		category: models.CategoryGreeting,
		pattern:  regexp.MustCompile(`\b(hi|hii+|hello|hey|hiya|howdy|namaste|namaskar|greetings)\b|\bgood (morning|afternoon|evening)\b|\bhow are you\b`),
	},
	{
		category: models.CategoryFarewell,
		pattern:  regexp.MustCompile(`\b(bye|goodbye|good bye|see you|see ya|take care|good night|thanks|thank you|thank u)\b`),
	},
	{
		category: models.CategoryIdentity,
		pattern:  regexp.MustCompile(`\bwho (are|r) (you|u)\b|\bwhat('s| is) your name\b|\byour name\b|\bare you (a |an )?(bot|robot|human|ai|person)\b|\bintroduce yourself\b|\bwho (made|created|built) you\b`),
	},
	{
		category: models.CategoryCapability,
		pattern:  regexp.MustCompile(`\bwhat (can|do) you do\b|\bhow (can|do|could) you help\b|\bwhat can you help\b|\bwhat are your (features|capabilities|abilities)\b|\bwhat do you know\b|\bwhat are you capable of\b`),
	},
	{
		category: models.CategoryComparison,
		pattern:  regexp.MustCompile(`\b(better|smarter|different) than\b|\bcompared? (to|with) (you|chatgpt|gpt|google|gemini|bard|a lawyer)\b|\b(you|u) vs\.? |\bvs\.? (chatgpt|gpt|google|gemini|bard)\b|\bdifference between you\b`),
	},
}

// Keyword groups for the legal vocabulary; matching is by substring on lower-cased text
var legalKeywordGroups = map[string][]string{
	"general": {
		"law", "legal", "section", "ipc", "crpc", "cpc", "constitution", "statute", "court",
		"judge", "lawyer", "advocate", "attorney", "rights", "penalty", "punishment", "offence",
		"offense", "crime", "criminal", "illegal", "justice", "article 21",
		// A statute name may end the sentence or a clause
		" act ", " act,", " act.", " act?", " act)", " act;", " act:", " act!",
	},
	"criminal": {
		"bail", "arrest", "warrant", "police", "murder", "theft", "steal", "stole", "robbery",
		"robbed", "assault", "fraud", "scam", "cheated",
		"cheating", "kidnap", "rape", "harassment", "dowry", "domestic violence", "defamation",
		"bribe", "extortion", "forgery", "trespass", "accused", "imprisonment", "jail", "prison",
		"cybercrime", "stalking", "first information report", "fir ", "chargesheet", "charge sheet",
	},
	"civil": {
		"divorce", "custody", "alimony", "maintenance", "inheritance", "property", "tenant",
		"landlord", "eviction", "contract", "agreement", "lease", "will and", "succession",
		"consumer", "compensation", "damages", "lawsuit", "adoption", "marriage", "land dispute",
		"employment", "wages", "gratuity",
	},
	"procedural": {
		"petition", "appeal", "hearing", "summons", "affidavit", "evidence", "witness",
		"jurisdiction", "plaint", "writ", "complaint", "notice", "trial", "verdict", "judgment",
		"judgement", "tribunal", "magistrate", "high court", "supreme court", "legal aid",
	},
}

var legalKeywords = unionKeywords(legalKeywordGroups)

func unionKeywords(groups map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range []string{"general", "criminal", "civil", "procedural"} {
		for _, kw := range groups[name] {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

// LegalKeywordGroups returns a copy of the legal vocabulary by group
func LegalKeywordGroups() map[string][]string {
	out := make(map[string][]string, len(legalKeywordGroups))
	for name, kws := range legalKeywordGroups {
		out[name] = append([]string(nil), kws...)
	}
	return out
}

// Classify assigns exactly one category to a query.
// Conversational patterns pre-empt legal keywords; text matching neither is non-legal.
func Classify(text string) models.Category {
	lowered := strings.ToLower(text)

	for _, rule := range conversationalRules {
		if rule.pattern.MatchString(lowered) {
			return rule.category
		}
	}

	// Padding lets space-delimited keywords match at the edges of the text
	padded := " " + lowered + " "
	for _, kw := range legalKeywords {
		if strings.Contains(padded, kw) {
			return models.CategoryLegal
		}
	}

	return models.CategoryNonLegal
}
