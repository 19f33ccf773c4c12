package service

import "nyayasahaya-backend/models"

// NonLegalRedirect is the terminal answer for queries outside the legal domain
const NonLegalRedirect = "I'm NyayaSahaya, a legal assistant for Indian law, so I can only help with law-related questions. " +
	"Please ask me something about your legal rights, an offence, a court procedure or a dispute you are facing."

// EmptyAnswerFallback replaces a blank answer from the language model
const EmptyAnswerFallback = "I'm sorry, I could not understand your question. Could you please rephrase it?"

// cannedResponses lists the candidate answers per conversational category
var cannedResponses = map[models.Category][]string{
	models.CategoryGreeting: {
		"Hello! I'm NyayaSahaya, your legal assistant for Indian law. How can I help you with your legal question today?",
		"Namaste! Ask me about any legal issue and I'll point you to the relevant law and next steps.",
	},
	models.CategoryFarewell: {
		"You're welcome! Take care, and remember to consult a licensed lawyer for advice on your specific situation.",
		"Goodbye! Feel free to come back whenever you have another legal question.",
	},
	models.CategoryIdentity: {
		"I'm NyayaSahaya, an AI legal assistant. I explain Indian laws, the sections that apply to a situation, their consequences and the steps you can take.",
	},
	models.CategoryCapability: {
		"I can help you understand Indian law: which Act and sections apply to your situation, the possible penalties, the steps to take if you are accused or wronged, and where to find further legal support. Just describe your issue.",
	},
	models.CategoryComparison: {
		"I focus only on Indian law, so my answers are grounded in the statutes themselves. I'm not a substitute for a lawyer, though: for advice on your specific case, please consult a licensed advocate.",
	},
}

// Respond selects the canned answer for a category.
// It returns false for legal queries, which go through retrieval and generation.
func Respond(category models.Category) (string, bool) {
	if category == models.CategoryNonLegal {
		return NonLegalRedirect, true
	}
	candidates, ok := cannedResponses[category]
	if !ok || len(candidates) == 0 {
		return "", false
	}
	return candidates[0], true
}
