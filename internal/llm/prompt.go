package llm

import "fmt"

const systemPrompt = "You are BookSageAI, an assistant that helps users understand documents."

func buildPrompt(query, contextText, documentName string) string {
	if documentName == "" {
		documentName = "Uploaded document"
	}

	return fmt.Sprintf(`USER QUERY: %s

DOCUMENT: %s

RELEVANT CONTEXT FROM THE DOCUMENT:
%s

Based ONLY on the information provided in the context above, please answer the user's query.
If the context doesn't contain information to answer the query, acknowledge that and suggest what might be relevant to look for.
Format your response in a conversational and helpful way. Do not mention that you're using context or that you're an AI.`,
		query, documentName, contextText)
}
