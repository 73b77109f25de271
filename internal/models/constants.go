package models

const (
	ContextSeparator = "\n---\n"

	// NoRelevantContentMessage is the answer composer's sentinel for empty
	// retrieval. When it is returned the completion model was not called.
	NoRelevantContentMessage = "No relevant content was found in the loaded document for this question."
)

var AnswerPromptTemplate = `You are an assistant answering questions about a vehicle inventory document.
Answer using only the context below. If the answer is not present in the context, say exactly that instead of guessing.

Context:
%s

Question: %s
`
