package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// FallbackAnswer is returned when the context contains nothing relevant.
// The prompt instructs the model to emit this exact sentence, and callers
// may compare against it to suppress source listings.
const FallbackAnswer = "There was no relevant information found in the provided documents."

const answerSystemPrompt = "You answer only using the provided context."

const ragPromptTemplate = `You are an expert assistant analyzing documents from the Mānoa Faculty Senate.

Use ONLY the context below to answer the user's question. Be as specific and accurate as possible.

If the context gives a partial answer, summarize what is available.
If the context gives no answer, say: "There was no relevant information found in the provided documents."

---
Context:
%s
---
Question: %s

Answer:
`

const citedSourcesLineFmt = "\nThe context is drawn from these source documents: %s.\n"

const citedFormatSuffix = `
Respond with a JSON object of the form {"answer": "...", "cited_sources": ["..."]}
where cited_sources lists the source documents you actually used.
`

// BuildAnswerPrompt renders the grounding prompt for a question and its
// retrieved context.
func BuildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf(ragPromptTemplate,
		strings.TrimSpace(contextText), strings.TrimSpace(question))
}

// StructuredAnswer is an answer with the sources the model cited.
type StructuredAnswer struct {
	Answer       string   `json:"answer"`
	CitedSources []string `json:"cited_sources"`
}

// Synthesize asks the model to answer the question from the context alone,
// as a JSON object naming the sources it used. Model JSON is frequently
// malformed, so the reply is repaired before unmarshalling; replies that
// still fail to parse are kept verbatim as a plain answer with no citations.
// An empty context short-circuits to the fallback sentence without a call.
func Synthesize(ctx context.Context, client Client, question, contextText string, sources []string) (*StructuredAnswer, error) {
	if strings.TrimSpace(contextText) == "" {
		return &StructuredAnswer{Answer: FallbackAnswer}, nil
	}

	prompt := BuildAnswerPrompt(contextText, question)
	if len(sources) > 0 {
		prompt += fmt.Sprintf(citedSourcesLineFmt, strings.Join(sources, ", "))
	}
	prompt += citedFormatSuffix

	content, err := client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: answerSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	return parseStructuredAnswer(content), nil
}

func parseStructuredAnswer(content string) *StructuredAnswer {
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return &StructuredAnswer{Answer: strings.TrimSpace(content)}
	}

	answer := &StructuredAnswer{}
	if err := json.Unmarshal([]byte(repaired), answer); err != nil || answer.Answer == "" {
		return &StructuredAnswer{Answer: strings.TrimSpace(content)}
	}
	return answer
}
