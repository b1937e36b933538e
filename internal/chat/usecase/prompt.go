package usecase

import (
	"encoding/json"
	"strings"
	"time"

	chatdomain "inboxpilot-backend/internal/chat/domain"
	"inboxpilot-backend/pkg/ai"
	"inboxpilot-backend/pkg/chroma"
)

const promptTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

// BuildSystemPrompt frames the retrieved snippets as the only source of facts.
func BuildSystemPrompt(now time.Time, snippets []chroma.Snippet) string {
	var sb strings.Builder
	sb.WriteString("You are an AI email assistant embedded in an email client app.\n")
	sb.WriteString("Time now: ")
	sb.WriteString(now.Format(promptTimeLayout))
	sb.WriteString("\n\nSTART CONTEXT BLOCK\n")
	for _, snippet := range snippets {
		line, err := json.Marshal(snippet)
		if err != nil {
			continue
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("END OF CONTEXT BLOCK\n\n")
	sb.WriteString(`Guidelines:
- Be helpful and concise.
- Use the provided email context.
- If the context does not answer the question, say you don't have enough information.
- Never fabricate information.
- Do not apologize for previous answers.`)
	return sb.String()
}

// buildTurns prepends the system prompt and keeps only the user's own turns.
func buildTurns(systemPrompt string, messages []chatdomain.ChatMessage) []ai.Message {
	turns := make([]ai.Message, 0, len(messages)+1)
	turns = append(turns, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	for _, m := range messages {
		if m.Role == string(ai.RoleUser) {
			turns = append(turns, ai.Message{Role: ai.RoleUser, Content: m.Content})
		}
	}
	return turns
}
