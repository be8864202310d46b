package llm

import "fmt"

// SummaryPrompt generates the prompt for condensing one outbound record into
// a short synopsis. The synopsis replaces raw content for summary-tier
// records, so it must carry enough signal to support a reconnection draft.
func SummaryPrompt(subject, body string) string {
	return fmt.Sprintf(`Summarize this sent message in 1-2 sentences. Capture what was discussed and any commitments or plans mentioned. Write in plain past tense ("Discussed...", "Asked about...").

SUBJECT: %s

BODY:
%s

Return ONLY the summary text, no preamble.`, subject, body)
}
