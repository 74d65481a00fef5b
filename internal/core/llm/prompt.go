package llm

import "strings"

// MaxPromptChars caps how much record text (in characters) is sent to a model.
const MaxPromptChars = 1500

// SystemPrompt is sent as the system message by chat-style backends.
const SystemPrompt = "You are a veterinary medical record parser. Extract information and return only valid JSON."

// BuildPrompt renders the user prompt for raw record text, truncated to MaxPromptChars.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Parse this veterinary medical record and return data in JSON format.\n\n")
	b.WriteString("Required fields: pet_name, species, breed, age, owner_name, diagnosis, treatment, veterinarian, date\n\n")
	b.WriteString("Medical record:\n")
	b.WriteString(TruncateChars(text, MaxPromptChars))
	b.WriteString("\n\nRespond with JSON only:")
	return b.String()
}

// TruncateChars returns at most n runes of s.
func TruncateChars(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
