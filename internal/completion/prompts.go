package completion

import (
	"fmt"
	"strings"
	"time"
)

const locationExtractionSystem = `You extract place names from short user messages.
Reply with only the place name mentioned in the message (city, neighborhood or region).
If the message mentions no place at all, reply with exactly: none`

// LocationExtractionPrompt asks for the place name in text, or "none".
func LocationExtractionPrompt(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: locationExtractionSystem},
		{Role: RoleUser, Content: text},
	}
}

const dateTimeSystem = `You resolve which date and time of day a weather question refers to.
Today is %s.
Reply with only a JSON object, no prose and no code fences, with exactly these keys:
"date": "current" or a calendar date in YYYY-MM-DD format,
"time": "current" or one of "morning", "afternoon", "evening", "night",
"explanation": one short sentence explaining the choice.`

// DateTimePrompt asks for a strict JSON date/time answer given the full turn
// history serialized as "role: message" lines.
func DateTimePrompt(historyLines []string, now time.Time) []Message {
	return []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(dateTimeSystem, now.UTC().Format("2006-01-02"))},
		{Role: RoleUser, Content: strings.Join(historyLines, "\n")},
	}
}

const languageDetectionSystem = `Identify the language of the user message.
Reply with only the English name of the language, e.g. "Portuguese".`

// LanguageDetectionPrompt asks for the language of text.
func LanguageDetectionPrompt(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: languageDetectionSystem},
		{Role: RoleUser, Content: text},
	}
}

const titleSystem = `Write a short title (at most 5 words) for a conversation that starts
with the user message below. Reply with only the title, in the same language
as the message, no quotes.`

// TitlePrompt asks for a short session title based on the opening message.
func TitlePrompt(text string) []Message {
	return []Message{
		{Role: RoleSystem, Content: titleSystem},
		{Role: RoleUser, Content: text},
	}
}
