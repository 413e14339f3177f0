package migration

import "github.com/lllypuk/regroup/internal/domain/group"

// Notice returns the user-facing message for a classified attempt on count members.
// Successful attempts have no notice.
func Notice(c group.Category, count int) string {
	switch c {
	case group.RetryableError:
		return plural(count, "Failed to add member. Try again later.", "Failed to add members. Try again later.")
	case group.UnrecoverableError:
		return plural(count, "Cannot add member.", "Cannot add members.")
	default:
		return ""
	}
}

// Prompt is the text offered with a list of suggestions.
type Prompt struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	PositiveButton string `json:"positive_button"`
}

// PromptFor chooses the prompt text for count suggestions.
func PromptFor(count int) Prompt {
	if count == 0 {
		return Prompt{}
	}
	return Prompt{
		Title: plural(count, "Add member?", "Add members?"),
		Message: plural(count,
			"This member couldn't be automatically added to the new group. Do you want to add them now?",
			"These members couldn't be automatically added to the new group. Do you want to add them now?"),
		PositiveButton: plural(count, "Add member", "Add members"),
	}
}

func plural(count int, one, other string) string {
	if count == 1 {
		return one
	}
	return other
}
