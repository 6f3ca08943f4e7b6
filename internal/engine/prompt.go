package engine

import (
	"strings"

	"modelbridge/internal/catalog"
	"modelbridge/internal/core"
)

// flattenPrompt concatenates chat turns into a single prompt string per the
// template: the begin-of-sequence marker exactly once before the first
// message, then for each message its role label markers (if the template
// displays role names) followed by the framed content. Nothing is appended
// after the last message; the model continues from there.
func flattenPrompt(tpl *catalog.PromptTemplate, messages []core.ChatMessage) string {
	var b strings.Builder
	b.WriteString(tpl.BeginOfSequence)

	for _, m := range messages {
		markers := tpl.Roles[m.Role]
		if tpl.DisplayRoleNames {
			b.WriteString(markers.RolePrefix)
			b.WriteString(string(m.Role))
			b.WriteString(markers.RoleSuffix)
		}
		b.WriteString(markers.MessagePrefix)
		b.WriteString(m.Content)
		b.WriteString(markers.MessageSuffix)
	}

	return b.String()
}
