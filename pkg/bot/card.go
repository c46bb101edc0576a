package bot

import (
	"fmt"
	"strings"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

// taskCard renders an assigned task as a chat message. Labels are emoji so
// the card reads the same in every language; blank fields are omitted.
func taskCard(t *db.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n", t.Login)
	if t.Link != "" {
		fmt.Fprintf(&sb, "🔗 %s\n", t.Link)
	}
	fmt.Fprintf(&sb, "🛠 %s", t.Skill)
	if t.SkillSup != "" {
		fmt.Fprintf(&sb, " (%s)", t.SkillSup)
	}
	sb.WriteString("\n")
	if t.Output != "" {
		fmt.Fprintf(&sb, "📤 %s\n", t.Output)
	}
	fmt.Fprintf(&sb, "✅ %d  🤖 %d  📦 %d", t.Appreciated, t.Autochecks, t.Residue)
	if t.Comment != "" {
		fmt.Fprintf(&sb, "\n💬 %s", t.Comment)
	}
	return sb.String()
}
