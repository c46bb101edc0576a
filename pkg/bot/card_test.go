package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoronova/qc-taskbot/pkg/db"
)

func TestTaskCard_FullTask(t *testing.T) {
	card := taskCard(&db.Task{
		Login:       "agent1",
		Link:        "https://crm/agent1",
		Comment:     "repeat check",
		SkillSup:    "chat-sup",
		Skill:       "chat",
		Output:      "weekly",
		Appreciated: 3,
		Autochecks:  1,
		Residue:     5,
	})

	assert.Contains(t, card, "👤 agent1")
	assert.Contains(t, card, "🔗 https://crm/agent1")
	assert.Contains(t, card, "🛠 chat (chat-sup)")
	assert.Contains(t, card, "✅ 3  🤖 1  📦 5")
	assert.Contains(t, card, "💬 repeat check")
}

func TestTaskCard_OmitsBlankFields(t *testing.T) {
	card := taskCard(&db.Task{Login: "agent2", Skill: "email", Residue: 2})

	assert.NotContains(t, card, "🔗")
	assert.NotContains(t, card, "💬")
	assert.Contains(t, card, "🛠 email\n")
}

func TestLocalizer_FallsBackOnUnknownKey(t *testing.T) {
	loc := NewLocalizer("ru")
	assert.Equal(t, "Empty message", loc.Message("nope"))
	assert.Equal(t, "Получить задание", loc.Button("get_task"))
	assert.Len(t, loc.QuickComments(), 5)
}
