package bot

import tele "gopkg.in/telebot.v3"

// callback identifier for the inline correction button
const cbChange = "change"

func (b *Bot) userMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(m.Row(m.Text(b.loc.Button("get_task"))))
	return m
}

func (b *Bot) adminMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(
		m.Row(m.Text(b.loc.Button("update_skills")), m.Text(b.loc.Button("update_admins"))),
		m.Row(m.Text(b.loc.Button("update_users")), m.Text(b.loc.Button("list_users"))),
		m.Row(m.Text(b.loc.Button("priority"))),
		m.Row(m.Text(b.loc.Button("unload"))),
		m.Row(m.Text(b.loc.Button("logs"))),
	)
	return m
}

func (b *Bot) commentMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	var row tele.Row
	for _, c := range b.loc.QuickComments() {
		row = append(row, m.Text(c))
	}
	m.Reply(m.Split(3, row)...)
	return m
}

func (b *Bot) cancelMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(m.Row(m.Text(b.loc.Button("cancel"))))
	return m
}

func (b *Bot) changeMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(m.Row(m.Data(b.loc.Button("change"), cbChange)))
	return m
}
