package bot

import (
	"github.com/eliseohh/confessbot/internal/logger"
	tele "gopkg.in/telebot.v3"
)

const textSendPrompt = "✏️ Send your confession:"

const (
	textCommentHelp = "💬 How Comment System Works:\n\n" +
		"• Tap 'Comment' under any confession → bot opens\n" +
		"• Write your comment inside bot\n" +
		"• Tap 'View Comments' → bot opens and shows all comments"
	textRules = "🛡 Privacy Rules:\n" +
		"• Fully anonymous\n" +
		"• No IDs stored\n" +
		"• No logs\n" +
		"• No harassment allowed"
	textAbout = "🤖 Confession Bot\nBuilt for privacy."
)

// menu is the main inline keyboard and its callback buttons.
type menu struct {
	markup   *tele.ReplyMarkup
	send     tele.Btn
	comments tele.Btn
	contact  tele.Btn
	rules    tele.Btn
	about    tele.Btn
}

func newMenu(channelURL string) *menu {
	m := &menu{markup: &tele.ReplyMarkup{}}
	m.send = m.markup.Data("✏️ Send Confession", "send_confession")
	m.comments = m.markup.Data("💬 Comment System", "comment_info")
	m.contact = m.markup.Data("📞 Contact Admin", "contact")
	m.rules = m.markup.Data("🛡 Privacy & Rules", "rules")
	m.about = m.markup.Data("ℹ️ About", "about")

	rows := []tele.Row{
		m.markup.Row(m.send),
		m.markup.Row(m.comments),
		m.markup.Row(m.contact),
		m.markup.Row(m.rules),
		m.markup.Row(m.about),
	}
	if channelURL != "" {
		rows = append(rows, m.markup.Row(m.markup.URL("📢 Channel", channelURL)))
	}
	m.markup.Inline(rows...)
	return m
}

// answer clears the button's loading state. A failure only leaves the
// spinner visible, so the page is still sent.
func (b *Bot) answer(c tele.Context) {
	if err := c.Respond(); err != nil {
		logger.Debug("callback_respond_failed", "error", err)
	}
}

func (b *Bot) handleMenuSend(c tele.Context) error {
	b.answer(c)
	return c.Send(textSendPrompt)
}

func (b *Bot) handleMenuComments(c tele.Context) error {
	b.answer(c)
	return c.Send(textCommentHelp, b.menu.markup)
}

func (b *Bot) handleMenuContact(c tele.Context) error {
	b.answer(c)
	if c.Sender() == nil {
		return nil
	}
	return b.reply(c, b.relay.ContactAdmin(c.Sender().ID))
}

func (b *Bot) handleMenuRules(c tele.Context) error {
	b.answer(c)
	return c.Send(textRules, b.menu.markup)
}

func (b *Bot) handleMenuAbout(c tele.Context) error {
	b.answer(c)
	return c.Send(textAbout, b.menu.markup)
}
