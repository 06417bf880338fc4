package telegram

import (
	"context"
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"strconv"
	"strings"
)

type apiInterface interface {
	Send(chattable botApi.Chattable) (botApi.Message, error)
}

// Sender delivers push messages as Telegram chat messages; a push token is the recipient chat id.
type Sender struct {
	api apiInterface
}

func NewSender(token string) (*Sender, error) {

	api, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Push sender authorized on account %s", api.Self.UserName)

	if err = botApi.SetLogger(log.StandardLogger()); err != nil {
		return nil, err
	}
	return &Sender{api: api}, nil
}

func newSenderWithApi(api apiInterface) *Sender {
	return &Sender{api: api}
}

func (s *Sender) Name() string {
	return "telegram"
}

func (s *Sender) Send(ctx context.Context, token string, title string, body string) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return fmt.Errorf("push token %q is not a chat id: %w", token, err)
	}

	msg := botApi.NewMessage(chatID, fmt.Sprintf("<b>%s</b>\n%s", escapeHTML(title), escapeHTML(body)))
	msg.ParseMode = botApi.ModeHTML
	if _, err = s.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send push to chat %d: %w", chatID, err)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
