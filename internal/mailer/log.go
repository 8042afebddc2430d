package mailer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogProvider пишет письма в лог вместо отправки, когда RESEND_API_KEY не задан
type LogProvider struct {
	logger *logrus.Logger
}

// NewLogProvider создает провайдер, только логирующий письма
func NewLogProvider(logger *logrus.Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

func (l *LogProvider) Name() string {
	return "log"
}

// Send логирует письмо и возвращает фиктивный идентификатор
func (l *LogProvider) Send(msg Message) (SendResult, error) {
	fakeID := uuid.New().String()
	l.logger.WithFields(logrus.Fields{
		"provider":        "log",
		"from":            msg.From,
		"to":              strings.Join(msg.To, ", "),
		"subject":         msg.Subject,
		"text_length":     len(msg.Text),
		"fake_message_id": fakeID,
	}).Info("Email logged (not sent)")
	return SendResult{ProviderMessageID: fmt.Sprintf("log-%s", fakeID)}, nil
}
