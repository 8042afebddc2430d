package mailer

// Message - письмо для отправки
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SendResult - ответ почтового провайдера
type SendResult struct {
	ProviderMessageID string
}

// Provider отправляет письма через конкретный сервис
type Provider interface {
	Name() string
	Send(msg Message) (SendResult, error)
}

// Mailer - точка входа для отправки писем
type Mailer struct {
	provider    Provider
	fromAddress string
}

// New создает Mailer с провайдером и адресом отправителя по умолчанию
func New(provider Provider, fromAddress string) *Mailer {
	return &Mailer{
		provider:    provider,
		fromAddress: fromAddress,
	}
}

// Send отправляет письмо. Пустой From заменяется адресом по умолчанию.
func (m *Mailer) Send(msg Message) (SendResult, error) {
	if msg.From == "" {
		msg.From = m.fromAddress
	}
	return m.provider.Send(msg)
}

// ProviderName возвращает имя провайдера
func (m *Mailer) ProviderName() string {
	return m.provider.Name()
}
