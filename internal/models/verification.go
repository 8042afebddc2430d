package models

// VerificationRequest - данные отчета для AI-проверки
type VerificationRequest struct {
	IncidentType string
	Description  string
	Latitude     float64
	Longitude    float64
	PhotoURL     string
	Photo        []byte
	PhotoMIME    string
}

// Verification - вердикт AI-проверки подлинности отчета
type Verification struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	// Checked ложно, если проверка не состоялась (модель недоступна или ответила мусором)
	Checked bool `json:"-"`
}
