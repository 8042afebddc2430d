package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shenikar/civic_incident_system/internal/models"
)

var (
	ErrInvalidResponse = errors.New("invalid verification response")
	ErrMalformedJSON   = errors.New("verification response is not valid JSON")
)

const promptTemplate = `
You are an AI system that verifies civic incident reports.

Incident Type:
%s

Incident Description:
%s

Incident Location:
Latitude: %v
Longitude: %v

Additional Instruction:
Check the weather conditions for the given location and assess
whether the reported incident is realistic.

Incident Proof:
An image is provided as evidence.

Your task:
1. Decide if the incident is REAL or FAKE.
2. Provide a confidence score between 0 and 1.
3. Give a short justification.

Respond ONLY in JSON format:
{
  "verified": true | false,
  "confidence": number,
  "reason": "string"
}
`

// BuildPrompt формирует запрос к модели по данным отчета
func BuildPrompt(req models.VerificationRequest) string {
	return fmt.Sprintf(promptTemplate, req.IncidentType, req.Description, req.Latitude, req.Longitude)
}

type rawVerdict struct {
	Verified   *bool    `json:"verified"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
}

// ParseResult разбирает текстовый ответ модели
func ParseResult(text string) (*models.Verification, error) {
	body := stripFences(text)
	if body == "" {
		return nil, ErrInvalidResponse
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrInvalidResponse
		}
		return nil, ErrMalformedJSON
	}
	if raw.Verified == nil {
		return nil, ErrInvalidResponse
	}

	confidence := 0.0
	if raw.Confidence != nil {
		confidence = min(max(*raw.Confidence, 0), 1)
	}

	return &models.Verification{
		Verified:   *raw.Verified,
		Confidence: confidence,
		Reason:     strings.TrimSpace(raw.Reason),
		Checked:    true,
	}, nil
}

// stripFences снимает обрамление ```json ... ```
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
