package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
	defaultBurst       = 2
)

// contentGenerator - часть API genai, которой пользуется верификатор
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options - параметры GeminiVerifier
type Options struct {
	APIKey             string
	Model              string
	BaseURL            string
	RateLimitPerSecond float64
	MaxRetries         int
}

// GeminiVerifier проверяет подлинность отчетов через Gemini
type GeminiVerifier struct {
	models      contentGenerator
	model       string
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	logger      *logrus.Logger
}

// NewGeminiVerifier создает клиента Gemini API
func NewGeminiVerifier(ctx context.Context, opts Options, logger *logrus.Logger) (*GeminiVerifier, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiVerifier(client.Models, opts, logger), nil
}

func newGeminiVerifier(gen contentGenerator, opts Options, logger *logrus.Logger) *GeminiVerifier {
	limit := rate.Inf
	if opts.RateLimitPerSecond > 0 {
		limit = rate.Limit(opts.RateLimitPerSecond)
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &GeminiVerifier{
		models:      gen,
		model:       opts.Model,
		limiter:     rate.NewLimiter(limit, defaultBurst),
		maxRetries:  maxRetries,
		baseBackoff: defaultBaseBackoff,
		logger:      logger,
	}
}

// Verify отправляет отчет модели и возвращает ее вердикт.
// Временные ошибки повторяются с экспоненциальной задержкой, каждая попытка ждет ограничитель.
func (v *GeminiVerifier) Verify(ctx context.Context, req models.VerificationRequest) (*models.Verification, error) {
	if strings.TrimSpace(req.IncidentType) == "" || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.PhotoURL) == "" {
		return nil, fmt.Errorf("%w: Missing required incident data", models.ErrInvalidInput)
	}

	log := v.logger.WithFields(logrus.Fields{
		"component":     "verifier",
		"incident_type": req.IncidentType,
	})

	contents := []*genai.Content{genai.NewContentFromParts(buildParts(req), genai.RoleUser)}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	var lastErr error
	for attempt := 0; attempt <= v.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := v.baseBackoff * time.Duration(1<<(attempt-1))
			log.WithError(lastErr).Warnf("Gemini request failed, retrying in %v", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := v.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := v.models.GenerateContent(ctx, v.model, contents, config)
		if err != nil {
			if !retryable(err) {
				return nil, fmt.Errorf("gemini api error: %w", err)
			}
			lastErr = err
			continue
		}
		if resp == nil {
			return nil, ErrInvalidResponse
		}
		return ParseResult(resp.Text())
	}

	return nil, fmt.Errorf("gemini api error after %d retries: %w", v.maxRetries, lastErr)
}

// retryable сообщает, стоит ли повторять запрос: повторяются ошибки транспорта,
// 429 и ответы 5xx. Остальные ошибки API и отмена контекста возвращаются сразу.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// buildParts собирает части запроса: текст промпта и доказательство.
// Локально сохраненная фотография передается байтами, иначе передается ее URL.
func buildParts(req models.VerificationRequest) []*genai.Part {
	parts := []*genai.Part{genai.NewPartFromText(BuildPrompt(req))}
	if len(req.Photo) > 0 && req.PhotoMIME != "" {
		parts = append(parts, genai.NewPartFromBytes(req.Photo, req.PhotoMIME))
	} else {
		parts = append(parts, genai.NewPartFromText("Incident image URL: "+req.PhotoURL))
	}
	return parts
}
