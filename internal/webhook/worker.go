package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/civic_incident_system/internal/config"
	"github.com/shenikar/civic_incident_system/internal/metrics"
	"github.com/sirupsen/logrus"
)

// SignatureHeader - заголовок с HMAC-SHA256 подписью тела запроса
const SignatureHeader = "X-Webhook-Signature"

// DispatchWorker - воркер, доставляющий поручения в webhook службы
type DispatchWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	metrics     *metrics.Metrics
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewDispatchWorker создает новый DispatchWorker. m может быть nil.
func NewDispatchWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config, m *metrics.Metrics) *DispatchWorker {
	return &DispatchWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		metrics: m,
		sleep:   sleepContext,
	}
}

// Start запускает горутину обработки очереди поручений
func (w *DispatchWorker) Start(ctx context.Context) {
	w.logger.Info("Starting dispatch webhook worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping dispatch webhook worker.")
				return
			default:
			}

			// BRPOP блокируется до появления элемента, 0 означает бесконечное ожидание
			result, err := w.redisClient.BRPop(ctx, 0, dispatchQueueKey).Result()
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.WithError(err).Error("Failed to pop dispatch event from Redis")
				_ = w.sleep(ctx, w.cfg.WebhookTimeout)
				continue
			}

			// result[0] - ключ, result[1] - значение
			payload := result[1]
			var event DispatchEvent
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				w.logger.WithError(err).Error("Failed to unmarshal dispatch event from Redis")
				continue
			}

			w.process(ctx, event, []byte(payload))
		}
	}()
}

// process доставляет поручение с экспоненциальной задержкой между попытками
func (w *DispatchWorker) process(ctx context.Context, event DispatchEvent, payload []byte) bool {
	log := w.logger.WithFields(logrus.Fields{
		"report_id":  event.ReportID,
		"department": event.Department,
	})
	log.Debug("Processing dispatch event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Dispatch webhook URL is not configured. Skipping delivery.")
		w.record("skipped")
		return false
	}

	maxRetries := w.cfg.WebhookMaxRetries
	delay := w.cfg.WebhookBaseDelay

	for i := 0; i < maxRetries; i++ {
		err := w.deliver(ctx, payload)
		if err == nil {
			log.Info("Dispatch webhook delivered successfully.")
			w.record("delivered")
			return true
		}
		if i == maxRetries-1 {
			log.WithError(err).Warn("Dispatch webhook attempt failed.")
			break
		}
		log.WithError(err).Warnf("Dispatch webhook attempt failed. Retrying in %v. Retries left: %d", delay, maxRetries-1-i)
		if err := w.sleep(ctx, delay); err != nil {
			break
		}
		delay *= 2
	}

	log.Errorf("Failed to deliver dispatch webhook after %d attempts.", maxRetries)
	w.record("failed")
	return false
}

func (w *DispatchWorker) deliver(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.WebhookSecret != "" {
		req.Header.Set(SignatureHeader, Sign(payload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status code %d", resp.StatusCode)
	}
	return nil
}

func (w *DispatchWorker) record(result string) {
	if w.metrics != nil {
		w.metrics.WebhookDeliveries.WithLabelValues(result).Inc()
	}
}

// Sign возвращает hex HMAC-SHA256 подпись данных
func Sign(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
