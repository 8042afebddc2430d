package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/shenikar/civic_incident_system/internal/service"
)

// DefaultCacheTTL - срок жизни отчета в кеше, если он не задан в конфигурации
const DefaultCacheTTL = 5 * time.Minute

const reportColumns = `
			r.id,
			r.user_id,
			COALESCE(NULLIF(r.reporter_name, ''), u.name, u.email, '') AS reporter_name,
			r.incident_type,
			r.severity,
			COALESCE(NULLIF(r.status, ''), 'pending') AS status,
			r.description,
			r.location,
			ST_Y(r.coordinates::geometry) AS latitude,
			ST_X(r.coordinates::geometry) AS longitude,
			r.photo_url,
			r.photo_key,
			r.department,
			r.ai_verified,
			r.ai_confidence,
			r.ai_reason,
			r.is_flagged,
			r.reviewed_by,
			r.created_at,
			r.updated_at`

const reportFrom = `
		FROM incident_reports r
		LEFT JOIN users u ON u.id = r.user_id`

type ReportRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewReportRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.ReportRepository {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &ReportRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create создает новую запись об отчете в бд
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO incident_reports (
			user_id, reporter_name, incident_type, severity, status, description, location,
			coordinates, photo_url, photo_key, department, ai_verified, ai_confidence, ai_reason, is_flagged
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326), $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		report.UserID,
		report.ReporterName,
		report.IncidentType,
		report.Severity,
		report.Status.Normalize(),
		report.Description,
		report.Location,
		report.Longitude,
		report.Latitude,
		report.PhotoURL,
		report.PhotoKey,
		report.Department,
		report.AIVerified,
		report.AIConfidence,
		report.AIReason,
		report.IsFlagged,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID возвращает отчет по его UUID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := `SELECT` + reportColumns + reportFrom + `
		WHERE r.id = $1;
	`
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}
	return report, nil
}

// UpdateStatus меняет статус, только если отчет все еще в статусе from
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.Status, flagged bool, reviewedBy *uuid.UUID) (*models.Report, error) {
	query := `
		UPDATE incident_reports SET
			status = $1,
			is_flagged = is_flagged OR $2,
			reviewed_by = COALESCE($3, reviewed_by),
			updated_at = NOW()
		WHERE id = $4 AND COALESCE(NULLIF(status, ''), 'pending') = $5;
	`
	cmdTag, err := r.db.Exec(ctx, query, to, flagged, reviewedBy, id, from.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	// RowsAffected() == 0 значит отчета нет или его статус уже изменил другой администратор
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("report %s is no longer %s: %w", id, from, models.ErrConflict)
	}
	return r.GetByID(ctx, id)
}

// Delete удаляет отчет
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incident_reports WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("report with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}

// List возвращает отчеты по условиям выборки, новые первыми
func (r *ReportRepository) List(ctx context.Context, q models.ReportQuery) ([]*models.Report, error) {
	where, args := buildReportFilter(q)
	query := `SELECT` + reportColumns + reportFrom + where + `
		ORDER BY r.created_at DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// buildReportFilter собирает WHERE и аргументы запроса
func buildReportFilter(q models.ReportQuery) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	if q.UserID != nil {
		args = append(args, *q.UserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if len(q.Statuses) > 0 {
		args = append(args, statusStrings(q.Statuses))
		conditions = append(conditions, fmt.Sprintf("COALESCE(NULLIF(r.status, ''), 'pending') = ANY($%d)", len(args)))
	}
	if len(q.ExcludeStatuses) > 0 {
		args = append(args, statusStrings(q.ExcludeStatuses))
		conditions = append(conditions, fmt.Sprintf("NOT (COALESCE(NULLIF(r.status, ''), 'pending') = ANY($%d))", len(args)))
	}
	if q.ExcludeUserID != nil {
		args = append(args, *q.ExcludeUserID)
		conditions = append(conditions, fmt.Sprintf("r.user_id <> $%d", len(args)))
	}
	if len(q.Severities) > 0 {
		severities := make([]string, 0, len(q.Severities))
		for _, s := range q.Severities {
			severities = append(severities, string(s))
		}
		args = append(args, severities)
		conditions = append(conditions, fmt.Sprintf("r.severity = ANY($%d)", len(args)))
	}
	if q.Department != "" {
		args = append(args, q.Department)
		conditions = append(conditions, fmt.Sprintf("r.department = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conditions, " AND "), args
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s.Normalize()))
	}
	return out
}

// CountByUser считает отчеты пользователя по статусам
func (r *ReportRepository) CountByUser(ctx context.Context, userID uuid.UUID) (models.StatusCounts, error) {
	return r.countStatuses(ctx, `WHERE user_id = $1`, userID)
}

// CountByStatus считает все отчеты по статусам
func (r *ReportRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	return r.countStatuses(ctx, "")
}

func (r *ReportRepository) countStatuses(ctx context.Context, where string, args ...any) (models.StatusCounts, error) {
	query := `
		SELECT COALESCE(NULLIF(status, ''), 'pending') AS status, COUNT(*)
		FROM incident_reports
		` + where + `
		GROUP BY 1;
	`
	var counts models.StatusCounts
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return counts, fmt.Errorf("failed to count reports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("failed to scan report count: %w", err)
		}
		if parsed, ok := models.ParseStatus(status); ok {
			counts.Add(parsed, n)
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("error count iteration: %w", err)
	}
	return counts, nil
}

// ListDepartments возвращает службы, которым направлялись отчеты
func (r *ReportRepository) ListDepartments(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT department
		FROM incident_reports
		WHERE department <> ''
		ORDER BY department;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	departments, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan departments: %w", err)
	}
	return departments, nil
}

func scanReport(row pgx.Row) (*models.Report, error) {
	report := &models.Report{}
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.ReporterName,
		&report.IncidentType,
		&report.Severity,
		&report.Status,
		&report.Description,
		&report.Location,
		&report.Latitude,
		&report.Longitude,
		&report.PhotoURL,
		&report.PhotoKey,
		&report.Department,
		&report.AIVerified,
		&report.AIConfidence,
		&report.AIReason,
		&report.IsFlagged,
		&report.ReviewedBy,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func reportCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident_report:%s", id.String())
}

// GetReportFromCache пытается получить отчет из Redis
func (r *ReportRepository) GetReportFromCache(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	val, err := r.redisClient.Get(ctx, reportCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	report := &models.Report{}
	if err := json.Unmarshal(val, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report from cache: %w", err)
	}
	return report, nil
}

// SetReportCache сохраняет отчет в Redis
func (r *ReportRepository) SetReportCache(ctx context.Context, report *models.Report) error {
	val, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, reportCacheKey(report.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// InvalidateReportCache удаляет отчет из Redis кеша
func (r *ReportRepository) InvalidateReportCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, reportCacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}
