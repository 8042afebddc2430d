package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildReportFilter_Empty(t *testing.T) {
	where, args := buildReportFilter(models.ReportQuery{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildReportFilter_AllConditions(t *testing.T) {
	userID := uuid.New()
	where, args := buildReportFilter(models.ReportQuery{
		UserID:          &userID,
		Statuses:        []models.Status{models.StatusPending, ""},
		ExcludeStatuses: []models.Status{models.StatusRejected},
		Department:      "Traffic Police",
	})

	assert.Contains(t, where, "r.user_id = $1")
	assert.Contains(t, where, "COALESCE(NULLIF(r.status, ''), 'pending') = ANY($2)")
	assert.Contains(t, where, "NOT (COALESCE(NULLIF(r.status, ''), 'pending') = ANY($3))")
	assert.Contains(t, where, "r.department = $4")
	assert.Equal(t, []any{
		userID,
		[]string{"pending", "pending"},
		[]string{"rejected"},
		"Traffic Police",
	}, args)
}

func TestBuildReportFilter_OtherUsersBySeverity(t *testing.T) {
	userID := uuid.New()
	where, args := buildReportFilter(models.ReportQuery{
		ExcludeUserID:   &userID,
		ExcludeStatuses: []models.Status{models.StatusRejected},
		Severities:      []models.Severity{models.SeverityCritical, models.SeverityHigh},
	})

	assert.Contains(t, where, "NOT (COALESCE(NULLIF(r.status, ''), 'pending') = ANY($1))")
	assert.Contains(t, where, "r.user_id <> $2")
	assert.Contains(t, where, "r.severity = ANY($3)")
	assert.Equal(t, []any{
		[]string{"rejected"},
		userID,
		[]string{"critical", "high"},
	}, args)
}

func TestReportCacheKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-8d7b-4c1a-9e3f-2b5d7a9c1e0f")
	assert.Equal(t, "incident_report:6f1c2a4e-8d7b-4c1a-9e3f-2b5d7a9c1e0f", reportCacheKey(id))
}
