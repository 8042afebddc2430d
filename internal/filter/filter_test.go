package filter

import (
	"testing"

	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/stretchr/testify/assert"
)

func sampleReports() []*models.Report {
	return []*models.Report{
		{IncidentType: models.IncidentFlood, Severity: models.SeverityCritical, Status: models.StatusPending, Location: "MG Road", Description: "Water up to the knees"},
		{IncidentType: models.IncidentPothole, Severity: models.SeverityMedium, Status: models.StatusInProgress, Location: "12.971600, 77.594600", Description: "Deep pothole near bus stop"},
		{IncidentType: models.IncidentFire, Severity: models.SeverityCritical, Status: models.StatusResolved, Location: "Market street", Description: "Garbage fire"},
		{IncidentType: models.IncidentPuddle, Severity: models.SeverityLow, Status: "", Location: "School lane", Description: "Puddle after rain"},
	}
}

func TestApply_AllDisablesCriteria(t *testing.T) {
	reports := sampleReports()
	got := Apply(reports, models.ReportFilter{Type: "all", Severity: "ALL", Status: "", Search: ""})
	assert.Len(t, got, len(reports))
}

func TestApply_TypeAndSeverityCaseInsensitive(t *testing.T) {
	got := Apply(sampleReports(), models.ReportFilter{Type: "flood", Severity: "Critical"})
	assert.Len(t, got, 1)
	assert.Equal(t, models.IncidentFlood, got[0].IncidentType)
}

func TestApply_SearchMatchesLocationOrDescription(t *testing.T) {
	reports := sampleReports()

	byLocation := Apply(reports, models.ReportFilter{Search: "market"})
	assert.Len(t, byLocation, 1)
	assert.Equal(t, models.IncidentFire, byLocation[0].IncidentType)

	byDescription := Apply(reports, models.ReportFilter{Search: "BUS STOP"})
	assert.Len(t, byDescription, 1)
	assert.Equal(t, models.IncidentPothole, byDescription[0].IncidentType)

	byCoordinates := Apply(reports, models.ReportFilter{Search: "12.9716"})
	assert.Len(t, byCoordinates, 1)
}

func TestApply_PendingIncludesEmptyStatus(t *testing.T) {
	got := Apply(sampleReports(), models.ReportFilter{Status: "pending"})
	assert.Len(t, got, 2)
}

func TestApply_UnderscoreStatus(t *testing.T) {
	got := Apply(sampleReports(), models.ReportFilter{Status: "in_progress"})
	assert.Len(t, got, 1)
	assert.Equal(t, models.IncidentPothole, got[0].IncidentType)
}

func TestApply_UnknownStatusMatchesNothing(t *testing.T) {
	got := Apply(sampleReports(), models.ReportFilter{Status: "archived"})
	assert.Empty(t, got)
}

func TestCountSeverities(t *testing.T) {
	counts := CountSeverities(sampleReports())
	assert.Equal(t, models.SeverityCounts{Critical: 2, High: 0, Medium: 1, Low: 1}, counts)
	assert.Equal(t, 4, counts.Total())
}

func TestCountStatuses(t *testing.T) {
	counts := CountStatuses(sampleReports())
	assert.Equal(t, models.StatusCounts{Pending: 2, InProgress: 1, Resolved: 1}, counts)
}

func TestDefaultReviewSeverity(t *testing.T) {
	tests := []struct {
		name   string
		counts models.SeverityCounts
		want   models.Severity
	}{
		{"critical first", models.SeverityCounts{Critical: 1, Low: 3}, models.SeverityCritical},
		{"high when no critical", models.SeverityCounts{High: 2, Medium: 1}, models.SeverityHigh},
		{"medium", models.SeverityCounts{Medium: 1, Low: 1}, models.SeverityMedium},
		{"low only", models.SeverityCounts{Low: 5}, models.SeverityLow},
		{"empty queue", models.SeverityCounts{}, models.SeverityCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultReviewSeverity(tt.counts))
		})
	}
}
