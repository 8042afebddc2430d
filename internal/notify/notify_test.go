package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/mailer"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(status models.Status, severity models.Severity) *models.Report {
	return &models.Report{
		ID:           uuid.New(),
		IncidentType: models.IncidentPothole,
		Severity:     severity,
		Status:       status,
		Location:     "MG Road",
		Department:   "Public Works Dept",
		CreatedAt:    time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		status   models.Status
		severity models.Severity
		title    string
		kind     models.NotificationKind
	}{
		{"resolved", models.StatusResolved, models.SeverityLow, "Incident Resolved", models.NotificationSuccess},
		{"in progress", models.StatusInProgress, models.SeverityCritical, "Incident Under Review", models.NotificationInfo},
		{"rejected", models.StatusRejected, models.SeverityHigh, "Report Rejected", models.NotificationWarning},
		{"pending critical", models.StatusPending, models.SeverityCritical, "Urgent Report Received", models.NotificationUrgent},
		{"pending high", models.StatusPending, models.SeverityHigh, "Urgent Report Received", models.NotificationUrgent},
		{"pending medium", models.StatusPending, models.SeverityMedium, "Report Received & Verified", models.NotificationWarning},
		{"empty status low", "", models.SeverityLow, "Report Received & Verified", models.NotificationWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := report(tt.status, tt.severity)
			n := Build(r)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, r.ID, n.ReportID)
			assert.Equal(t, r.CreatedAt, n.Timestamp)
			assert.False(t, n.Read)
		})
	}
}

func TestBuild_MessageNamesDetails(t *testing.T) {
	n := Build(report(models.StatusResolved, models.SeverityMedium))
	assert.Equal(t, "Your medium severity Pothole report at MG Road has been successfully resolved by Public Works Dept.", n.Message)

	n = Build(report(models.StatusPending, models.SeverityLow))
	assert.Equal(t, "Your Pothole report at MG Road has been received and is pending review by Public Works Dept.", n.Message)
}

func TestBuildAll_KeepsOrder(t *testing.T) {
	a := report(models.StatusResolved, models.SeverityLow)
	b := report(models.StatusPending, models.SeverityCritical)
	out := BuildAll([]*models.Report{a, b})
	require.Len(t, out, 2)
	assert.Equal(t, a.ID.String(), out[0].ID)
	assert.Equal(t, b.ID.String(), out[1].ID)
}

func TestBuildNearby(t *testing.T) {
	r := report(models.StatusInProgress, models.SeverityCritical)
	r.IncidentType = models.IncidentFire

	n := BuildNearby(r)
	assert.Equal(t, "nearby-"+r.ID.String(), n.ID)
	assert.Equal(t, r.ID, n.ReportID)
	assert.Equal(t, "Critical Incident Nearby", n.Title)
	assert.Equal(t, "Fire reported at MG Road. Stay alert and avoid the area if possible.", n.Message)
	assert.Equal(t, models.NotificationUrgent, n.Kind)
	assert.Equal(t, models.SeverityCritical, n.Severity)
	assert.Equal(t, r.CreatedAt, n.Timestamp)
}

func TestFeed_MergesNearbyAndSortsNewestFirst(t *testing.T) {
	at := func(r *models.Report, hour int) *models.Report {
		r.CreatedAt = time.Date(2026, 5, 1, hour, 0, 0, 0, time.UTC)
		return r
	}
	ownOld := at(report(models.StatusResolved, models.SeverityLow), 8)
	ownNew := at(report(models.StatusPending, models.SeverityMedium), 12)
	nearby := []*models.Report{
		at(report(models.StatusPending, models.SeverityCritical), 11),
		at(report(models.StatusPending, models.SeverityHigh), 9),
		at(report(models.StatusInProgress, models.SeverityHigh), 13),
		at(report(models.StatusPending, models.SeverityCritical), 14),
	}

	feed := Feed([]*models.Report{ownOld, ownNew}, nearby)

	// Четвертый чужой инцидент отбрасывается, хотя он самый новый
	require.Len(t, feed, 2+MaxNearby)
	assert.Equal(t, []string{
		"nearby-" + nearby[2].ID.String(),
		ownNew.ID.String(),
		"nearby-" + nearby[0].ID.String(),
		"nearby-" + nearby[1].ID.String(),
		ownOld.ID.String(),
	}, []string{feed[0].ID, feed[1].ID, feed[2].ID, feed[3].ID, feed[4].ID})
}

func TestFeed_NoNearby(t *testing.T) {
	own := report(models.StatusPending, models.SeverityLow)
	feed := Feed([]*models.Report{own}, nil)
	require.Len(t, feed, 1)
	assert.Equal(t, "Report Received & Verified", feed[0].Title)
}

type capturingProvider struct {
	msgs []mailer.Message
	err  error
}

func (c *capturingProvider) Name() string { return "capture" }

func (c *capturingProvider) Send(msg mailer.Message) (mailer.SendResult, error) {
	if c.err != nil {
		return mailer.SendResult{}, c.err
	}
	c.msgs = append(c.msgs, msg)
	return mailer.SendResult{ProviderMessageID: "m-1"}, nil
}

func newTestNotifier(p mailer.Provider) *EmailNotifier {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewEmailNotifier(mailer.New(p, "no-reply@civic.local"), logger)
}

func TestEmailNotifier_Sends(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(provider)

	user := &models.User{Name: "Asha <admin>", Email: "asha@example.org"}
	err := n.NotifyStatusChange(context.Background(), report(models.StatusInProgress, models.SeverityHigh), user)
	require.NoError(t, err)

	require.Len(t, provider.msgs, 1)
	msg := provider.msgs[0]
	assert.Equal(t, []string{"asha@example.org"}, msg.To)
	assert.Equal(t, "Incident Under Review", msg.Subject)
	assert.Equal(t, "no-reply@civic.local", msg.From)
	assert.Contains(t, msg.HTML, "Asha &lt;admin&gt;")
	assert.Contains(t, msg.Text, "Public Works Dept is actively working")
}

func TestEmailNotifier_SkipsWithoutEmail(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(provider)

	require.NoError(t, n.NotifyStatusChange(context.Background(), report(models.StatusResolved, models.SeverityLow), nil))
	require.NoError(t, n.NotifyStatusChange(context.Background(), report(models.StatusResolved, models.SeverityLow), &models.User{}))
	assert.Empty(t, provider.msgs)
}

func TestEmailNotifier_ProviderError(t *testing.T) {
	n := newTestNotifier(&capturingProvider{err: errors.New("quota exceeded")})
	err := n.NotifyStatusChange(context.Background(), report(models.StatusResolved, models.SeverityLow), &models.User{Email: "a@b.c"})
	assert.ErrorContains(t, err, "quota exceeded")
}
