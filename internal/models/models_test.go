package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityForType(t *testing.T) {
	tests := map[string]Severity{
		"Flood":     SeverityCritical,
		"landslide": SeverityCritical,
		"FIRE":      SeverityCritical,
		"Accident":  SeverityHigh,
		"Pothole":   SeverityMedium,
		"Puddle":    SeverityLow,
		"Other":     SeverityLow,
		"meteor":    SeverityLow,
		"":          SeverityLow,
	}
	for in, want := range tests {
		assert.Equal(t, want, SeverityForType(in), in)
	}
}

func TestParseIncidentType(t *testing.T) {
	got, ok := ParseIncidentType(" pothole ")
	assert.True(t, ok)
	assert.Equal(t, IncidentPothole, got)

	_, ok = ParseIncidentType("earthquake")
	assert.False(t, ok)
}

func TestIncidentTypeDepartment(t *testing.T) {
	assert.Equal(t, "Fire Department", IncidentFire.Department())
	assert.Equal(t, "Public Works Dept", IncidentPothole.Department())
	assert.Equal(t, DefaultDepartment, IncidentType("Unknown").Department())
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Zero(t, Severity("extreme").Rank())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusInProgress))
	assert.True(t, StatusPending.CanTransitionTo(StatusRejected))
	assert.True(t, Status("").CanTransitionTo(StatusInProgress))
	assert.True(t, StatusInProgress.CanTransitionTo(StatusResolved))

	assert.False(t, StatusPending.CanTransitionTo(StatusResolved))
	assert.False(t, StatusRejected.CanTransitionTo(StatusInProgress))
	assert.False(t, StatusResolved.CanTransitionTo(StatusPending))
	assert.True(t, StatusResolved.IsFinal())
	assert.False(t, StatusInProgress.IsFinal())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, s)

	s, ok = ParseStatus("IN_PROGRESS")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleSuperAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, Role("guest").AtLeast(RoleUser))
}

func TestApplyVerification(t *testing.T) {
	r := &Report{}
	r.ApplyVerification(&Verification{Verified: false, Confidence: 0.9, Reason: "stock photo", Checked: true})
	assert.True(t, r.IsFlagged)
	assert.Equal(t, 0.9, r.AIConfidence)

	r = &Report{}
	r.ApplyVerification(&Verification{Verified: false, Reason: "model unavailable"})
	assert.False(t, r.IsFlagged, "несостоявшаяся проверка не помечает отчет")
}
