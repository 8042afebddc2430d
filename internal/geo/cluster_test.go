package geo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/civic_incident_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(incidentType string, lat, lng float64) *models.Report {
	return &models.Report{
		ID:           uuid.New(),
		IncidentType: models.IncidentType(incidentType),
		Latitude:     lat,
		Longitude:    lng,
	}
}

// offsetNorth сдвигает широту на указанное число метров к северу
func offsetNorth(lat, meters float64) float64 {
	return lat + meters/111194.92664455873
}

func TestHaversineMeters(t *testing.T) {
	assert.InDelta(t, 0, HaversineMeters(12.97, 77.59, 12.97, 77.59), 1e-9)

	// Один градус по меридиану
	assert.InDelta(t, 111194.93, HaversineMeters(0, 0, 1, 0), 0.5)

	// Симметричность
	d1 := HaversineMeters(12.9716, 77.5946, 13.0827, 80.2707)
	d2 := HaversineMeters(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, d1, d2, 1e-6)
	assert.InDelta(t, 290000, d1, 5000)
}

func TestGroupNearby_Empty(t *testing.T) {
	clusters := GroupNearby(nil, DefaultClusterRadiusMeters)
	assert.Empty(t, clusters)
}

func TestGroupNearby_SameTypeWithinRadius(t *testing.T) {
	first := newReport("Pothole", 12.9716, 77.5946)
	second := newReport("pothole", offsetNorth(12.9716, 10), 77.5946)
	third := newReport("POTHOLE", offsetNorth(12.9716, 25), 77.5946)

	clusters := GroupNearby([]*models.Report{first, second, third}, DefaultClusterRadiusMeters)

	require.Len(t, clusters, 1)
	assert.Equal(t, first.ID, clusters[0].Report.ID, "якорем остается первый отчет")
	assert.Equal(t, 3, clusters[0].ReportCount)
	assert.Len(t, clusters[0].Cell, cellPrecision)
}

func TestGroupNearby_DifferentTypesNotMerged(t *testing.T) {
	flood := newReport("Flood", 12.9716, 77.5946)
	fire := newReport("Fire", 12.9716, 77.5946)

	clusters := GroupNearby([]*models.Report{flood, fire}, DefaultClusterRadiusMeters)

	require.Len(t, clusters, 2)
	assert.Equal(t, 1, clusters[0].ReportCount)
	assert.Equal(t, 1, clusters[1].ReportCount)
}

func TestGroupNearby_DistanceMeasuredFromAnchor(t *testing.T) {
	anchor := newReport("Flood", 10, 10)
	near := newReport("Flood", offsetNorth(10, 20), 10)
	// 40 м от якоря, но 20 м от второго отчета - должен открыть новую группу
	far := newReport("Flood", offsetNorth(10, 40), 10)

	clusters := GroupNearby([]*models.Report{anchor, near, far}, DefaultClusterRadiusMeters)

	require.Len(t, clusters, 2)
	assert.Equal(t, 2, clusters[0].ReportCount)
	assert.Equal(t, far.ID, clusters[1].Report.ID)
	assert.Equal(t, 1, clusters[1].ReportCount)
}

func TestGroupNearby_JoinsFirstMatchingGroup(t *testing.T) {
	a := newReport("Fire", 10, 10)
	b := newReport("Fire", offsetNorth(10, 50), 10)
	// 25 м от обоих якорей - присоединяется к первой группе
	c := newReport("Fire", offsetNorth(10, 25), 10)

	clusters := GroupNearby([]*models.Report{a, b, c}, DefaultClusterRadiusMeters)

	require.Len(t, clusters, 2)
	assert.Equal(t, 2, clusters[0].ReportCount)
	assert.Equal(t, 1, clusters[1].ReportCount)
}

func TestGroupNearby_DefaultRadiusForNonPositive(t *testing.T) {
	a := newReport("Accident", 10, 10)
	b := newReport("Accident", offsetNorth(10, 29), 10)

	clusters := GroupNearby([]*models.Report{a, b}, 0)
	require.Len(t, clusters, 1)
	assert.Equal(t, 2, clusters[0].ReportCount)
}

func TestGroupNearby_RadiusBoundaryIsInclusive(t *testing.T) {
	anchor := newReport("Pothole", 12.9716, 77.5946)
	edge := newReport("Pothole", offsetNorth(12.9716, DefaultClusterRadiusMeters), 77.5946)
	distance := HaversineMeters(edge.Latitude, edge.Longitude, anchor.Latitude, anchor.Longitude)
	require.InDelta(t, DefaultClusterRadiusMeters, distance, 1e-6)

	clusters := GroupNearby([]*models.Report{anchor, edge}, distance)
	require.Len(t, clusters, 1, "точка ровно на радиусе входит в группу")
	assert.Equal(t, 2, clusters[0].ReportCount)

	clusters = GroupNearby([]*models.Report{anchor, edge}, distance-1e-6)
	require.Len(t, clusters, 2, "точка за радиусом открывает новую группу")

	inside := newReport("Pothole", offsetNorth(12.9716, DefaultClusterRadiusMeters-0.01), 77.5946)
	clusters = GroupNearby([]*models.Report{anchor, inside}, DefaultClusterRadiusMeters)
	require.Len(t, clusters, 1)
}
