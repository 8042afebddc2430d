package geo

import (
	"math"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/shenikar/civic_incident_system/internal/models"
)

const (
	// EarthRadiusMeters - средний радиус Земли для формулы гаверсинусов
	EarthRadiusMeters = 6371000.0
	// DefaultClusterRadiusMeters - радиус, в котором отчеты одного типа сливаются в одну метку
	DefaultClusterRadiusMeters = 30.0
	// cellPrecision - длина geohash ячейки метки (~150 м)
	cellPrecision = 7
)

// HaversineMeters возвращает расстояние между двумя точками по поверхности Земли в метрах
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 {
		return deg * math.Pi / 180
	}
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Cell возвращает geohash ячейку точки
func Cell(lat, lng float64) string {
	return geohash.EncodeWithPrecision(lat, lng, cellPrecision)
}

// GroupNearby группирует отчеты за один жадный проход в порядке входа.
// Отчет присоединяется к первой группе, якорь которой (первый отчет группы)
// находится не дальше radiusMeters и имеет тот же тип без учета регистра.
// Иначе отчет открывает новую группу.
func GroupNearby(reports []*models.Report, radiusMeters float64) []*models.MapCluster {
	if radiusMeters <= 0 {
		radiusMeters = DefaultClusterRadiusMeters
	}

	clusters := make([]*models.MapCluster, 0, len(reports))
	for _, report := range reports {
		if report == nil {
			continue
		}
		joined := false
		for _, cluster := range clusters {
			anchor := cluster.Report
			if !strings.EqualFold(string(anchor.IncidentType), string(report.IncidentType)) {
				continue
			}
			if HaversineMeters(report.Latitude, report.Longitude, anchor.Latitude, anchor.Longitude) <= radiusMeters {
				cluster.ReportCount++
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, &models.MapCluster{
				Report:      report,
				ReportCount: 1,
				Cell:        Cell(report.Latitude, report.Longitude),
			})
		}
	}
	return clusters
}
