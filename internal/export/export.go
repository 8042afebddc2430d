package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shenikar/civic_incident_system/internal/filter"
	"github.com/shenikar/civic_incident_system/internal/models"
)

// Format - формат выгрузки
type Format string

const (
	FormatCSV     Format = "csv"
	FormatPDF     Format = "pdf"
	FormatGeoJSON Format = "geojson"
)

// ParseFormat разбирает формат выгрузки, по умолчанию csv
func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	case FormatGeoJSON:
		return FormatGeoJSON, true
	}
	return "", false
}

var csvHeaders = []string{
	"id", "created_at", "incident_type", "severity", "status", "department",
	"location", "latitude", "longitude", "reporter_name", "description",
	"ai_verified", "ai_confidence", "is_flagged", "photo_url",
}

// Build строит файл выгрузки в выбранном формате
func Build(format Format, reports []*models.Report, generatedAt time.Time) (*models.ExportFile, error) {
	stamp := generatedAt.UTC().Format("20060102-150405")
	switch format {
	case FormatCSV:
		data, err := BuildCSV(reports)
		if err != nil {
			return nil, err
		}
		return &models.ExportFile{Filename: "incidents-" + stamp + ".csv", ContentType: "text/csv", Data: data}, nil
	case FormatPDF:
		data, err := BuildPDF(reports, "Civic Incident Report", generatedAt)
		if err != nil {
			return nil, err
		}
		return &models.ExportFile{Filename: "incidents-" + stamp + ".pdf", ContentType: "application/pdf", Data: data}, nil
	case FormatGeoJSON:
		data, err := BuildGeoJSON(reports)
		if err != nil {
			return nil, err
		}
		return &models.ExportFile{Filename: "incidents-" + stamp + ".geojson", ContentType: "application/geo+json", Data: data}, nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", models.ErrInvalidInput, format)
}

// BuildCSV выгружает отчеты построчно
func BuildCSV(reports []*models.Report) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, err
	}
	for _, r := range reports {
		row := []string{
			r.ID.String(),
			r.CreatedAt.UTC().Format(time.RFC3339),
			string(r.IncidentType),
			string(r.Severity),
			string(r.Status.Normalize()),
			r.Department,
			r.Location,
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			r.ReporterName,
			r.Description,
			strconv.FormatBool(r.AIVerified),
			strconv.FormatFloat(r.AIConfidence, 'f', 2, 64),
			strconv.FormatBool(r.IsFlagged),
			r.PhotoURL,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// BuildGeoJSON выгружает отчеты как FeatureCollection точек
func BuildGeoJSON(reports []*models.Report) ([]byte, error) {
	features := make([]map[string]any, 0, len(reports))
	for _, r := range reports {
		features = append(features, map[string]any{
			"type": "Feature",
			"geometry": map[string]any{
				"type":        "Point",
				"coordinates": []float64{r.Longitude, r.Latitude},
			},
			"properties": map[string]any{
				"id":            r.ID,
				"created_at":    r.CreatedAt,
				"incident_type": r.IncidentType,
				"severity":      r.Severity,
				"status":        r.Status.Normalize(),
				"department":    r.Department,
				"location":      r.Location,
			},
		})
	}
	payload := map[string]any{"type": "FeatureCollection", "features": features}
	return json.MarshalIndent(payload, "", "  ")
}

// BuildPDF строит сводку с распределениями по статусу, типу и серьезности
func BuildPDF(reports []*models.Report, title string, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total reports: %d", len(reports)))
	pdf.Ln(10)

	statuses := filter.CountStatuses(reports)
	writeSection(pdf, "Status distribution", []countRow{
		{string(models.StatusPending), statuses.Pending},
		{string(models.StatusInProgress), statuses.InProgress},
		{string(models.StatusResolved), statuses.Resolved},
		{string(models.StatusRejected), statuses.Rejected},
	})

	typeCounts := map[string]int{}
	for _, r := range reports {
		typeCounts[string(r.IncidentType)]++
	}
	types := make([]countRow, 0, len(typeCounts))
	for name, n := range typeCounts {
		types = append(types, countRow{name, n})
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].count != types[j].count {
			return types[i].count > types[j].count
		}
		return types[i].label < types[j].label
	})
	writeSection(pdf, "Incident types", types)

	severities := filter.CountSeverities(reports)
	rows := make([]countRow, 0, len(models.Severities))
	for _, s := range models.Severities {
		rows = append(rows, countRow{string(s), severities.Get(s)})
	}
	writeSection(pdf, "Severity distribution", rows)

	buffer := bytes.NewBuffer(nil)
	if err := pdf.Output(buffer); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buffer.Bytes(), nil
}

type countRow struct {
	label string
	count int
}

func writeSection(pdf *fpdf.Fpdf, heading string, rows []countRow) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, heading)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %d", row.label, row.count))
		pdf.Ln(6)
	}
	pdf.Ln(4)
}
