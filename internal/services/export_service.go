package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"tripdaddy/internal/models/response_models"
)

// ItineraryDocument is the input for a printable itinerary.
type ItineraryDocument struct {
	Destination string
	StartDate   string
	EndDate     string
	TripURL     string
	Plan        *response_models.Itinerary
}

type ExportServiceInterface interface {
	RenderItineraryPDF(w io.Writer, doc ItineraryDocument) error
}

type ExportService struct{}

func NewExportService() ExportServiceInterface {
	return &ExportService{}
}

func (e *ExportService) RenderItineraryPDF(w io.Writer, doc ItineraryDocument) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Trip to %s", doc.Destination), true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("Trip to %s", doc.Destination)), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("%s - %s  |  %d days", doc.StartDate, doc.EndDate, len(doc.Plan.Days))), "", 1, "L", false, 0, "")
	pdf.SetTextColor(15, 23, 42)

	if doc.TripURL != "" {
		png, err := qrcode.Encode(doc.TripURL, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("qr code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("trip-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("trip-qr", 170, 10, 28, 28, false, opts, 0, doc.TripURL)
	}
	pdf.Ln(8)

	for _, day := range doc.Plan.Days {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetFillColor(255, 237, 213)
		header := fmt.Sprintf("Day %d: %s", day.DayNumber, day.Title)
		if day.Date != "" {
			header += "  (" + day.Date + ")"
		}
		pdf.CellFormat(0, 9, tr(header), "", 1, "L", true, 0, "")
		if day.AreaFocus != "" {
			pdf.SetFont("Arial", "I", 10)
			pdf.CellFormat(0, 6, tr(day.AreaFocus), "", 1, "L", false, 0, "")
		}

		writePeriod(pdf, tr, "Morning", day.Morning)
		writePeriod(pdf, tr, "Afternoon", day.Afternoon)
		writePeriod(pdf, tr, "Evening", day.Evening)

		if day.HighlightEvent != nil && day.HighlightEvent.Name != "" {
			pdf.SetFont("Arial", "B", 10)
			pdf.MultiCell(0, 5, tr("Highlight: "+day.HighlightEvent.Name+" - "+day.HighlightEvent.Description), "", "L", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func writePeriod(pdf *gofpdf.Fpdf, tr func(string) string, label string, activities []response_models.Activity) {
	if len(activities) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, label, "", 1, "L", false, 0, "")

	for _, a := range activities {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, tr("- "+a.Name), "", "L", false)

		var meta []string
		if a.PriceLevel != nil && *a.PriceLevel != "" {
			meta = append(meta, *a.PriceLevel)
		}
		if a.OpeningHours != nil && *a.OpeningHours != "" {
			meta = append(meta, *a.OpeningHours)
		}
		if a.Rating != nil && *a.Rating > 0 {
			meta = append(meta, fmt.Sprintf("%.1f/5", float64(*a.Rating)))
		}

		pdf.SetFont("Arial", "", 9)
		if a.Description != "" {
			pdf.MultiCell(0, 4.5, tr("  "+a.Description), "", "L", false)
		}
		if len(meta) > 0 {
			pdf.MultiCell(0, 4.5, tr("  "+strings.Join(meta, " | ")), "", "L", false)
		}
	}
}
