package pdf

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

//go:embed templates/*.html
var templateFS embed.FS

// SummaryLine is one row of the dossier detail table.
type SummaryLine struct {
	Label string
	Value string
}

// SummaryData feeds the dossier summary template.
type SummaryData struct {
	DossierLabel  string
	DossierID     string
	Status        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CreatedAt     time.Time
	PaidAt        *time.Time

	OriginalPrice   string
	DiscountPercent int64
	DiscountAmount  string
	FinalPrice      string
	DiscountReason  string

	Details   []SummaryLine
	Documents []string

	// TrackingURL is encoded into the QR code on the first page.
	TrackingURL string
	QRCodeURI   template.URL

	GeneratedAt time.Time
}

// Generator renders dossier summaries to PDF through Gotenberg.
type Generator struct {
	client *GotenbergClient
}

// NewGenerator creates a summary PDF generator.
func NewGenerator(client *GotenbergClient) *Generator {
	return &Generator{client: client}
}

// GenerateSummary renders the dossier summary and converts it to PDF.
func (g *Generator) GenerateSummary(ctx context.Context, data SummaryData) ([]byte, error) {
	html, err := RenderSummaryHTML(data)
	if err != nil {
		return nil, err
	}
	return g.client.ConvertHTML(ctx, html, SummaryOpts())
}

// RenderSummaryHTML renders the summary template, embedding the tracking QR
// code as an inline data URI so the page has no external assets.
func RenderSummaryHTML(data SummaryData) ([]byte, error) {
	if data.TrackingURL != "" {
		png, err := qrcode.Encode(data.TrackingURL, qrcode.Medium, 192)
		if err != nil {
			return nil, fmt.Errorf("encode tracking QR: %w", err)
		}
		data.QRCodeURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	tmpl, err := template.New("summary.html").Funcs(template.FuncMap{
		"formatDate": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.Format("02/01/2006")
			case *time.Time:
				if t != nil {
					return t.Format("02/01/2006")
				}
			}
			return ""
		},
	}).ParseFS(templateFS, "templates/summary.html")
	if err != nil {
		return nil, fmt.Errorf("parse summary template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute summary template: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatCents renders a cent amount as a euro string for the template.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}
