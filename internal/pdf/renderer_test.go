package pdf

import (
	"strings"
	"testing"
	"time"
)

func TestRenderSummaryHTML(t *testing.T) {
	paidAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	data := SummaryData{
		DossierLabel:    "Dossier de régularisation touristique",
		DossierID:       "3f8a6fbe-0000-4000-8000-000000000001",
		Status:          "PAID",
		CustomerName:    "Yasmine El Amrani",
		CustomerEmail:   "yasmine@example.com",
		CustomerPhone:   "+212612345678",
		CreatedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		PaidAt:          &paidAt,
		OriginalPrice:   FormatCents(160000),
		DiscountPercent: 15,
		DiscountAmount:  FormatCents(24000),
		FinalPrice:      FormatCents(136000),
		DiscountReason:  "loyalty_tier_2",
		Details: []SummaryLine{
			{Label: "Ville", Value: "Marrakech"},
			{Label: "Type de bien", Value: "Riad"},
		},
		Documents:   []string{"passeport.pdf", "titre_propriete.pdf"},
		TrackingURL: "https://formalitys.example/dossiers/3f8a6fbe",
	}

	html, err := RenderSummaryHTML(data)
	if err != nil {
		t.Fatalf("RenderSummaryHTML: %v", err)
	}

	out := string(html)
	for _, want := range []string{
		"Yasmine El Amrani",
		"Remise fidélité (15%)",
		"1360.00 €",
		"créé le 01/03/2026",
		"payé le 14/03/2026",
		"Marrakech",
		"passeport.pdf",
		`src="data:image/png;base64,`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderSummaryHTMLNoDiscountNoQR(t *testing.T) {
	data := SummaryData{
		DossierLabel:  "Dossier de création de société",
		DossierID:     "ref-1",
		Status:        "PAID",
		CustomerName:  "Karim Benali",
		CustomerEmail: "karim@example.com",
		CreatedAt:     time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		OriginalPrice: FormatCents(330000),
		FinalPrice:    FormatCents(330000),
	}

	html, err := RenderSummaryHTML(data)
	if err != nil {
		t.Fatalf("RenderSummaryHTML: %v", err)
	}

	out := string(html)
	if strings.Contains(out, "Remise fidélité") {
		t.Fatal("discount row rendered for zero-discount dossier")
	}
	if strings.Contains(out, "data:image/png") {
		t.Fatal("QR code rendered without a tracking URL")
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(136000); got != "1360.00 €" {
		t.Fatalf("FormatCents(136000) = %q", got)
	}
	if got := FormatCents(5); got != "0.05 €" {
		t.Fatalf("FormatCents(5) = %q", got)
	}
}
