// Package render turns a computed shopping list into a downloadable document.
package render

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"foodgram/internal/microservices/http-api/models"

	"github.com/go-pdf/fpdf"
)

// Renderer formats an already aggregated and ordered shopping list.
type Renderer interface {
	ContentType() string
	Extension() string
	Render(w io.Writer, items []models.ShoppingItem) error
}

// ForFormat picks a renderer by name: "txt" (default) or "pdf".
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "txt", "text":
		return TextRenderer{}, nil
	case "pdf":
		return PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Line formats one numbered entry, e.g. "1. Flour: 350 g".
func Line(n int, item models.ShoppingItem) string {
	return fmt.Sprintf("%d. %s: %d %s", n, item.Name, item.Total, item.Unit)
}

type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (TextRenderer) Extension() string   { return ".txt" }

func (TextRenderer) Render(w io.Writer, items []models.ShoppingItem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Shopping list")
	fmt.Fprintln(bw)
	if len(items) == 0 {
		fmt.Fprintln(bw, "Your shopping cart is empty.")
	}
	for i, item := range items {
		fmt.Fprintln(bw, Line(i+1, item))
	}
	return bw.Flush()
}

// DejaVu Sans covers Latin and Cyrillic; the core PDF fonts are cp1252 only.
//
//go:embed fonts/DejaVuSans.ttf
var dejaVuRegular []byte

//go:embed fonts/DejaVuSans-Bold.ttf
var dejaVuBold []byte

const fontFamily = "DejaVu"

type PDFRenderer struct {
	// CreatedAt pins the document timestamp; zero means now.
	CreatedAt time.Time
	// uncompressed leaves page streams readable
	uncompressed bool
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return ".pdf" }

func (p PDFRenderer) Render(w io.Writer, items []models.ShoppingItem) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	if !p.CreatedAt.IsZero() {
		pdf.SetCreationDate(p.CreatedAt)
		pdf.SetModificationDate(p.CreatedAt)
	}
	pdf.SetCompression(!p.uncompressed)
	pdf.SetTitle("Shopping list", true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", dejaVuBold)

	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 12, "Shopping list", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", 12)
	if len(items) == 0 {
		pdf.CellFormat(0, 8, "Your shopping cart is empty.", "", 1, "L", false, 0, "")
	}
	for i, item := range items {
		pdf.CellFormat(0, 8, Line(i+1, item), "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
