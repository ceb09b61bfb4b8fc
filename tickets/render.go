package tickets

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"autoservice-backend/models"
	"autoservice-backend/utils"
	"autoservice-backend/workorder"

	"github.com/phpdave11/gofpdf"
)

// Renderer lays out a work order as an A4 ticket.
type Renderer struct {
	ShopName string
	// FontPath is an optional UTF-8 TrueType font; without it the core
	// Helvetica font is used and non-Latin text is transliterated away.
	FontPath string
}

func (r Renderer) Render(w io.Writer, o models.Order) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.FontPath != "" {
		pdf.AddUTF8Font("ticket", "", r.FontPath)
		pdf.AddUTF8Font("ticket", "B", r.FontPath)
		family = "ticket"
		tr = func(s string) string { return s }
	}
	pdf.SetTitle("Work order "+o.ID, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	shop := r.ShopName
	if shop == "" {
		shop = "Auto service"
	}
	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 9, tr(shop), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "B", 13)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Work order No. %s from %s", o.ID, o.Date)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "", 10)
	header := [][2]string{
		{"Company", o.Company},
		{"Customer", o.Customer},
		{"Phone", o.Phone},
		{"Car", o.Car},
		{"Plate", o.GovNumber},
		{"VIN", o.VinNumber},
		{"Mileage", mileage(o.Mileage)},
		{"Reason", o.Reason},
	}
	for _, kv := range header {
		if strings.TrimSpace(kv[1]) == "" {
			continue
		}
		pdf.CellFormat(35, 6, tr(kv[0]+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	lineTable(pdf, family, tr, "Services", o.Services)
	lineTable(pdf, family, tr, "Parts", o.Parts)

	t := workorder.OrderTotals(o)
	paid := workorder.Paid(o.Payments)
	rows := [][2]string{
		{"Services", utils.FormatMoney(t.ServicesTotal)},
		{"Parts", utils.FormatMoney(t.PartsTotal)},
	}
	if t.DiscountValue > 0 {
		rows = append(rows, [2]string{"Discount", "-" + utils.FormatMoney(t.DiscountValue)})
	}
	rows = append(rows,
		[2]string{"Total", utils.FormatMoney(t.Total)},
		[2]string{"Paid", utils.FormatMoney(paid)},
		[2]string{"Due", utils.FormatMoney(workorder.Due(o))},
	)
	for _, kv := range rows {
		style := ""
		if kv[0] == "Total" {
			style = "B"
		}
		pdf.SetFont(family, style, 10)
		pdf.CellFormat(140, 6, tr(kv[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, kv[1], "", 1, "R", false, 0, "")
	}

	if len(o.Payments) > 0 {
		pdf.Ln(3)
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(0, 7, tr("Payments"), "", 1, "L", false, 0, "")
		pdf.SetFont(family, "", 10)
		for _, p := range o.Payments {
			if p.Method == models.MethodLater {
				continue
			}
			pdf.CellFormat(40, 6, p.Date, "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, string(p.Method), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, utils.FormatMoney(p.Amount), "", 1, "R", false, 0, "")
		}
	}

	return pdf.Output(w)
}

// RenderBytes is Render into memory.
func (r Renderer) RenderBytes(o models.Order) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lineTable(pdf *gofpdf.Fpdf, family string, tr func(string) string, title string, items []models.LineItem) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont(family, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	widths := []float64{10, 95, 20, 27, 28}
	for i, h := range []string{"#", "Title", "Qty", "Price", "Sum"} {
		pdf.CellFormat(widths[i], 6, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for i, it := range items {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(it.Title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, qty(it.Qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, utils.FormatMoney(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, utils.FormatMoney(it.Sum()), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

func qty(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func mileage(v *float64) string {
	if v == nil || *v <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0f km", *v)
}
