package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

var errLoggerRequired = errors.New("invoice logger is required")

// Core PDF fonts have no rupee glyph, so amounts print with an ASCII prefix.
const currencyPrefix = "Rs. "

// Renderer produces the invoice PDF for an order.
type Renderer struct {
	company config.CompanyConfig
	logger  *logger.Logger

	logo     []byte
	logoType string
}

// NewRenderer wires the invoice renderer. The company logo is loaded and
// validated once at startup; a missing or undecodable file degrades to a
// text-only header.
func NewRenderer(ctx context.Context, company config.CompanyConfig, logg *logger.Logger) (*Renderer, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	r := &Renderer{company: company, logger: logg}
	if path := strings.TrimSpace(company.LogoPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logg.Warn(ctx, fmt.Sprintf("invoice logo unreadable at %s, using text header", path))
			return r, nil
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil || cfg.Width == 0 {
			logg.Warn(ctx, fmt.Sprintf("invoice logo at %s is not a decodable image, using text header", path))
			return r, nil
		}
		r.logo = data
		r.logoType = strings.ToUpper(format)
	}
	return r, nil
}

// Render builds the invoice document. The creation date is pinned to the
// order's creation time so repeated downloads produce identical bytes.
func (r *Renderer) Render(ctx context.Context, order *models.Order) ([]byte, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice #%s", order.ShortID()), true)
	pdf.SetAuthor(r.company.Name, true)
	pdf.SetCreationDate(order.CreatedAt.UTC())
	pdf.SetModificationDate(order.CreatedAt.UTC())
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	r.drawHeader(pdf, order)
	r.drawParties(pdf, order)
	r.drawItems(pdf, order)
	r.drawTotals(pdf, order)
	r.drawFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error(ctx, "invoice render failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(pdf *fpdf.Fpdf, order *models.Order) {
	if len(r.logo) > 0 {
		opts := fpdf.ImageOptions{ImageType: r.logoType, ReadDpi: true}
		pdf.RegisterImageOptionsReader("company-logo", opts, bytes.NewReader(r.logo))
		pdf.ImageOptions("company-logo", 15, 15, 28, 0, false, opts, 0, "")
		pdf.SetXY(48, 18)
	} else {
		pdf.SetXY(15, 18)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(90, 8, r.company.Name)

	pdf.SetFont("Helvetica", "", 10)
	if r.company.Address != "" {
		pdf.SetXY(pdf.GetX()-90, 26)
		pdf.MultiCell(90, 4.5, r.company.Address, "", "L", false)
	}

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(140, 18)
	pdf.CellFormat(55, 8, fmt.Sprintf("INVOICE #%s", order.ShortID()), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(140, 26)
	pdf.CellFormat(55, 5, order.CreatedAt.UTC().Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	pdf.SetXY(140, 31)
	pdf.CellFormat(55, 5, fmt.Sprintf("Payment: %s", order.PaymentMethod), "", 1, "R", false, 0, "")

	pdf.SetY(46)
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(15, 46, 195, 46)
}

func (r *Renderer) drawParties(pdf *fpdf.Fpdf, order *models.Order) {
	pdf.SetY(52)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(90, 6, "Billed To")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	addr := order.ShippingAddress
	lines := []string{
		order.Contact.Name,
		addr.Address,
		fmt.Sprintf("%s, %s %s", addr.City, addr.State, addr.Pin),
		order.Contact.Email,
		order.Contact.Phone,
	}
	for _, line := range lines {
		if line == "" {
			continue
		}
		pdf.Cell(90, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)
}

func (r *Renderer) drawItems(pdf *fpdf.Fpdf, order *models.Order) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 242, 235)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(95, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, currencyPrefix+item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, currencyPrefix+item.LineTotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}
}

func (r *Renderer) drawTotals(pdf *fpdf.Fpdf, order *models.Order) {
	pdf.Ln(4)

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(115, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, value, "", 1, "R", false, 0, "")
	}

	t := order.Totals
	row("Subtotal", currencyPrefix+t.SubTotal.StringFixed(2), false)
	if !t.Discount.IsZero() {
		row("Discount", "-"+currencyPrefix+t.Discount.StringFixed(2), false)
	}
	if t.Shipping.IsZero() {
		row("Shipping", "FREE", false)
	} else {
		row("Shipping", currencyPrefix+t.Shipping.StringFixed(2), false)
	}
	if !t.Tax.IsZero() {
		row("Tax", currencyPrefix+t.Tax.StringFixed(2), false)
	}
	row("Grand Total", currencyPrefix+t.GrandTotal.StringFixed(2), true)

	if order.IsPaid {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(46, 125, 50)
		pdf.CellFormat(180, 6, "PAID", "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

func (r *Renderer) drawFooter(pdf *fpdf.Fpdf) {
	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(180, 5, fmt.Sprintf("Thank you for shopping with %s.", r.company.Name), "", 1, "C", false, 0, "")
	pdf.CellFormat(180, 5, "This is a computer generated invoice and needs no signature.", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
