// Package render produces the customer-facing invoice PDF.
package render

import (
	"bytes"
	"io"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mcfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/invoice/domain"
	"github.com/portpak/portpak/pkg/telemetry"
)

// InvoiceData is the render model: everything is pre-formatted strings
// so the layout stays free of money arithmetic.
type InvoiceData struct {
	CompanyName   string
	InvoiceNumber string
	Status        string
	IssueDate     string
	DueDate       string

	BillToName    string
	BillToAccount string
	BillToEmail   string

	Items []ItemRow

	Subtotal string
	Tax      string
	Total    string
}

type ItemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	LineTotal   string
}

type Renderer struct {
	metrics *telemetry.Metrics
}

func New(metrics *telemetry.Metrics) *Renderer {
	return &Renderer{metrics: metrics}
}

// BuildData formats an invoice and customer details into the render
// model.
func BuildData(invoice domain.Invoice, companyName, customerName, customerAccount, customerEmail string) InvoiceData {
	data := InvoiceData{
		CompanyName:   companyName,
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        string(invoice.Status),
		IssueDate:     formatDate(invoice.IssueDate),
		DueDate:       formatDate(invoice.DueDate),
		BillToName:    customerName,
		BillToAccount: customerAccount,
		BillToEmail:   customerEmail,
		Subtotal:      currency.Format(invoice.Subtotal.InexactFloat64(), invoice.Currency, true),
		Tax:           currency.Format(invoice.TaxAmount.InexactFloat64(), invoice.Currency, true),
		Total:         currency.Format(invoice.TotalAmount.InexactFloat64(), invoice.Currency, true),
	}

	for _, item := range invoice.Items {
		data.Items = append(data.Items, ItemRow{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   currency.Format(item.UnitPrice.InexactFloat64(), item.Currency, true),
			LineTotal:   currency.Format(item.LineTotal.InexactFloat64(), item.Currency, true),
		})
	}
	return data
}

// Render lays out the invoice PDF and returns the document bytes.
func (r *Renderer) Render(data InvoiceData) (io.Reader, error) {
	start := time.Now()

	cfg := mcfg.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(8, data.CompanyName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "INVOICE", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
			text.New("Date due: "+data.DueDate, props.Text{Top: 8}),
			text.New("Status: "+data.Status, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(data.BillToName, props.Text{Top: 5}),
			text.New("Account: "+data.BillToAccount, props.Text{Top: 9}),
			text.New(data.BillToEmail, props.Text{Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(12,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.LineTotal, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 9}),
		text.NewCol(2, data.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	r.metrics.ObservePDFRender(time.Since(start))
	return bytes.NewReader(doc.GetBytes()), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
