package mail

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/segyhp/invoice-engine/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const dueDateLayout = "02 January 2006"

type invoiceLine struct {
	ProductName string
	Quantity    int
	Price       string
}

type invoiceView struct {
	InvoiceID    string
	ClientName   string
	PaymentTerms string
	DueDate      string
	Status       string
	Items        []invoiceLine
	Total        string
}

// RenderInvoice renders the invoice email body. The invoice must carry its
// client and items.
func RenderInvoice(invoice *domain.Invoice) (string, error) {
	view := invoiceView{
		InvoiceID: invoice.ID.String(),
		DueDate:   invoice.DueDate.Format(dueDateLayout),
		Status:    invoice.Status,
		Total:     invoice.Total().StringFixed(2),
		Items:     make([]invoiceLine, 0, len(invoice.Items)),
	}
	if invoice.Client != nil {
		view.ClientName = invoice.Client.Name
		view.PaymentTerms = invoice.Client.PaymentTerms
	}

	for _, item := range invoice.Items {
		view.Items = append(view.Items, invoiceLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
		})
	}

	return render("invoice.html", view)
}

// RenderEmailVerified renders the page shown after a successful verification
func RenderEmailVerified(email string) (string, error) {
	return render("verified.html", struct{ Email string }{Email: email})
}

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
