package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/invoice-engine/internal/config"
	"github.com/segyhp/invoice-engine/internal/domain"
)

func TestRenderInvoice(t *testing.T) {
	invoice := &domain.Invoice{
		ID:      uuid.New(),
		DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:  domain.InvoiceStatusPending,
		Client:  &domain.Client{Name: "Acme <Corp>", PaymentTerms: "NET30"},
		Items: []*domain.InvoiceItem{
			{ProductName: "Hosting", Quantity: 2, Price: decimal.NewFromInt(200)},
			{ProductName: "Support", Quantity: 1, Price: decimal.RequireFromString("49.5")},
		},
	}

	body, err := RenderInvoice(invoice)
	require.NoError(t, err)

	assert.Contains(t, body, invoice.ID.String())
	assert.Contains(t, body, "01 February 2024")
	assert.Contains(t, body, "Hosting")
	assert.Contains(t, body, "249.50")
	assert.Contains(t, body, "NET30")
	assert.Contains(t, body, "Acme &lt;Corp&gt;", "client name must be escaped")
}

func TestRenderEmailVerified(t *testing.T) {
	body, err := RenderEmailVerified("ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, body, "ana@example.com")
}

func TestSMTPMailer_Send(t *testing.T) {
	mailer := NewSMTPMailer(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "billing@example.com",
		Password: "pw",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := mailer.Send(context.Background(), Message{To: "client@example.com", Subject: "Invoice", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "billing@example.com", gotFrom)
	assert.Equal(t, []string{"client@example.com"}, gotTo)
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\n<p>hi</p>"))
	assert.Contains(t, string(gotMsg), "Content-Type: text/html")
}
