package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ariefcatur/go-storefront.git/internal/orders"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP is a minimal plain-text mailer. The checkout flow treats any
// error from Send as log-and-continue; a mail outage never fails an
// order.
type SMTP struct {
	Addr string // host:port
	From string
}

func (m *SMTP) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg))
}

// OrderConfirmation renders the plain-text confirmation message for a
// placed order.
func OrderConfirmation(o *orders.Order) (subject, body string) {
	subject = fmt.Sprintf("Order %s confirmed", o.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order!\n\n", o.Name)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  %dx %s = $%.2f\n", it.Quantity, it.Title, float64(it.SubtotalCents)/100)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n", float64(o.TotalCents)/100)
	fmt.Fprintf(&b, "Payment method: %s\nShipping to: %s\n", o.PaymentMethod, o.Address)
	return subject, b.String()
}
