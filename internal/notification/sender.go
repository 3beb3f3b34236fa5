package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Hverma1206/saan-candles-backend/internal/config"
	"github.com/Hverma1206/saan-candles-backend/internal/domain"
)

// EmailSender delivers mail over plain SMTP with AUTH.
type EmailSender struct {
	cfg config.SMTP
}

func NewEmailSender(cfg config.SMTP) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) send(_ context.Context, to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	return nil
}

// SendOrderNotification alerts the shop owner about a new order.
func (s *EmailSender) SendOrderNotification(ctx context.Context, order *domain.Order) error {
	subject := fmt.Sprintf("New Order #%d", order.ID)

	var b strings.Builder
	b.WriteString("<h2>New order received</h2>")
	fmt.Fprintf(&b, "<p>Order <strong>#%d</strong> from %s %s (%s)</p>",
		order.ID,
		order.ShippingAddress.FirstName,
		order.ShippingAddress.LastName,
		order.Email,
	)
	b.WriteString(itemsTable(order))
	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", formatAmount(order.TotalAmount))
	fmt.Fprintf(&b, "<p>Ship to: %s, %s, %s %s<br>Phone: %s</p>",
		order.ShippingAddress.Address,
		order.ShippingAddress.City,
		order.ShippingAddress.State,
		order.ShippingAddress.ZipCode,
		order.ShippingAddress.Phone,
	)

	return s.send(ctx, s.cfg.AdminEmail, subject, b.String())
}

// SendOrderConfirmation thanks the customer and recaps the order.
func (s *EmailSender) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	subject := fmt.Sprintf("Your Order #%d is Confirmed", order.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order, %s!</h2>", order.ShippingAddress.FirstName)
	fmt.Fprintf(&b, "<p>We received your order <strong>#%d</strong> and will get it ready soon.</p>", order.ID)
	b.WriteString(itemsTable(order))
	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", formatAmount(order.TotalAmount))
	b.WriteString("<p>Payment: cash on delivery.</p>")

	return s.send(ctx, order.Email, subject, b.String())
}

// SendOTP mails a one-time verification code.
func (s *EmailSender) SendOTP(ctx context.Context, email, name, code string) error {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s,</h2>", greeting)
	b.WriteString("<p>Your verification code is:</p>")
	fmt.Fprintf(&b, "<h1 style=\"letter-spacing: 4px\">%s</h1>", code)
	b.WriteString("<p>The code expires in a few minutes. If you did not request it, ignore this email.</p>")

	return s.send(ctx, email, "Your Verification Code", b.String())
}

func itemsTable(order *domain.Order) string {
	var b strings.Builder
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.Title, item.Quantity, formatAmount(item.Price))
	}
	b.WriteString("</table>")
	return b.String()
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("₹%d.%02d", minor/100, minor%100)
}
