package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func emailConfigFromEnv() EmailConfig {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendEmail sends an HTML email
func SendEmail(to, subject, body string) error {
	config := emailConfigFromEnv()

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendOTP sends a login/registration OTP via email
func SendOTP(to, otp string) error {
	body := fmt.Sprintf(`
		<h2>KABAADWALA Verification Code</h2>
		<p>Use the following OTP to continue:</p>
		<h1 style="color: #198754; font-size: 32px; letter-spacing: 5px;">%s</h1>
		<p>This OTP will expire in 10 minutes.</p>
		<p>If you didn't request this, please ignore this email.</p>
	`, otp)
	return SendEmail(to, "Your KABAADWALA OTP", body)
}

// SendRechargeInvoice emails the recharge success notice with the PDF
// invoice attached. Failure to send is logged, never surfaced to the payer.
func SendRechargeInvoice(to string, amount, newBalance float64, transactionID uint, pdf []byte) error {
	config := emailConfigFromEnv()

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "KABAADWALA - Wallet Recharge Invoice")
	m.SetBody("text/html", fmt.Sprintf(`
		<h2>Wallet Recharged Successfully</h2>
		<p>Your wallet has been recharged with %.2f.</p>
		<p>New balance: <strong>%.2f</strong></p>
		<p>Transaction ID: %d</p>
	`, amount, newBalance, transactionID))
	m.Attach(fmt.Sprintf("invoice_%d.pdf", transactionID), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}))

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendModerationAlert notifies the platform admin about a chat policy
// violation.
func SendModerationAlert(sender, content string, violations []Violation) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return nil
	}

	detail := ""
	for _, v := range violations {
		detail += fmt.Sprintf("<li>%s: %s</li>", v.Type, v.Detail)
	}
	body := fmt.Sprintf(`
		<h3>Chat Policy Violation Detected</h3>
		<p>Sender: %s</p>
		<p>Message: %s</p>
		<ul>%s</ul>
		<p>Please review and take appropriate action.</p>
	`, sender, content, detail)
	return SendEmail(adminEmail, "Chat Policy Violation Detected", body)
}
