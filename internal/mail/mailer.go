package mail

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer sends the transactional emails: welcome, goodbye, password-reset OTP
// and password-changed confirmations.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewMailer(cfg Config) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return &Mailer{dialer: dialer, from: cfg.From}
}

func (m *Mailer) send(to, subject, text, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	if html != "" {
		msg.AddAlternative("text/html", html)
	}
	return m.dialer.DialAndSend(msg)
}

func (m *Mailer) SendWelcome(to, name string) error {
	html := wrapHTML("🎉 Welcome to Task Master!", fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We're thrilled to have you on board. Start organizing, tracking, and
		completing your tasks efficiently with Task Master.</p>
		<p>Explore your dashboard and take full control of your productivity.</p>
		<p>Cheers,<br />The Task Master Team</p>`, name))
	return m.send(to, "Welcome to Task Master", "Welcome to Task Master", html)
}

func (m *Mailer) SendGoodbye(to, name string) error {
	html := wrapHTML("👋 Goodbye from Task Master", fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account has been successfully deleted from Task Master. We're
		sorry to see you go.</p>
		<p>If this was a mistake or you change your mind, you're always welcome
		back!</p>
		<p>Take care,<br />The Task Master Team</p>`, name))
	return m.send(to, "Goodbye from Task Master", "Goodbye from Task Master", html)
}

func (m *Mailer) SendOTP(to, name, code string) error {
	formatted := formatOTP(code)
	html := wrapHTML("🔐 Password Reset OTP", fmt.Sprintf(`
		<p>Hello <strong>%s</strong>,</p>
		<p>Your one-time password (OTP) to reset your password is:</p>
		<div style="font-size: 28px; font-weight: 600; letter-spacing: 0.15em;
			background: #e0f7f1; color: #065f46; padding: 14px 24px;
			border-radius: 6px; display: inline-block; margin: 20px 0;">%s</div>
		<p>This OTP is valid for <strong>10 minutes</strong>. Please do not share it with anyone.</p>
		<p>Thank you,<br />Task Master Support Team</p>`, name, formatted))
	return m.send(to, "Password Reset OTP", fmt.Sprintf("Your OTP is %s", formatted), html)
}

func (m *Mailer) SendPasswordChanged(to, name string) error {
	html := wrapHTML("🔐 Your Password Was Changed", fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We wanted to let you know that your password was successfully updated.</p>
		<p>If you made this change, no further action is needed.
		If you did not change your password, please reset it immediately and contact support.</p>
		<p>Stay secure,<br />The Task Master Team</p>`, name))
	return m.send(to, "Password Reset Confirmation", "Your password has been reset", html)
}

// formatOTP groups the code into 4-digit blocks for readability in the email;
// the stored code stays unformatted.
func formatOTP(code string) string {
	var groups []string
	for len(code) > 4 {
		groups = append(groups, code[:4])
		code = code[4:]
	}
	groups = append(groups, code)
	return strings.Join(groups, " ")
}

func wrapHTML(header, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background: #f9fafb; margin: 0; padding: 40px 20px; color: #111827;">
    <div style="max-width: 600px; margin: auto; background: white; border-radius: 8px; padding: 30px; box-shadow: 0 2px 10px rgba(0, 0, 0, 0.05);">
      <div style="font-size: 24px; font-weight: bold; color: #2563eb;">%s</div>
      <div style="margin-top: 20px; font-size: 16px; line-height: 1.6;">%s</div>
    </div>
  </body>
</html>`, header, body)
}
