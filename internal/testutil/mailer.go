package testutil

import "sync"

// SentMail records one delivered message.
type SentMail struct {
	Kind string // "welcome", "goodbye", "otp", "password-changed"
	To   string
	Name string
	Code string // OTP code, for Kind == "otp"
}

// RecorderMailer is a service.Notifier that records messages instead of
// sending them, so tests can observe the OTP codes the API never returns.
type RecorderMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

func NewRecorderMailer() *RecorderMailer {
	return &RecorderMailer{}
}

func (m *RecorderMailer) record(mail SentMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
}

func (m *RecorderMailer) SendWelcome(to, name string) error {
	m.record(SentMail{Kind: "welcome", To: to, Name: name})
	return nil
}

func (m *RecorderMailer) SendGoodbye(to, name string) error {
	m.record(SentMail{Kind: "goodbye", To: to, Name: name})
	return nil
}

func (m *RecorderMailer) SendOTP(to, name, code string) error {
	m.record(SentMail{Kind: "otp", To: to, Name: name, Code: code})
	return nil
}

func (m *RecorderMailer) SendPasswordChanged(to, name string) error {
	m.record(SentMail{Kind: "password-changed", To: to, Name: name})
	return nil
}

// Sent returns a copy of all recorded messages.
func (m *RecorderMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastOTP returns the most recent OTP code sent to the address, or "".
func (m *RecorderMailer) LastOTP(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == "otp" && m.sent[i].To == to {
			return m.sent[i].Code
		}
	}
	return ""
}
