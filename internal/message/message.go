package message

import (
	"strings"
	"time"
)

// Message is a raw notification fetched from a source (SMS export, mailbox, Gmail).
// It is treated as read-only once fetched.
type Message struct {
	ID         string
	Source     string
	ReceivedAt time.Time
	From       string
	Subject    string
	Body       string
}

const previewLen = 80

// Preview returns the first characters of the body on a single line, for log output.
func (m Message) Preview() string {
	body := strings.Join(strings.Fields(m.Body), " ")

	runes := []rune(body)
	if len(runes) <= previewLen {
		return body
	}

	return string(runes[:previewLen]) + "..."
}

// Text returns subject and body joined, which is what most acceptance checks scan.
func (m Message) Text() string {
	if m.Subject == "" {
		return m.Body
	}

	return m.Subject + "\n" + m.Body
}
