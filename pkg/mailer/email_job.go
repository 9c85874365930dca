package mailer

import "strings"

// EmailJob is the JSON payload put on the email queue.
// Either Template (with Data) or Subject plus Text/HTML is set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "verify_email"
	Data     map[string]any `json:"data,omitempty"`
}

// Valid reports whether the job names a recipient and has something to send.
func (j EmailJob) Valid() bool {
	if strings.TrimSpace(j.To) == "" {
		return false
	}
	return j.Template != "" || (j.Subject != "" && (j.Text != "" || j.HTML != ""))
}
