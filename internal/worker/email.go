// Package worker processes queued jobs: outgoing email and account events.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskflow-auth/pkg/helpers"
	"github.com/oksasatya/taskflow-auth/pkg/mailer"
	"github.com/oksasatya/taskflow-auth/pkg/mailer/templates"
)

// Sender is satisfied by *mailer.Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type EmailProcessor struct {
	sender Sender
	logger logrus.FieldLogger
}

func NewEmailProcessor(sender Sender, logger logrus.FieldLogger) *EmailProcessor {
	return &EmailProcessor{sender: sender, logger: logger}
}

// Process renders and sends one EmailJob. Malformed jobs and unknown
// templates are dropped.
func (p *EmailProcessor) Process(ctx context.Context, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode email job: %v: %w", err, helpers.ErrDrop)
	}
	if !job.Valid() {
		return fmt.Errorf("incomplete email job: %w", helpers.ErrDrop)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		var err error
		subject, text, html, err = templates.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%v: %w", err, helpers.ErrDrop)
		}
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := p.sender.Send(c, job.To, subject, text, html); err != nil {
		return fmt.Errorf("send %s email: %w", job.Template, err)
	}
	p.logger.WithFields(logrus.Fields{"template": job.Template}).Info("email sent")
	return nil
}
