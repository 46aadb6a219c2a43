package mailer

import (
	"context"
	"errors"
	"fmt"

	tpl "github.com/oksasatya/go-finance-tracker/pkg/mailer/templates"
)

var ErrInvalidJob = errors.New("invalid email job")

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Deliver renders the job (when it names a template) and hands it to s.
// Jobs that can never succeed are reported as ErrInvalidJob so the caller
// can drop them instead of requeueing.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidJob)
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !tpl.Known(job.Template) {
			return fmt.Errorf("%w: unknown template %q", ErrInvalidJob, job.Template)
		}
		data := job.Data
		if data == nil {
			data = map[string]any{}
		}
		if _, ok := data["Email"]; !ok {
			data["Email"] = job.To
		}
		var err error
		subject, text, html, err = tpl.Render(job.Template, data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrInvalidJob)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
