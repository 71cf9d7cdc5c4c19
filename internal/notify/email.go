// Package notify tells a human when a run produced an unsuccessful batch.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Larcf/footstats-data/internal/results"
	libtelemetry "github.com/Larcf/footstats-data/lib/telemetry"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

var tracer = libtelemetry.Tracer("notify")

type SmtpConfig struct {
	Server       string   `json:"server" yaml:"server"`
	Port         int      `json:"port" yaml:"port"`
	EmailAddress string   `json:"email_address" yaml:"email_address"`
	Password     string   `json:"password" yaml:"password"`
	To           []string `json:"to" yaml:"to"`
}

// Enabled is false if there is nowhere to send mail to.
func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != "" && len(c.To) > 0
}

type sendFunc func(mail *email.Email, addr string, auth smtp.Auth) error

func sendMail(mail *email.Email, addr string, auth smtp.Auth) error {
	return mail.Send(addr, auth)
}

type EmailNotifier struct {
	config SmtpConfig
	send   sendFunc
}

func NewEmailNotifier(config SmtpConfig) EmailNotifier {
	return EmailNotifier{config: config, send: sendMail}
}

func (n EmailNotifier) message(runId string, batch results.Batch, fatal error) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("vsresults <%s>", n.config.EmailAddress)
	mail.To = n.config.To
	mail.Subject = fmt.Sprintf("[vsresults] run %s failed", runId)

	cause := "no matches were found on the results page"
	if fatal != nil {
		cause = fatal.Error()
	}

	body := fmt.Sprintf(`The virtual soccer results run %s did not produce any matches.

Generated at: %s
Cause: %s
Matches processed: %d
Errors: %d
`,
		runId,
		batch.Metadata.GeneratedAt,
		cause,
		batch.Status.MatchesProcessed,
		batch.Status.ErrorCount,
	)
	mail.Text = []byte(body)
	return mail
}

// NotifyFailure mails the configured recipients a summary of the batch.
func (n EmailNotifier) NotifyFailure(ctx context.Context, runId string, batch results.Batch, fatal error) error {
	_, span := tracer.Start(ctx, "notify:NotifyFailure")
	defer span.End()

	mail := n.message(runId, batch, fatal)
	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)

	err := n.send(mail, addr, smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = n.send(mail, addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("send failure notification: %w", err)
	}
	return nil
}
