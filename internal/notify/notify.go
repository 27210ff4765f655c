package notify

import (
	"context"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/metrics"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender is used when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).Info("email (smtp disabled)", "to", to, "subject", subject)
	return nil
}

const sendTimeout = 15 * time.Second

// Deliver sends m and waits for the result. A failed send is logged and counted;
// the caller's state change has already committed and is not undone.
func Deliver(ctx context.Context, s Sender, m Message) {
	if s == nil || m.To == "" {
		return
	}
	// Detach from the request so a client disconnect after commit does not drop the mail.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := s.Send(ctx, m.To, m.Subject, m.Body); err != nil {
		metrics.NotificationsFailed.Inc()
		logger.FromContext(ctx).Error("email delivery failed", "to", m.To, "subject", m.Subject, "err", err)
	}
}
