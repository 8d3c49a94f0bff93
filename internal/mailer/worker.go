package mailer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VladKvetkin/gofood/internal/entities"
	"github.com/VladKvetkin/gofood/internal/metrics"
)

type OutboxStore interface {
	GetPendingEmails(context.Context, int, int) ([]entities.Email, error)
	MarkEmailSent(context.Context, string, time.Time) error
	MarkEmailFailed(context.Context, string, int, string, bool) error
}

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Workers      int
	MaxAttempts  int
}

// Worker drains the email outbox, giving every message up to MaxAttempts
// delivery attempts.
type Worker struct {
	store  OutboxStore
	sender Sender
	config WorkerConfig
	now    func() time.Time
}

func NewWorker(store OutboxStore, sender Sender, config WorkerConfig) *Worker {
	if config.Workers <= 0 {
		config.Workers = 1
	}

	return &Worker{
		store:  store,
		sender: sender,
		config: config,
		now:    time.Now,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.deliverPending(ctx)

	for {
		select {
		case <-ticker.C:
			w.deliverPending(ctx)
		case <-ctx.Done():
			zap.L().Info("stopping email worker")
			return nil
		}
	}
}

func (w *Worker) deliverPending(ctx context.Context) {
	emails, err := w.store.GetPendingEmails(ctx, w.config.BatchSize, w.config.MaxAttempts)
	if err != nil {
		zap.L().Error("error get pending emails", zap.Error(err))
		return
	}

	if len(emails) == 0 {
		return
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.config.Workers)

	for _, email := range emails {
		email := email
		eg.Go(func() error {
			w.deliver(ctx, email)
			return nil
		})
	}

	_ = eg.Wait()
}

func (w *Worker) deliver(ctx context.Context, email entities.Email) {
	err := w.sender.Send(ctx, Message{
		To:      email.Recipient,
		Subject: email.Subject,
		HTML:    email.HTMLBody,
		Text:    email.TextBody,
	})
	if err == nil {
		metrics.EmailsTotal.WithLabelValues("sent").Inc()

		if err := w.store.MarkEmailSent(ctx, email.ID, w.now()); err != nil {
			zap.L().Error("error mark email sent", zap.String("emailID", email.ID), zap.Error(err))
		}

		return
	}

	attempts := email.Attempts + 1
	giveUp := attempts >= w.config.MaxAttempts

	if giveUp {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		zap.L().Error("email delivery failed permanently", zap.String("emailID", email.ID), zap.Int("attempts", attempts), zap.Error(err))
	} else {
		metrics.EmailsTotal.WithLabelValues("retry").Inc()
		zap.L().Info("email delivery failed, will retry", zap.String("emailID", email.ID), zap.Int("attempts", attempts), zap.Error(err))
	}

	if err := w.store.MarkEmailFailed(ctx, email.ID, attempts, err.Error(), giveUp); err != nil {
		zap.L().Error("error mark email failed", zap.String("emailID", email.ID), zap.Error(err))
	}
}
