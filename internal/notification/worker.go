// Package notification delivers job reminders over web push: a heads-up
// shortly before each scheduled job and one agenda notification per day.
package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/buscapolo/fieldops/internal/model"
	"github.com/buscapolo/fieldops/internal/store"
)

// Sender abstracts web push delivery so tests can capture payloads.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender delivers through the webpush library.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Worker periodically scans the jobs collection and pushes reminders to
// every registered subscription.
type Worker struct {
	store    *store.Store
	options  *webpush.Options
	sender   Sender
	log      zerolog.Logger
	interval time.Duration
	lead     time.Duration
	now      func() time.Time

	// reminded records the slot each job was last reminded for; moving a
	// job to a new slot makes it eligible again.
	reminded map[string]time.Time
}

func NewWorker(st *store.Store, options *webpush.Options, log zerolog.Logger, interval, lead time.Duration) *Worker {
	return &Worker{
		store:    st,
		options:  options,
		sender:   &WebPushSender{},
		log:      log,
		interval: interval,
		lead:     lead,
		now:      time.Now,
		reminded: map[string]time.Time{},
	}
}

// Run ticks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.interval).Dur("lead", w.lead).Msg("reminder worker started")
	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-ctx.Done():
			w.log.Info().Msg("reminder worker shutting down")
			return
		}
	}
}

// Tick performs one scan: upcoming-job reminders plus the once-a-day
// agenda notification.
func (w *Worker) Tick(ctx context.Context) {
	jobs, err := w.store.LoadJobs(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("reminder scan: load jobs")
		return
	}

	now := w.now()
	for _, job := range jobs {
		if job.PaymentStatus == model.PaymentStatusCancelled {
			continue
		}
		until := job.ScheduledAt.Sub(now)
		if until <= 0 || until > w.lead {
			continue
		}
		if at, done := w.reminded[job.ID]; done && at.Equal(job.ScheduledAt) {
			continue
		}
		message := fmt.Sprintf("Trabajo próximo: %s - Cliente: %s a las %s",
			job.Description, job.ClientName, job.ScheduledAt.Format("15:04"))
		w.broadcast(ctx, []byte(message))
		w.reminded[job.ID] = job.ScheduledAt
	}

	w.dailyAgenda(ctx, jobs, now)
	w.pruneReminded(jobs, now)
}

func (w *Worker) dailyAgenda(ctx context.Context, jobs []model.Job, now time.Time) {
	today := now.Format("2006-01-02")
	last, err := w.store.GetValue(ctx, store.KeyLastDaily)
	if err != nil {
		w.log.Error().Err(err).Msg("reminder scan: read daily marker")
		return
	}
	if last == today {
		return
	}

	count := 0
	for _, job := range jobs {
		if job.PaymentStatus == model.PaymentStatusCancelled {
			continue
		}
		if sameDate(job.ScheduledAt, now) {
			count++
		}
	}
	if count > 0 {
		w.broadcast(ctx, []byte(fmt.Sprintf("Tienes %d trabajo(s) programado(s) para hoy", count)))
	}
	if err := w.store.SetValue(ctx, store.KeyLastDaily, today); err != nil {
		w.log.Error().Err(err).Msg("reminder scan: write daily marker")
	}
}

func (w *Worker) broadcast(ctx context.Context, payload []byte) {
	subs, err := w.store.LoadSubscriptions(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("broadcast: load subscriptions")
		return
	}
	for _, sub := range subs {
		w.send(ctx, sub, payload)
	}
}

func (w *Worker) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := w.sender.Send(payload, wpSub, w.options)
	if err != nil {
		w.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("push delivery failed")
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions come back as 410 Gone; drop them.
	if resp.StatusCode == http.StatusGone {
		w.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, removing")
		err := w.store.UpdateSubscriptions(ctx, func(subs []model.PushSubscription) ([]model.PushSubscription, error) {
			kept := subs[:0]
			for _, s := range subs {
				if s.Endpoint != sub.Endpoint {
					kept = append(kept, s)
				}
			}
			return kept, nil
		})
		if err != nil {
			w.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to remove expired subscription")
		}
	}
}

func (w *Worker) pruneReminded(jobs []model.Job, now time.Time) {
	current := map[string]time.Time{}
	for _, job := range jobs {
		current[job.ID] = job.ScheduledAt
	}
	for id, remindedAt := range w.reminded {
		at, exists := current[id]
		if !exists || !at.Equal(remindedAt) || at.Before(now) {
			delete(w.reminded, id)
		}
	}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
