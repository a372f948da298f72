// Package notification delivers overdue maintenance reminders as web push
// messages through a fixed pool of workers.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"maintenance-tracker-backend/internal/model"
	"maintenance-tracker-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is one overdue record to remind subscribers about.
type Job struct {
	RecordID      int64
	MachineID     int64
	MachineName   string
	ScheduledDate model.Date
}

// Payload is the JSON body delivered to the browser's service worker.
type Payload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	RecordID  int64  `json:"recordId"`
	MachineID int64  `json:"machineId"`
	URL       string `json:"url"`
}

// NewPayload renders the reminder for a job.
func NewPayload(job Job) Payload {
	name := job.MachineName
	if name == "" {
		name = fmt.Sprintf("Machine %d", job.MachineID)
	}
	return Payload{
		Title:     "Maintenance overdue",
		Body:      fmt.Sprintf("%s was due for maintenance on %s", name, job.ScheduledDate),
		RecordID:  job.RecordID,
		MachineID: job.MachineID,
		URL:       fmt.Sprintf("/machines/%d", job.MachineID),
	}
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		logger:  logger,
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log := wp.logger.With(zap.Int("worker", id))
	log.Debug("worker started")
	for {
		select {
		case job := <-wp.jobs:
			log.Debug("processing reminder", zap.Int64("record_id", job.RecordID), zap.Int64("machine_id", job.MachineID))
			wp.sendReminders(ctx, job)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues a job, blocking while the queue is full. It gives up when
// ctx is done.
func (wp *WorkerPool) Dispatch(ctx context.Context, job Job) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// sendReminders notifies every subscription following the job's machine.
func (wp *WorkerPool) sendReminders(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForMachine(ctx, job.MachineID)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions", zap.Int64("machine_id", job.MachineID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(NewPayload(job))
	if err != nil {
		wp.logger.Error("failed to encode reminder", zap.Int64("record_id", job.RecordID), zap.Error(err))
		return
	}

	wp.logger.Info("sending overdue reminders",
		zap.Int("subscriptions", len(subscriptions)),
		zap.Int64("record_id", job.RecordID),
		zap.Int64("machine_id", job.MachineID),
	)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification and drops the
// subscription when the push service reports it gone.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusGone, http.StatusNotFound:
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	default:
		if resp.StatusCode >= 400 {
			wp.logger.Warn("push service rejected notification", zap.String("endpoint", sub.Endpoint), zap.Int("status", resp.StatusCode))
		}
	}
}
