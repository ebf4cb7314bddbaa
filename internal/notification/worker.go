package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"crew-ops-backend/internal/model"
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

// WorkerPool manages a pool of workers fanning out assignment-event
// notifications to project subscribers.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case assignmentID := <-wp.jobs:
			wp.notifyForAssignment(ctx, assignmentID)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(assignmentID string) {
	wp.jobs <- assignmentID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// notifyForAssignment fetches the subscribers of the assignment's
// project and pushes an event message to each of them.
func (wp *WorkerPool) notifyForAssignment(ctx context.Context, assignmentID string) {
	var asg model.Assignment
	if err := wp.db.WithContext(ctx).First(&asg, "id = ?", assignmentID).Error; err != nil {
		log.Printf("Error fetching assignment %s: %v", assignmentID, err)
		return
	}

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_project_mapping spm ON spm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("spm.project_id = ?", asg.ProjectID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for project %s: %v", asg.ProjectID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for assignment %s", len(subscriptions), assignmentID)

	message := wp.buildMessage(ctx, &asg)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) buildMessage(ctx context.Context, asg *model.Assignment) string {
	workerLabel := asg.WorkerID
	var worker model.Worker
	if err := wp.db.WithContext(ctx).Select("full_name").First(&worker, "id = ?", asg.WorkerID).Error; err == nil && worker.FullName != "" {
		workerLabel = worker.FullName
	}

	positionLabel := asg.PositionID
	var position model.Position
	if err := wp.db.WithContext(ctx).Select("title").First(&position, "id = ?", asg.PositionID).Error; err == nil && position.Title != "" {
		positionLabel = position.Title
	}

	if asg.EndedAt != nil {
		return fmt.Sprintf("Assignment ended: %s is no longer on %s (%s)", workerLabel, positionLabel, asg.Status)
	}
	return fmt.Sprintf("New %s assignment: %s on %s", asg.AssignmentType, workerLabel, positionLabel)
}

// sendNotification sends a single web push notification.
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
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
