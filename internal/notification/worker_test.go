package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch("asg-123")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "asg-123", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func expectAssignmentLookup(mock sqlmock.Sqlmock, id string, endedAt *time.Time, status string) {
	mock.ExpectQuery(`SELECT \* FROM "assignments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "worker_id", "project_id", "position_id", "assignment_type", "status", "ended_at"}).
			AddRow(id, "w1", "pr1", "p1", "PRIMARY", status, endedAt))
}

func expectSubscriptionLookup(mock sqlmock.Sqlmock, endpoint string) {
	mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_project_mapping.*WHERE .*spm\.project_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
			AddRow(endpoint, "test_p256dh", "test_auth", time.Now()))
}

func expectLabelLookups(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT "full_name" FROM "workers" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"full_name"}).AddRow("Dana Voss"))
	mock.ExpectQuery(`SELECT "title" FROM "positions" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Crane Operator"))
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for a new assignment", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "New PRIMARY assignment: Dana Voss on Crane Operator", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectAssignmentLookup(mock, "asg-1", nil, "active")
		expectSubscriptionLookup(mock, "https://example.com/push")
		expectLabelLookups(mock)

		wp.Dispatch("asg-1")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("announces ended assignments", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		endedAt := time.Now()
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "Assignment ended: Dana Voss is no longer on Crane Operator (completed)", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectAssignmentLookup(mock, "asg-2", &endedAt, "completed")
		expectSubscriptionLookup(mock, "https://example.com/push")
		expectLabelLookups(mock)

		wp.Dispatch("asg-2")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		expectAssignmentLookup(mock, "asg-3", nil, "active")
		expectSubscriptionLookup(mock, "https://example.com/expired")
		expectLabelLookups(mock)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch("asg-3")

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
