package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
	"github.com/Rasheed240/ApexBuild-BE-sub002/workflow"
)

// Notifier persists in-app notification rows and, when NOTIFY_WEBHOOK_URL is
// configured, forwards each one to the webhook behind a circuit breaker. The
// row is the source of truth; delivery failures are logged and dropped so a
// flaky downstream can never fail the workflow operation that triggered the
// notification.
type Notifier struct {
	db         *gorm.DB
	log        *logrus.Logger
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	webhookURL string
}

func NewNotifier(db *gorm.DB, log *logrus.Logger) *Notifier {
	n := &Notifier{
		db:         db,
		log:        log,
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
	n.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-webhook",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Infof("circuit breaker %s changed from %s to %s", name, from.String(), to.String())
		},
	})
	return n
}

func (n *Notifier) Notify(ctx context.Context, req workflow.Notification) {
	row := models.Notification{
		UserID:   req.UserID,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Channel:  req.Channel,
	}
	if req.RelatedID != 0 {
		id := req.RelatedID
		row.RelatedEntityID = &id
	}
	if req.RelatedType != "" {
		t := req.RelatedType
		row.RelatedEntity = &t
	}
	if req.ActionLink != "" {
		l := req.ActionLink
		row.ActionLink = &l
	}

	if err := n.db.WithContext(ctx).Create(&row).Error; err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  req.UserID,
			"category": req.Category,
		}).Error("failed to store notification")
		return
	}

	if n.webhookURL == "" {
		return
	}
	if _, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.postWebhook(ctx, &row)
	}); err != nil {
		n.log.WithError(err).WithField("notification_id", row.ID).Warn("webhook delivery failed")
	}
}

func (n *Notifier) postWebhook(ctx context.Context, row *models.Notification) error {
	body, err := json.Marshal(row)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &webhookError{status: resp.StatusCode}
	}
	return nil
}

type webhookError struct {
	status int
}

func (e *webhookError) Error() string {
	return http.StatusText(e.status)
}
