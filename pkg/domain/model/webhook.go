package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypePing        WebhookEventType = "ping"
	EventTypeUnknown     WebhookEventType = "unknown"
)

// ActionClosed is the pull_request action sent when a pull request is merged.
const ActionClosed = "closed"

// WebhookEvent represents a webhook delivery received from GitHub
type WebhookEvent struct {
	ID         string           // X-GitHub-Delivery header
	Type       WebhookEventType // X-GitHub-Event header
	Action     string
	Repository string
	Sender     string
	ReceivedAt time.Time
	Trigger    *TriggerEvent
}

// IsSupportedEvent reports whether the delivery can start a hotfix run.
func (e *WebhookEvent) IsSupportedEvent() bool {
	switch e.Type {
	case EventTypePullRequest:
		return e.Action == ActionClosed && e.Trigger != nil
	default:
		return false
	}
}
