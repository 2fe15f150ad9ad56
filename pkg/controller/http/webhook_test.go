package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/hotfixer/pkg/controller/http"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
	"github.com/m-mizutani/hotfixer/pkg/usecase"
)

type mockWebhookUseCase struct {
	err    error
	events []*model.WebhookEvent
}

func (m *mockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockHotfixUseCase struct {
	events []*model.TriggerEvent
}

func (m *mockHotfixUseCase) Run(ctx context.Context, event *model.TriggerEvent) (*model.HotfixResult, error) {
	m.events = append(m.events, event)
	return &model.HotfixResult{}, nil
}

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func mergedPayload(t *testing.T) []byte {
	payload := map[string]any{
		"action": "closed",
		"number": 42,
		"pull_request": map[string]any{
			"number":           42,
			"merged":           true,
			"merge_commit_sha": "abc123",
			"base":             map[string]any{"ref": "main"},
			"labels":           []any{map[string]any{"name": "hotfix"}},
		},
		"repository": map[string]any{
			"name":      "widget",
			"full_name": "acme/widget",
			"owner":     map[string]any{"login": "acme"},
		},
		"sender": map[string]any{
			"login": "testuser",
		},
	}
	data, err := json.Marshal(payload)
	gt.NoError(t, err)
	return data
}

func newWebhookRequest(secret, eventType string, payload []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/hooks/github/app", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", generateSignature(secret, payload))
	return req
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	secret := "test-secret"

	tests := []struct {
		name           string
		signature      string
		wantStatusCode int
	}{
		{
			name:           "Invalid signature",
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Missing signature",
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Signed with another secret",
			signature:      generateSignature("other-secret", []byte(`{"action":"closed"}`)),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockWebhookUseCase{}
			handler := controller.NewWebhookHandler(secret, uc)

			req := httptest.NewRequest(http.MethodPost, "/hooks/github/app", bytes.NewReader([]byte(`{"action":"closed"}`)))
			req.Header.Set("X-GitHub-Event", "pull_request")
			req.Header.Set("X-Hub-Signature-256", tt.signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)

			gt.V(t, w.Code).Equal(tt.wantStatusCode)
			gt.A(t, uc.events).Length(0)
		})
	}
}

func TestWebhookHandler_PullRequestEvent(t *testing.T) {
	secret := "test-secret"
	uc := &mockWebhookUseCase{}
	handler := controller.NewWebhookHandler(secret, uc)

	w := httptest.NewRecorder()
	handler.Handle(w, newWebhookRequest(secret, "pull_request", mergedPayload(t)))
	gt.V(t, w.Code).Equal(http.StatusOK)

	var response map[string]string
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	gt.V(t, response["status"]).Equal("success")

	gt.A(t, uc.events).Length(1)
	event := uc.events[0]
	gt.V(t, event.ID).Equal("test-delivery")
	gt.V(t, event.Type).Equal(model.EventTypePullRequest)
	gt.V(t, event.Action).Equal("closed")
	gt.V(t, event.Repository).Equal("acme/widget")
	gt.V(t, event.Sender).Equal("testuser")
	gt.True(t, event.IsSupportedEvent())
	gt.V(t, event.Trigger.PullRequest.MergeCommitSHA).Equal(types.CommitSHA("abc123"))
	gt.V(t, event.Trigger.PullRequest.Number).Equal(42)
}

func TestWebhookHandler_OtherEvents(t *testing.T) {
	secret := "test-secret"

	tests := []struct {
		name      string
		eventType string
		payload   string
		wantType  model.WebhookEventType
	}{
		{
			name:      "ping",
			eventType: "ping",
			payload:   `{"zen":"Keep it logically awesome.","hook_id":1}`,
			wantType:  model.EventTypePing,
		},
		{
			name:      "release",
			eventType: "release",
			payload:   `{"action":"released","release":{"id":1},"repository":{"full_name":"acme/widget"}}`,
			wantType:  model.EventTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockWebhookUseCase{}
			handler := controller.NewWebhookHandler(secret, uc)

			w := httptest.NewRecorder()
			handler.Handle(w, newWebhookRequest(secret, tt.eventType, []byte(tt.payload)))
			gt.V(t, w.Code).Equal(http.StatusOK)

			gt.A(t, uc.events).Length(1)
			gt.V(t, uc.events[0].Type).Equal(tt.wantType)
			gt.False(t, uc.events[0].IsSupportedEvent())
		})
	}
}

func TestWebhookHandler_UseCaseError(t *testing.T) {
	secret := "test-secret"
	uc := &mockWebhookUseCase{err: goerr.New("boom")}
	handler := controller.NewWebhookHandler(secret, uc)

	w := httptest.NewRecorder()
	handler.Handle(w, newWebhookRequest(secret, "pull_request", mergedPayload(t)))
	gt.V(t, w.Code).Equal(http.StatusInternalServerError)
}

func TestWebhookHandler_Integration(t *testing.T) {
	ctx := context.Background()
	secret := "integration-test-secret"

	hotfix := &mockHotfixUseCase{}
	uc := usecase.NewWebhook(hotfix,
		usecase.WithTriggerLabel("hotfix"),
		usecase.WithDispatcher(func(ctx context.Context, handler func(ctx context.Context) error) {
			_ = handler(ctx)
		}),
	)

	server, err := controller.NewServer(
		ctx,
		uc,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(secret),
	)
	gt.NoError(t, err)

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payload := mergedPayload(t)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/hooks/github/app", bytes.NewReader(payload))
	gt.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "pull_request")
	req.Header.Set("X-GitHub-Delivery", "integration-test")
	req.Header.Set("X-Hub-Signature-256", generateSignature(secret, payload))

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()

	gt.V(t, resp.StatusCode).Equal(http.StatusOK)
	gt.A(t, hotfix.events).Length(1)
	gt.V(t, hotfix.events[0].FullName()).Equal("acme/widget")
}
