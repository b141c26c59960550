package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
)

type stubWebhookService struct {
	payload   []byte
	signature string
	calls     int
	err       error
}

func (s *stubWebhookService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	s.payload = payload
	s.signature = signature
	s.calls++
	return s.err
}

type stubGuard struct {
	marked  map[string]bool
	deleted []string
	err     error
}

func newStubGuard() *stubGuard {
	return &stubGuard{marked: make(map[string]bool)}
}

func (g *stubGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.marked[eventID] {
		return true, nil
	}
	g.marked[eventID] = true
	return false, nil
}

func (g *stubGuard) Delete(ctx context.Context, eventID string) error {
	g.deleted = append(g.deleted, eventID)
	delete(g.marked, eventID)
	return nil
}

func webhookRequest(body []byte, signature, eventID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/razorpay/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	return req
}

func TestRazorpayWebhookForwardsRawBody(t *testing.T) {
	service := &stubWebhookService{}
	guard := newStubGuard()
	body := []byte(`{"event":"payment.captured"}`)

	rec := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(rec, webhookRequest(body, "sig", "evt_1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Equal(service.payload, body) {
		t.Fatalf("expected untouched raw body to reach the service")
	}
	if service.signature != "sig" {
		t.Fatalf("unexpected signature %q", service.signature)
	}
}

func TestRazorpayWebhookRejectsMissingSignature(t *testing.T) {
	service := &stubWebhookService{}
	guard := newStubGuard()

	rec := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(rec, webhookRequest([]byte(`{}`), "", "evt_1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service must not run without a signature")
	}
}

func TestRazorpayWebhookAcksDuplicateEvent(t *testing.T) {
	service := &stubWebhookService{}
	guard := newStubGuard()
	body := []byte(`{"event":"payment.captured"}`)

	first := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(first, webhookRequest(body, "sig", "evt_dup"))
	second := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(second, webhookRequest(body, "sig", "evt_dup"))

	if second.Code != http.StatusOK {
		t.Fatalf("duplicate delivery should ack, got %d", second.Code)
	}
	if service.calls != 1 {
		t.Fatalf("expected one processed delivery, got %d", service.calls)
	}
}

func TestRazorpayWebhookReleasesGuardOnFailure(t *testing.T) {
	service := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	guard := newStubGuard()

	rec := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(rec, webhookRequest([]byte(`{}`), "sig", "evt_fail"))

	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_fail" {
		t.Fatalf("expected guard key released for retry, got %v", guard.deleted)
	}
}

func TestRazorpayWebhookProcessesWithoutEventID(t *testing.T) {
	service := &stubWebhookService{}
	guard := newStubGuard()

	rec := httptest.NewRecorder()
	RazorpayWebhook(service, guard, nil).ServeHTTP(rec, webhookRequest([]byte(`{}`), "sig", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if service.calls != 1 {
		t.Fatalf("expected the event to be processed")
	}
	if len(guard.marked) != 0 {
		t.Fatalf("guard should not mark events without an id")
	}
}
