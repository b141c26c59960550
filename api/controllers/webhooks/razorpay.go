package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rikscandle/rikscandle-backend/api/responses"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

// RazorpayWebhookService verifies and applies a raw gateway event.
type RazorpayWebhookService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type webhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// RazorpayWebhook handles payment lifecycle events pushed by the gateway.
// The body must stay untouched until the signature check, which runs over the
// raw bytes inside the service.
func RazorpayWebhook(svc RazorpayWebhookService, guard webhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := strings.TrimSpace(r.Header.Get("X-Razorpay-Signature"))
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidSignature, "webhook signature missing"))
			return
		}

		eventID := strings.TrimSpace(r.Header.Get("X-Razorpay-Event-Id"))
		if eventID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				responses.WriteSuccess(w, nil)
				return
			}
		}

		if err := svc.HandleWebhook(ctx, payload, signature); err != nil {
			if eventID != "" {
				_ = guard.Delete(ctx, eventID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil && eventID != "" {
			logg.Info(ctx, fmt.Sprintf("razorpay event %s processed", eventID))
		}
		responses.WriteSuccess(w, nil)
	}
}
