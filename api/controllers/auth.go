package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rikscandle/rikscandle-backend/api/responses"
	"github.com/rikscandle/rikscandle-backend/api/validators"
	user "github.com/rikscandle/rikscandle-backend/internal/users"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

// LoginRequest is the login endpoint payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginService authenticates a user and mints an access token.
type LoginService interface {
	Login(ctx context.Context, email, password string) (*user.LoginResult, error)
}

// GuestOrderClaimer attaches past guest orders to a freshly logged-in account.
type GuestOrderClaimer interface {
	ClaimGuestOrders(ctx context.Context, email string, userID uuid.UUID) (int64, error)
}

// AuthLogin wires the login endpoint into the HTTP layer. Guest orders placed
// with the same email are claimed on every successful login, not just the
// first one, so orders placed between sessions are picked up too.
func AuthLogin(svc LoginService, claimer GuestOrderClaimer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if claimer != nil {
			if _, err := claimer.ClaimGuestOrders(r.Context(), result.User.Email, result.User.ID); err != nil && logg != nil {
				ctx := logg.WithField(r.Context(), "error", err.Error())
				logg.Warn(ctx, "guest order claim failed")
			}
		}

		w.Header().Set("X-RC-Token", result.Token)
		responses.WriteSuccess(w, result)
	}
}
