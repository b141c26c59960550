package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rikscandle/rikscandle-backend/internal/inventory"
	"github.com/rikscandle/rikscandle-backend/internal/pricing"
	"github.com/rikscandle/rikscandle-backend/pkg/auth"
	"github.com/rikscandle/rikscandle-backend/pkg/db/models"
	"github.com/rikscandle/rikscandle-backend/pkg/enums"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/mailer"
	"github.com/rikscandle/rikscandle-backend/pkg/pagination"
	"github.com/rikscandle/rikscandle-backend/pkg/types"
)

var (
	errRepoRequired    = errors.New("orders repository is required")
	errTxRequired      = errors.New("transaction runner is required")
	errPricerRequired  = errors.New("pricing service is required")
	errSettlerRequired = errors.New("inventory settler is required")
	errCatalogRequired = errors.New("catalog binder is required")
	errLoggerRequired  = errors.New("orders logger is required")
)

// Quoter prices an order server-side.
type Quoter interface {
	QuoteOrder(ctx context.Context, items []pricing.RequestItem, couponCode string) (*pricing.Quote, error)
}

// InvoiceRenderer produces the PDF attached to confirmation emails.
type InvoiceRenderer interface {
	Render(ctx context.Context, order *models.Order) ([]byte, error)
}

// AccountLookup resolves a registered account by email so guest checkouts
// land on the matching account straight away.
type AccountLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Settlement applies the stock adjustment for a claimed order.
type Settlement interface {
	SettleOrder(ctx context.Context, store inventory.ProductStore, order *models.Order) error
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogBinder returns a product store bound to the given transaction.
type CatalogBinder func(tx *gorm.DB) inventory.ProductStore

// Service owns the order lifecycle: creation, reads, admin status edits and
// the inventory settlement handoff.
type Service struct {
	repo        Repository
	tx          TxRunner
	pricer      Quoter
	settler     Settlement
	bindCatalog CatalogBinder
	accounts    AccountLookup
	mail        mailer.Sender
	invoices    InvoiceRenderer
	logger      *logger.Logger
	emailWait   time.Duration
}

// NewService wires the order service. accounts, mail and invoices may be nil
// when account linking or email is disabled entirely.
func NewService(
	repo Repository,
	tx TxRunner,
	pricer Quoter,
	settler Settlement,
	bindCatalog CatalogBinder,
	accounts AccountLookup,
	mail mailer.Sender,
	invoices InvoiceRenderer,
	logg *logger.Logger,
) (*Service, error) {
	switch {
	case repo == nil:
		return nil, errRepoRequired
	case tx == nil:
		return nil, errTxRequired
	case pricer == nil:
		return nil, errPricerRequired
	case settler == nil:
		return nil, errSettlerRequired
	case bindCatalog == nil:
		return nil, errCatalogRequired
	case logg == nil:
		return nil, errLoggerRequired
	}
	return &Service{
		repo:        repo,
		tx:          tx,
		pricer:      pricer,
		settler:     settler,
		bindCatalog: bindCatalog,
		accounts:    accounts,
		mail:        mail,
		invoices:    invoices,
		logger:      logg,
		emailWait:   10 * time.Second,
	}, nil
}

// Create prices and persists a new order. Totals and item snapshots come from
// the pricing engine; client-submitted amounts are ignored.
func (s *Service) Create(ctx context.Context, userID *uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	method := enums.PaymentMethod(strings.ToUpper(strings.TrimSpace(input.PaymentMethod)))
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	items := make([]pricing.RequestItem, 0, len(input.Items))
	for _, in := range input.Items {
		productID, err := uuid.Parse(in.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").
				WithDetails(map[string]any{"productId": in.ProductID})
		}
		items = append(items, pricing.RequestItem{ProductID: productID, Qty: in.Qty})
	}

	quote, err := s.pricer.QuoteOrder(ctx, items, input.CouponCode)
	if err != nil {
		return nil, err
	}

	status := enums.OrderStatusPlaced
	if method == enums.PaymentMethodRazorpay {
		status = enums.OrderStatusPending
	}

	order := &models.Order{
		UserID: userID,
		Contact: types.Contact{
			Name:  strings.TrimSpace(input.Contact.Name),
			Email: strings.ToLower(strings.TrimSpace(input.Contact.Email)),
			Phone: strings.TrimSpace(input.Contact.Phone),
		},
		ShippingAddress: types.ShippingAddress{
			Address: strings.TrimSpace(input.ShippingAddress.Address),
			City:    strings.TrimSpace(input.ShippingAddress.City),
			State:   strings.TrimSpace(input.ShippingAddress.State),
			Pin:     strings.TrimSpace(input.ShippingAddress.Pin),
		},
		PaymentMethod: method,
		Totals:        quote.Totals,
		Status:        status,
		Notes:         strings.TrimSpace(input.Notes),
		Items:         quote.Items,
	}

	// Guest checkouts still land on an existing account when the contact
	// email matches one.
	if order.UserID == nil && s.accounts != nil {
		switch account, err := s.accounts.FindByEmail(ctx, order.Contact.Email); {
		case err == nil:
			order.UserID = &account.ID
		case !pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "guest order account lookup failed")
		}
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, created.ID.String())
	s.logger.Info(ctx, fmt.Sprintf("order created (%s, %s)", created.PaymentMethod, created.Status))

	if method == enums.PaymentMethodCOD {
		s.sendOrderEmail(ctx, created, fmt.Sprintf("Order #%s placed", created.ShortID()),
			fmt.Sprintf("Thanks %s! Your order #%s for Rs. %s has been placed and will ship soon.",
				created.Contact.Name, created.ShortID(), created.Totals.GrandTotal.StringFixed(2)))
	}

	return created, nil
}

// Get loads one order with an ownership check. Orders are readable by their
// owner or an admin; guest orders carry the customer's contact details, so
// only admins may read those.
func (s *Service) Get(ctx context.Context, claims *auth.AccessTokenClaims, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(claims, order); err != nil {
		return nil, err
	}
	return order, nil
}

func authorizeRead(claims *auth.AccessTokenClaims, order *models.Order) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if claims.IsAdmin {
		return nil
	}
	if order.UserID != nil && claims.UserID == *order.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
}

// ListMine returns the caller's orders, newest first. Guest orders placed
// with the caller's email are claimed first so they show up in the page.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, email string, params pagination.Params) (*OrderList, error) {
	if email != "" {
		if _, err := s.ClaimGuestOrders(ctx, email, userID); err != nil {
			s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "guest order claim failed")
		}
	}
	return s.repo.ListByUser(ctx, userID, params)
}

// ListAll returns every order matching the filters. Admin only; the route
// guard enforces that.
func (s *Service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return s.repo.ListAll(ctx, params, filters)
}

// ClaimGuestOrders attaches matching guest orders to a freshly authenticated
// account.
func (s *Service) ClaimGuestOrders(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	claimed, err := s.repo.ClaimGuestOrders(ctx, email, userID)
	if err != nil {
		return 0, err
	}
	if claimed > 0 {
		s.logger.Info(s.logger.WithUserID(ctx, userID.String()),
			fmt.Sprintf("claimed %d guest orders", claimed))
	}
	return claimed, nil
}

// UpdateStatus applies an admin lifecycle edit: a status transition, a paid
// flag flip, or both. Moves outside the transition graph are rejected unless
// force is set, and forced moves are always logged.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if input.Status == "" && input.IsPaid == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status or isPaid is required")
	}

	var target enums.OrderStatus
	if input.Status != "" {
		target = enums.OrderStatus(input.Status)
		if !target.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]any{"status": input.Status})
		}
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx = s.logger.WithOrderID(ctx, order.ID.String())

	now := time.Now().UTC()
	updates := map[string]any{}

	if input.Status != "" {
		if !CanTransition(order.Status, target) {
			if !input.Force {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
					WithDetails(map[string]any{"from": order.Status, "to": target})
			}
			s.logger.Warn(ctx, fmt.Sprintf("forced status override %s -> %s", order.Status, target))
		}

		updates["status"] = target
		if target == enums.OrderStatusDelivered {
			// delivered_at records the first delivery only; a forced
			// re-entry keeps the original timestamp.
			if order.DeliveredAt == nil {
				updates["delivered_at"] = now
			}
			// Delivery is the payment event for cash on delivery.
			if order.PaymentMethod == enums.PaymentMethodCOD && !order.IsPaid {
				updates["is_paid"] = true
				updates["paid_at"] = now
			}
		}
	}

	// An explicit paid flag wins over the COD delivery default.
	if input.IsPaid != nil && *input.IsPaid != order.IsPaid {
		updates["is_paid"] = *input.IsPaid
		if *input.IsPaid {
			updates["paid_at"] = now
		} else {
			updates["paid_at"] = nil
		}
	}

	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	if target == enums.OrderStatusDelivered {
		if err := s.Settle(ctx, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, fmt.Sprintf("order status updated to %s", updated.Status))
	return updated, nil
}

// Settle runs inventory settlement for the order if it has not settled yet.
// The claim and the stock writes share one transaction, so concurrent callers
// cannot both apply the adjustment and a failed settlement releases the claim
// on rollback.
func (s *Service) Settle(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		claimed, err := txRepo.ClaimSettlement(ctx, id)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}

		order, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return s.settler.SettleOrder(ctx, s.bindCatalog(tx), order)
	})
}

// Delete removes an order permanently. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(s.logger.WithOrderID(ctx, id.String()), "order deleted")
	return nil
}

// SendConfirmationEmail notifies the customer that payment went through,
// attaching the PDF invoice when a renderer is wired. The payment flow calls
// this after a verified capture.
func (s *Service) SendConfirmationEmail(ctx context.Context, order *models.Order) {
	var attachments []mailer.Attachment
	if s.invoices != nil {
		pdf, err := s.invoices.Render(ctx, order)
		if err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, order.ID.String()), "invoice render for email failed", err)
		} else {
			attachments = append(attachments, mailer.Attachment{
				Filename:    fmt.Sprintf("invoice-%s.pdf", order.ShortID()),
				ContentType: "application/pdf",
				Data:        pdf,
			})
		}
	}

	s.sendOrderEmail(ctx, order, fmt.Sprintf("Order #%s confirmed", order.ShortID()),
		fmt.Sprintf("Thanks %s! Payment of Rs. %s for order #%s was received. We are preparing your candles.",
			order.Contact.Name, order.Totals.GrandTotal.StringFixed(2), order.ShortID()),
		attachments...)
}

// sendOrderEmail fires the notification from a goroutine so delivery latency
// or failure never surfaces on the order path.
func (s *Service) sendOrderEmail(ctx context.Context, order *models.Order, subject, body string, attachments ...mailer.Attachment) {
	if s.mail == nil || order.Contact.Email == "" {
		return
	}

	msg := mailer.Message{
		ToName:      order.Contact.Name,
		ToEmail:     order.Contact.Email,
		Subject:     subject,
		PlainText:   body,
		Attachments: attachments,
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(bg, s.emailWait)
		defer cancel()
		if err := s.mail.Send(sendCtx, msg); err != nil {
			s.logger.Error(sendCtx, "order email failed", err)
		}
	}()
}
