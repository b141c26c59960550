package razorpay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rzp "github.com/razorpay/razorpay-go"

	"github.com/rikscandle/rikscandle-backend/pkg/config"
	pkgerrors "github.com/rikscandle/rikscandle-backend/pkg/errors"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

var (
	errKeyIDRequired         = errors.New("razorpay key id is required")
	errKeySecretRequired     = errors.New("razorpay key secret is required")
	errWebhookSecretRequired = errors.New("razorpay webhook secret is required")
	errLoggerRequired        = errors.New("razorpay logger is required")
)

// Client exposes Razorpay primitives with centralized auth, timeouts, and
// signature verification.
type Client struct {
	sdk           *rzp.Client
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	logger        *logger.Logger
}

// GatewayOrder is the remote payment-intent created ahead of capture.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	sdk := rzp.NewClient(keyID, keySecret)
	if cfg.RequestTimeout > 0 {
		sdk.SetTimeout(int16(cfg.RequestTimeout.Seconds()))
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:           sdk,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      currency,
		logger:        logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// KeyID returns the public key identifier handed to browser checkouts.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder opens a remote payment session for the given amount in minor
// units (paise). The receipt correlates the session back to the local order.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, receipt string, notes map[string]string) (*GatewayOrder, error) {
	if c == nil || c.sdk == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "razorpay client not initialized")
	}
	if amountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": c.currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		noteData := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			noteData[k] = v
		}
		data["notes"] = noteData
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.logger.Error(ctx, "razorpay order create failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "create gateway order")
	}

	id, _ := body["id"].(string)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGatewayUnavailable, "gateway returned no order id")
	}

	out := &GatewayOrder{
		ID:       id,
		Amount:   amountPaise,
		Currency: c.currency,
		Receipt:  receipt,
	}
	if amt, ok := body["amount"].(float64); ok {
		out.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok && cur != "" {
		out.Currency = cur
	}
	return out, nil
}

// VerifyPaymentSignature checks the checkout confirmation triple. The signed
// payload is "<gatewayOrderID>|<paymentID>" per the gateway contract.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	payload := fmt.Sprintf("%s|%s", gatewayOrderID, paymentID)
	return verifyHMAC([]byte(payload), c.keySecret, signature)
}

// VerifyWebhookSignature validates an asynchronous event against the raw,
// unparsed body bytes. Reserializing the payload before this call breaks the
// signature.
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	if c == nil {
		return false
	}
	return verifyHMAC(payload, c.webhookSecret, signature)
}
