package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentGateway opens hosted Stripe pages.
type PaymentGateway interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
}

type stripeGateway struct{}

// NewStripeGateway sets the process wide Stripe key and returns a gateway
// backed by the Stripe API.
func NewStripeGateway(secretKey string) PaymentGateway {
	stripe.Key = secretKey
	return stripeGateway{}
}

func (stripeGateway) NewCheckoutSession(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return checkoutsession.New(p)
}

func (stripeGateway) NewPortalSession(p *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return portalsession.New(p)
}

type BillingConfig struct {
	PriceID       string
	WebhookSecret string
	AppURL        string
}

type BillingService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	cfg      BillingConfig
	notifier Notifier
}

// NewBillingService builds the service. gateway may be nil when Stripe is
// not configured; checkout and portal then fail with ErrNotConfigured.
func NewBillingService(db *gorm.DB, gateway PaymentGateway, cfg BillingConfig, n Notifier) *BillingService {
	if n == nil {
		n = NopNotifier{}
	}
	return &BillingService{db: db, gateway: gateway, cfg: cfg, notifier: n}
}

type SubscriptionInfo struct {
	Status           string     `json:"status"`
	Premium          bool       `json:"premium"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	HasCustomer      bool       `json:"has_customer"`
}

func (s *BillingService) Subscription(ctx context.Context, userID uint) (*SubscriptionInfo, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &SubscriptionInfo{
		Status:           user.SubscriptionStatus,
		Premium:          user.IsPremium(),
		CurrentPeriodEnd: user.CurrentPeriodEnd,
		HasCustomer:      user.StripeCustomerID != "",
	}, nil
}

// Checkout opens a subscription checkout for the premium price and returns
// its URL.
func (s *BillingService) Checkout(ctx context.Context, userID uint) (string, error) {
	if s.gateway == nil || s.cfg.PriceID == "" {
		return "", fmt.Errorf("%w: payments", ErrNotConfigured)
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return "", notFound(err, "user")
	}
	if user.SubscriptionStatus == models.SubscriptionActive {
		return "", fmt.Errorf("%w: subscription already active", ErrConflict)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(user.ID), 10)),
		SuccessURL:        stripe.String(s.cfg.AppURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(s.cfg.AppURL + "/billing/cancel"),
	}
	params.Context = ctx
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
	} else if user.Email != "" {
		params.CustomerEmail = stripe.String(user.Email)
	}
	sess, err := s.gateway.NewCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// Portal opens the Stripe billing portal for an existing customer.
func (s *BillingService) Portal(ctx context.Context, userID uint) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("%w: payments", ErrNotConfigured)
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return "", notFound(err, "user")
	}
	if user.StripeCustomerID == "" {
		return "", invalidf("no billing account yet, subscribe first")
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.AppURL + "/account"),
	}
	params.Context = ctx
	sess, err := s.gateway.NewPortalSession(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// VerifyWebhook checks the Stripe signature header and decodes the event.
func (s *BillingService) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if s.cfg.WebhookSecret == "" {
		return stripe.Event{}, fmt.Errorf("%w: webhook secret", ErrNotConfigured)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return stripe.Event{}, invalidf("webhook signature: %v", err)
	}
	return ev, nil
}

// ApplyEvent updates subscription state from a verified event. Unknown
// event types are ignored.
func (s *BillingService) ApplyEvent(ctx context.Context, ev stripe.Event) error {
	if ev.Data == nil {
		return invalidf("event %s has no data", ev.ID)
	}
	switch string(ev.Type) {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return invalidf("decode checkout session: %v", err)
		}
		return s.checkoutCompleted(ctx, &cs)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return invalidf("decode subscription: %v", err)
		}
		status := subscriptionStatus(sub.Status)
		if string(ev.Type) == "customer.subscription.deleted" {
			status = models.SubscriptionCanceled
		}
		var periodEnd *time.Time
		if sub.CurrentPeriodEnd > 0 {
			t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			periodEnd = &t
		}
		return s.updateByCustomer(ctx, customerID(sub.Customer), sub.ID, status, periodEnd)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return invalidf("decode invoice: %v", err)
		}
		subID := ""
		if inv.Subscription != nil {
			subID = inv.Subscription.ID
		}
		return s.updateByCustomer(ctx, customerID(inv.Customer), subID, models.SubscriptionPastDue, nil)
	}
	logger.Debug("ignored stripe event", zap.String("type", string(ev.Type)), zap.String("id", ev.ID))
	return nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func subscriptionStatus(st stripe.SubscriptionStatus) string {
	switch st {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionCanceled
	}
	return models.SubscriptionInactive
}

func (s *BillingService) checkoutCompleted(ctx context.Context, cs *stripe.CheckoutSession) error {
	db := s.db.WithContext(ctx)
	var user models.User
	var err error
	if id, perr := strconv.ParseUint(cs.ClientReferenceID, 10, 64); perr == nil {
		err = db.First(&user, uint(id)).Error
	} else {
		err = db.Where("stripe_customer_id = ?", customerID(cs.Customer)).First(&user).Error
	}
	if err != nil {
		return notFound(err, "user for checkout session")
	}

	updates := map[string]any{"subscription_status": models.SubscriptionActive}
	if c := customerID(cs.Customer); c != "" {
		updates["stripe_customer_id"] = c
	}
	if cs.Subscription != nil && cs.Subscription.ID != "" {
		updates["stripe_subscription_id"] = cs.Subscription.ID
	}
	return s.apply(ctx, &user, updates)
}

func (s *BillingService) updateByCustomer(ctx context.Context, customer, subscription, status string, periodEnd *time.Time) error {
	db := s.db.WithContext(ctx)
	var user models.User
	err := gorm.ErrRecordNotFound
	if customer != "" {
		err = db.Where("stripe_customer_id = ?", customer).First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && subscription != "" {
		err = db.Where("stripe_subscription_id = ?", subscription).First(&user).Error
	}
	if err != nil {
		return notFound(err, "user for stripe customer")
	}

	updates := map[string]any{"subscription_status": status}
	if subscription != "" {
		updates["stripe_subscription_id"] = subscription
	}
	if periodEnd != nil {
		updates["current_period_end"] = *periodEnd
	}
	return s.apply(ctx, &user, updates)
}

func (s *BillingService) apply(ctx context.Context, user *models.User, updates map[string]any) error {
	previous := user.SubscriptionStatus
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return err
	}
	next, _ := updates["subscription_status"].(string)
	if next == previous {
		return nil
	}
	logger.Info("subscription status changed",
		zap.Uint("user_id", user.ID), zap.String("from", previous), zap.String("to", next))
	switch next {
	case models.SubscriptionActive:
		s.notifier.EmitAlert(ctx, user.ID, "info", "Your premium subscription is active. Enjoy unlimited planning!")
	case models.SubscriptionPastDue:
		s.notifier.EmitAlert(ctx, user.ID, "warning", "Your last payment failed. Update your payment method to keep premium.")
	case models.SubscriptionCanceled:
		s.notifier.EmitAlert(ctx, user.ID, "warning", "Your premium subscription has ended. Free plan limits apply again.")
	}
	return nil
}
