package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lipa/config"
	"lipa/internal/checkout"
	"lipa/internal/domain"
	"lipa/internal/middleware"
	"lipa/internal/models"
	"lipa/internal/repository"
	"lipa/internal/ws"
	"lipa/pkg/gateway"
)

type CheckoutHandler struct {
	cfg         *config.Config
	store       *checkout.Store
	provider    gateway.Provider
	orderRepo   *repository.OrderRepository
	paymentRepo *repository.PaymentRepository
	hub         *ws.CheckoutHub
}

func NewCheckoutHandler(
	cfg *config.Config,
	store *checkout.Store,
	provider gateway.Provider,
	orderRepo *repository.OrderRepository,
	paymentRepo *repository.PaymentRepository,
	hub *ws.CheckoutHub,
) *CheckoutHandler {
	return &CheckoutHandler{
		cfg:         cfg,
		store:       store,
		provider:    provider,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		hub:         hub,
	}
}

// Start opens a checkout session and submits the charge. Mobile-money
// payments come back in state waiting_confirmation (the user still has to
// approve on their phone); the apps then watch GET /checkout/:id or the
// WebSocket stream. Card payments settle synchronously.
func (h *CheckoutHandler) Start(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Method          string          `json:"method" binding:"required,oneof=mobile_money card"`
		Operator        string          `json:"operator"`
		PhoneNumber     string          `json:"phone_number"`
		CardNumber      string          `json:"card_number"`
		Amount          float64         `json:"amount" binding:"required,gt=0"` // minor currency units
		CountryCode     string          `json:"country_code"`
		RestaurantName  string          `json:"restaurant_name" binding:"required"`
		Items           json.RawMessage `json:"items" binding:"required"`
		DeliveryAddress string          `json:"delivery_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := uuid.New().String()
	operator := req.Operator
	if operator == "" {
		operator = "mobile_money"
	}
	items := string(req.Items)

	sess := checkout.New(sessionID, h.provider, checkout.Options{
		Timings: checkout.Timings{
			PollInterval:   h.cfg.Checkout.PollInterval,
			ConfirmTimeout: h.cfg.Checkout.ConfirmTimeout,
			OverrideGrace:  h.cfg.Checkout.OverrideGrace,
			FinalizeDelay:  h.cfg.Checkout.FinalizeDelay,
		},
		OnComplete: func(res checkout.CompletionResult) {
			h.persistOrder(sessionID, userID, req.RestaurantName, items, req.DeliveryAddress, res)
		},
		OnTransition: func(snap checkout.Snapshot) {
			h.hub.Publish(snap.ID, snap)
			h.recordTransition(snap)
		},
	})
	sess.UserID = userID

	var err error
	switch req.Method {
	case "card":
		err = sess.StartCard("card-"+sessionID, req.CardNumber, req.Amount)
	default:
		country := gateway.Country(req.CountryCode)
		if !country.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "country_code must be one of DRC, KE, UG"})
			return
		}
		err = sess.Start(c.Request.Context(), operator, req.PhoneNumber, req.Amount, country)
	}
	if err != nil {
		var ve *checkout.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return
		}
		var ge *gateway.GatewayError
		if errors.As(err, &ge) {
			c.JSON(http.StatusBadGateway, gin.H{"error": ge.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment could not be started"})
		return
	}

	h.store.Add(sess)
	snap := sess.Snapshot()
	rec := &models.PaymentRecord{
		SessionID:     sessionID,
		UserID:        userID,
		TransactionID: snap.TransactionID,
		Operator:      operator,
		PhoneNumber:   req.PhoneNumber,
		Amount:        gateway.NormalizeAmount(req.Amount),
		Country:       req.CountryCode,
		Status:        string(snap.State),
	}
	if err := h.paymentRepo.Create(rec); err != nil {
		log.Printf("[CHECKOUT] session %s: payment record create failed: %v", sessionID, err)
	}
	c.JSON(http.StatusCreated, snap)
}

// Status returns the current session snapshot.
func (h *CheckoutHandler) Status(c *gin.Context) {
	sess, ok := h.ownedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Confirm is the manual override: the user asserts they approved the charge
// on their phone even though we could not verify it.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	sess, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if err := sess.ManualOverride(); err != nil {
		switch {
		case errors.Is(err, checkout.ErrOverrideNotAvailable):
			c.JSON(http.StatusConflict, gin.H{"error": "manual confirmation is not available yet"})
		case errors.Is(err, checkout.ErrNotConfirmable), errors.Is(err, checkout.ErrSessionClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "session is not awaiting confirmation"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		}
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Cancel tears the session down when the user dismisses the payment UI.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	sess, ok := h.ownedSession(c)
	if !ok {
		return
	}
	if err := sess.Cancel(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "session already finished"})
		return
	}
	h.store.Remove(sess.ID)
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

func (h *CheckoutHandler) ownedSession(c *gin.Context) (*checkout.Session, bool) {
	sess, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	if sess.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		return nil, false
	}
	return sess, true
}

// persistOrder is the completion callback: it runs once per completed
// session, after the finalize delay, and writes the order the customer paid
// for. Orders never exist for sessions that did not complete.
func (h *CheckoutHandler) persistOrder(sessionID string, userID uint, restaurantName, items, deliveryAddress string, res checkout.CompletionResult) {
	order := &models.Order{
		Reference:          uuid.New().String(),
		UserID:             userID,
		RestaurantName:     restaurantName,
		Items:              items,
		Amount:             res.Amount,
		DeliveryAddress:    deliveryAddress,
		Operator:           res.Operator,
		PhoneNumber:        res.PhoneNumber,
		TransactionRef:     res.TransactionRef,
		VerificationStatus: string(res.VerificationStatus),
		Status:             domain.OrderStatusPlaced,
	}
	if err := h.orderRepo.Create(order); err != nil {
		log.Printf("[CHECKOUT] session %s: order create failed: %v", sessionID, err)
		return
	}
	log.Printf("[CHECKOUT] session %s: order %s placed verification=%s tx=%s", sessionID, order.Reference, res.VerificationStatus, res.TransactionRef)
	if rec, err := h.paymentRepo.GetBySessionID(sessionID); err == nil {
		rec.VerificationStatus = string(res.VerificationStatus)
		rec.TransactionID = res.TransactionRef
		if err := h.paymentRepo.Update(rec); err != nil {
			log.Printf("[CHECKOUT] session %s: payment record update failed: %v", sessionID, err)
		}
	}
	h.hub.Publish(sessionID, gin.H{"session_id": sessionID, "state": "completed", "order_reference": order.Reference})
}

// recordTransition keeps the payment record's status column in step with the
// session so support can see how an attempt ended.
func (h *CheckoutHandler) recordTransition(snap checkout.Snapshot) {
	if !snap.State.Terminal() {
		return
	}
	rec, err := h.paymentRepo.GetBySessionID(snap.ID)
	if err != nil {
		return
	}
	rec.Status = string(snap.State)
	rec.FailureReason = snap.Error
	if rec.TransactionID == "" {
		rec.TransactionID = snap.TransactionID
	}
	if err := h.paymentRepo.Update(rec); err != nil {
		log.Printf("[CHECKOUT] session %s: payment record update failed: %v", snap.ID, err)
	}
}
