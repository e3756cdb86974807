package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"lipa/pkg/gateway"
)

// State of one checkout attempt. completed and error are terminal; a session
// that reaches either never restarts (a new attempt is a new session).
type State string

const (
	StateIdle                State = "idle"
	StateProcessing          State = "processing"
	StateWaitingConfirmation State = "waiting_confirmation"
	StateCompleted           State = "completed"
	StateError               State = "error"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateError
}

type VerificationStatus string

const (
	// VerificationPaid means the gateway itself reported the transaction
	// completed.
	VerificationPaid VerificationStatus = "paid"
	// VerificationManualCheck means the user asserted success via the manual
	// override; the order must be reconciled against the provider later.
	VerificationManualCheck VerificationStatus = "manual_check"
)

// CompletionResult is handed to the completion callback exactly once per
// session that reaches completed.
type CompletionResult struct {
	Operator           string
	PhoneNumber        string
	TransactionRef     string
	Amount             int64
	VerificationStatus VerificationStatus
}

type CompletionFunc func(res CompletionResult)

// Timings for the confirmation flow. Zero values fall back to production
// defaults; tests compress them to milliseconds.
type Timings struct {
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	OverrideGrace  time.Duration
	FinalizeDelay  time.Duration
}

func (t Timings) withDefaults() Timings {
	if t.PollInterval <= 0 {
		t.PollInterval = 4 * time.Second
	}
	if t.ConfirmTimeout <= 0 {
		t.ConfirmTimeout = 60 * time.Second
	}
	if t.OverrideGrace <= 0 {
		t.OverrideGrace = 15 * time.Second
	}
	if t.FinalizeDelay <= 0 {
		t.FinalizeDelay = 2 * time.Second
	}
	return t
}

var (
	ErrAlreadyStarted       = errors.New("checkout session already started")
	ErrSessionClosed        = errors.New("checkout session is closed")
	ErrNotConfirmable       = errors.New("session is not awaiting confirmation")
	ErrOverrideNotAvailable = errors.New("manual confirmation is not available yet")
)

// ValidationError rejects payment input before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Snapshot is a read-only view of a session for the HTTP and WebSocket
// surfaces.
type Snapshot struct {
	ID                     string    `json:"session_id"`
	State                  State     `json:"state"`
	TransactionID          string    `json:"transaction_id,omitempty"`
	ManualOverrideEligible bool      `json:"manual_override_eligible"`
	Error                  string    `json:"error,omitempty"`
	StartedAt              time.Time `json:"started_at"`
}

// Options configures a session. OnComplete receives the CompletionResult
// after the finalize delay; OnTransition fires on every state change (used to
// push live updates to the apps).
type Options struct {
	Timings      Timings
	OnComplete   CompletionFunc
	OnTransition func(Snapshot)
}

// Session drives a single checkout attempt: submit the charge, then supervise
// a bounded polling loop with a hard timeout and a manual-override escape
// hatch. One session covers one attempt; a terminal session never restarts
// its polling loop (state guards enforce this).
//
// Three pieces of scheduled work run for a waiting session: the poll loop,
// the hard timeout, and the override grace timer. All of them re-check state
// and the active flag under s.mu before acting, so a response that lands
// after Cancel is a no-op. In-flight HTTP requests are not cancelled; their
// results are simply ignored.
type Session struct {
	ID     string
	UserID uint

	provider     gateway.Provider
	timings      Timings
	onComplete   CompletionFunc
	onTransition func(Snapshot)

	mu             sync.Mutex
	state          State
	active         bool
	operator       string
	phone          string
	country        gateway.Country
	amount         int64
	transactionID  string
	startedAt      time.Time
	overrideReady  bool
	authDegraded   bool
	errMsg         string
	callbackFired  bool
	done           chan struct{}
	doneClosed     bool
	timeoutTimer   *time.Timer
	graceTimer     *time.Timer
}

func New(id string, provider gateway.Provider, opts Options) *Session {
	return &Session{
		ID:           id,
		provider:     provider,
		timings:      opts.Timings.withDefaults(),
		onComplete:   opts.OnComplete,
		onTransition: opts.OnTransition,
		state:        StateIdle,
		active:       true,
		done:         make(chan struct{}),
	}
}

// Start submits a mobile-money charge. The phone number is normalized to
// international format first; an empty or malformed number is rejected
// before anything goes over the wire. If the gateway settles synchronously
// the session completes immediately, otherwise it enters
// waiting_confirmation and the polling loop takes over.
//
// An initiate failure resets the session to idle so the user can retry at
// once.
func (s *Session) Start(ctx context.Context, operator, phoneNumber string, amount float64, country gateway.Country) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	normalized, err := gateway.NormalizePhone(phoneNumber, country)
	if err != nil {
		s.mu.Unlock()
		return &ValidationError{Field: "phone_number", Reason: err.Error()}
	}
	s.state = StateProcessing
	s.operator = operator
	s.phone = normalized
	s.country = country
	s.amount = gateway.NormalizeAmount(amount)
	s.startedAt = time.Now()
	s.notifyLocked()
	s.mu.Unlock()

	status, err := s.provider.Initiate(ctx, gateway.PaymentRequest{
		PhoneNumber: normalized,
		Amount:      amount,
		Country:     country,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		// Cancelled while the initiate call was in flight.
		return ErrSessionClosed
	}
	if err != nil {
		log.Printf("[CHECKOUT] session %s: initiate failed: %v", s.ID, err)
		s.state = StateIdle
		s.notifyLocked()
		return err
	}
	s.transactionID = status.ID
	if status.Status == gateway.StatusCompleted {
		log.Printf("[CHECKOUT] session %s: settled synchronously tx=%s", s.ID, status.ID)
		s.completeLocked(VerificationPaid, s.timings.FinalizeDelay)
		return nil
	}
	s.state = StateWaitingConfirmation
	s.notifyLocked()
	s.timeoutTimer = time.AfterFunc(s.timings.ConfirmTimeout, s.onTimeout)
	s.graceTimer = time.AfterFunc(s.timings.OverrideGrace, s.onGrace)
	go s.poll()
	log.Printf("[CHECKOUT] session %s: waiting for confirmation tx=%s", s.ID, status.ID)
	return nil
}

// StartCard runs the card path: no polling, no confirmation wait. The charge
// is simulated and the session completes with verification status paid.
func (s *Session) StartCard(reference, cardNumber string, amount float64) error {
	if len(cardNumber) < 12 {
		return &ValidationError{Field: "card_number", Reason: "card number is too short"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrSessionClosed
	}
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	s.state = StateProcessing
	s.operator = "card"
	s.amount = gateway.NormalizeAmount(amount)
	s.transactionID = reference
	s.startedAt = time.Now()
	s.notifyLocked()
	log.Printf("[CHECKOUT] session %s: card charge simulated ref=%s", s.ID, reference)
	s.completeLocked(VerificationPaid, s.timings.FinalizeDelay)
	return nil
}

// poll checks the transaction every PollInterval while the session is still
// waiting. Transient check failures are logged and retried at the same
// cadence. An authorization failure stops the loop for good, disarms the
// hard timeout and leaves the session waiting for the user's own say-so.
func (s *Session) poll() {
	ticker := time.NewTicker(s.timings.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if !s.active || s.state != StateWaitingConfirmation {
			s.mu.Unlock()
			return
		}
		id := s.transactionID
		s.mu.Unlock()

		status, err := s.provider.CheckStatus(context.Background(), id)

		s.mu.Lock()
		if !s.active || s.state != StateWaitingConfirmation {
			// Session was torn down while the check was in flight.
			s.mu.Unlock()
			return
		}
		if err != nil {
			if gateway.IsAuthorization(err) {
				// The verification endpoint is blocked for us; polling will
				// never succeed. Stay in waiting_confirmation with the hard
				// timeout disarmed and let the user confirm manually.
				log.Printf("[CHECKOUT] session %s: status check unauthorized, switching to manual confirmation", s.ID)
				s.authDegraded = true
				s.overrideReady = true
				if s.timeoutTimer != nil {
					s.timeoutTimer.Stop()
				}
				s.notifyLocked()
				s.mu.Unlock()
				return
			}
			log.Printf("[CHECKOUT] session %s: status check failed, will retry: %v", s.ID, err)
			s.mu.Unlock()
			continue
		}
		switch status.Status {
		case gateway.StatusCompleted:
			log.Printf("[CHECKOUT] session %s: confirmed tx=%s", s.ID, id)
			s.completeLocked(VerificationPaid, s.timings.FinalizeDelay)
			s.mu.Unlock()
			return
		case gateway.StatusFailed:
			reason := status.FailureReason
			if reason == "" {
				reason = "payment failed"
			}
			s.failLocked(reason)
			s.mu.Unlock()
			return
		default:
			s.mu.Unlock()
		}
	}
}

// ManualOverride records the user's assertion that they confirmed the charge
// on their phone. The resulting order is flagged manual_check for later
// reconciliation; the callback fires without the finalize delay.
func (s *Session) ManualOverride() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return ErrSessionClosed
	}
	if s.state != StateWaitingConfirmation {
		return ErrNotConfirmable
	}
	if !s.overrideReady {
		return ErrOverrideNotAvailable
	}
	log.Printf("[CHECKOUT] session %s: user confirmed manually tx=%s", s.ID, s.transactionID)
	s.completeLocked(VerificationManualCheck, 0)
	return nil
}

// Cancel tears down a session whose payment UI was dismissed. The active
// flag flips before the timers are cleared so a poll response or timer
// already in flight cannot act on the dead session. A session that has
// completed (or started finalizing) stays completed; its callback is not
// retracted.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.state.Terminal() {
		return ErrSessionClosed
	}
	s.active = false
	s.stopTimersLocked()
	s.closeDoneLocked()
	log.Printf("[CHECKOUT] session %s: cancelled in state %s", s.ID, s.state)
	return nil
}

// Snapshot returns the current state for the HTTP/WebSocket surfaces.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Finished reports whether the session can be swept from the store.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.active || s.state.Terminal()
}

// StartedAt returns when the attempt was submitted (zero before Start).
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

func (s *Session) onTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.state != StateWaitingConfirmation || s.authDegraded {
		return
	}
	log.Printf("[CHECKOUT] session %s: confirmation timed out tx=%s", s.ID, s.transactionID)
	s.failLocked("confirmation not received in time")
}

func (s *Session) onGrace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.state != StateWaitingConfirmation || s.overrideReady {
		return
	}
	s.overrideReady = true
	s.notifyLocked()
}

// completeLocked transitions to completed, stops all scheduled work and
// schedules the completion callback after delay. The callbackFired guard
// makes the callback fire at most once no matter how completion was reached.
// Caller holds s.mu.
func (s *Session) completeLocked(v VerificationStatus, delay time.Duration) {
	if s.state.Terminal() {
		return
	}
	s.state = StateCompleted
	s.stopTimersLocked()
	s.closeDoneLocked()
	s.notifyLocked()
	res := CompletionResult{
		Operator:           s.operator,
		PhoneNumber:        s.phone,
		TransactionRef:     s.transactionID,
		Amount:             s.amount,
		VerificationStatus: v,
	}
	cb := s.onComplete
	fire := func() {
		s.mu.Lock()
		if s.callbackFired {
			s.mu.Unlock()
			return
		}
		s.callbackFired = true
		s.mu.Unlock()
		if cb != nil {
			cb(res)
		}
	}
	if delay > 0 {
		time.AfterFunc(delay, fire)
	} else {
		go fire()
	}
}

// failLocked transitions to error. Caller holds s.mu.
func (s *Session) failLocked(msg string) {
	if s.state.Terminal() {
		return
	}
	s.state = StateError
	s.errMsg = msg
	s.stopTimersLocked()
	s.closeDoneLocked()
	s.notifyLocked()
}

func (s *Session) stopTimersLocked() {
	if s.timeoutTimer != nil {
		s.timeoutTimer.Stop()
	}
	if s.graceTimer != nil {
		s.graceTimer.Stop()
	}
}

func (s *Session) closeDoneLocked() {
	if !s.doneClosed {
		s.doneClosed = true
		close(s.done)
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:                     s.ID,
		State:                  s.state,
		TransactionID:          s.transactionID,
		ManualOverrideEligible: s.overrideReady,
		Error:                  s.errMsg,
		StartedAt:              s.startedAt,
	}
}

// notifyLocked publishes the current snapshot on a fresh goroutine so the
// transition hook never runs under s.mu. Caller holds s.mu.
func (s *Session) notifyLocked() {
	if s.onTransition == nil {
		return
	}
	snap := s.snapshotLocked()
	hook := s.onTransition
	go hook(snap)
}
