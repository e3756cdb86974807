package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Simulator is an in-process provider for development, used when no merchant
// credentials are configured. Transactions start pending and complete after a
// couple of status checks, mimicking a user confirming on their phone.
type Simulator struct {
	mu     sync.Mutex
	checks map[string]int
}

func NewSimulator() *Simulator {
	return &Simulator{checks: make(map[string]int)}
}

func (s *Simulator) Initiate(ctx context.Context, req PaymentRequest) (*TransactionStatus, error) {
	if req.PhoneNumber == "" {
		return nil, &GatewayError{StatusCode: 400, Message: "clientPhoneNumber is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("sim-%d", time.Now().UnixNano())
	s.checks[id] = 0
	return &TransactionStatus{ID: id, Status: StatusPending}, nil
}

func (s *Simulator) CheckStatus(ctx context.Context, transactionID string) (*TransactionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.checks[transactionID]
	if !ok {
		return nil, &GatewayError{StatusCode: 404, Message: "transaction not found"}
	}
	s.checks[transactionID] = n + 1
	if n+1 >= 2 {
		return &TransactionStatus{ID: transactionID, Status: StatusCompleted}, nil
	}
	return &TransactionStatus{ID: transactionID, Status: StatusPending}, nil
}
