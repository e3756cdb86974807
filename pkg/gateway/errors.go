package gateway

import (
	"errors"
	"fmt"
)

// GatewayError is returned when the provider answers with a non-success HTTP
// status. Message carries the provider's own message when one was present.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
}

// AuthorizationError marks a status check the provider rejected outright
// (HTTP 401 or an "Unauthorized" body). It means the verification endpoint
// itself is blocked for us, not that the payment failed, so the checkout
// flow degrades to manual confirmation instead of erroring out.
type AuthorizationError struct {
	GatewayError
}

// IsAuthorization reports whether err is (or wraps) an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
