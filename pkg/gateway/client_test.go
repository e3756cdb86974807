package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lipa/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateSendsClampedAmount(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Amount            int64  `json:"amount"`
		ClientPhoneNumber string `json:"clientPhoneNumber"`
	}
	var gotMerchantID, gotMerchantSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMerchantID = r.Header.Get("X-Merchant-Id")
		gotMerchantSecret = r.Header.Get("X-Merchant-Secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(gateway.TransactionStatus{ID: "tx1", Status: gateway.StatusPending})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, "merchant-1", "secret-1")

	tests := []struct {
		amount float64
		want   int64
	}{
		{15000, 15000},
		{42.7, 100},
		{150.6, 151},
	}
	for _, tt := range tests {
		status, err := client.Initiate(context.Background(), gateway.PaymentRequest{
			PhoneNumber: "+243812345678",
			Amount:      tt.amount,
			Country:     gateway.CountryDRC,
		})
		require.NoError(t, err)
		assert.Equal(t, "tx1", status.ID)
		assert.Equal(t, gateway.StatusPending, status.Status)
		assert.Equal(t, tt.want, gotBody.Amount, "amount %v", tt.amount)
	}
	assert.Equal(t, "/payment/DRC", gotPath)
	assert.Equal(t, "+243812345678", gotBody.ClientPhoneNumber)
	assert.Equal(t, "merchant-1", gotMerchantID)
	assert.Equal(t, "secret-1", gotMerchantSecret)
}

func TestInitiateSurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"operator unavailable"}`))
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, "m", "s")
	_, err := client.Initiate(context.Background(), gateway.PaymentRequest{
		PhoneNumber: "+243812345678",
		Amount:      15000,
		Country:     gateway.CountryDRC,
	})
	var ge *gateway.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnprocessableEntity, ge.StatusCode)
	assert.Equal(t, "operator unavailable", ge.Message)
	assert.False(t, gateway.IsAuthorization(err))
}

func TestInitiateGenericMessageWhenBodyEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, "m", "s")
	_, err := client.Initiate(context.Background(), gateway.PaymentRequest{
		PhoneNumber: "+243812345678",
		Amount:      15000,
		Country:     gateway.CountryDRC,
	})
	var ge *gateway.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "payment gateway request failed", ge.Message)
}

func TestCheckStatusReturnsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/tx9", r.URL.Path)
		json.NewEncoder(w).Encode(gateway.TransactionStatus{ID: "tx9", Status: gateway.StatusCompleted})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, "m", "s")
	status, err := client.CheckStatus(context.Background(), "tx9")
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusCompleted, status.Status)
}

func TestCheckStatusTagsAuthorizationFailures(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"http 401", http.StatusUnauthorized, `{"message":"bad credentials"}`},
		{"unauthorized body", http.StatusForbidden, `Unauthorized`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := gateway.NewClient(srv.URL, "m", "s")
			_, err := client.CheckStatus(context.Background(), "tx1")
			assert.True(t, gateway.IsAuthorization(err), "expected authorization error, got %v", err)
		})
	}
}

func TestCheckStatusTransientErrorNotAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"try again"}`))
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, "m", "s")
	_, err := client.CheckStatus(context.Background(), "tx1")
	var ge *gateway.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.False(t, gateway.IsAuthorization(err))
	assert.Equal(t, "try again", ge.Message)
}
