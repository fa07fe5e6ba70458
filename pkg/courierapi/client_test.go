package courierapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const couriersJSON = `{"couriers":[
	{"id":7,"full_name":"Иванов Иван","phone":"79991234567","city":"Москва",
	 "referral_code":"AB12","total_orders":42,"total_earnings":"15300.50",
	 "created_at":"2025-03-14T10:00:00Z"}
]}`

func TestFetchCouriers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "partner", r.URL.Query().Get("route"))
		assert.Equal(t, "couriers", r.URL.Query().Get("action"))
		assert.Equal(t, "secret", r.Header.Get("X-Auth-Token"))
		w.Write([]byte(couriersJSON))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Token: "secret"})
	couriers, err := client.FetchCouriers(context.Background())
	require.NoError(t, err)
	require.Len(t, couriers, 1)

	c := couriers[0]
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "Иванов Иван", c.FullName)
	assert.Equal(t, "AB12", c.ReferralCode)
	assert.Equal(t, 42, c.TotalOrders)
	assert.True(t, c.TotalEarnings.Equal(decimal.RequireFromString("15300.50")))
}

func TestFetchCouriers_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"full_name":"Петров Петр","referral_code":"CD34"}]`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	couriers, err := client.FetchCouriers(context.Background())
	require.NoError(t, err)
	require.Len(t, couriers, 1)
	assert.Equal(t, "Петров Петр", couriers[0].FullName)
}

func TestFetchCouriers_RetriesOn500(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, MaxRetries: 2})
	_, err := client.FetchCouriers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchCouriers_AuthFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, MaxRetries: 3})
	_, err := client.FetchCouriers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchCouriers_NoBaseURL(t *testing.T) {
	client := New(Config{})
	_, err := client.FetchCouriers(context.Background())
	assert.Error(t, err)
}
