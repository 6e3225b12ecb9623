package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.7", r.URL.Path)
		w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	loc, ok := r.Lookup(context.Background(), "203.0.113.7")
	require.True(t, ok)
	assert.Equal(t, "Germany", loc.Country)
	assert.Equal(t, "Berlin", loc.City)
}

func TestLookupFailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	_, ok := r.Lookup(context.Background(), "203.0.113.7")
	assert.False(t, ok)
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	_, ok := r.Lookup(context.Background(), "203.0.113.7")
	assert.False(t, ok)
}

func TestLookupDisabled(t *testing.T) {
	r := NewHTTPResolver("")
	_, ok := r.Lookup(context.Background(), "203.0.113.7")
	assert.False(t, ok)
}

func TestLookupTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL)
	r.client.Timeout = 10 * time.Millisecond

	_, ok := r.Lookup(context.Background(), "203.0.113.7")
	assert.False(t, ok)
}
