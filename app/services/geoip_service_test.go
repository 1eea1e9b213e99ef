// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rezashm/linkdrop/config"
	"github.com/stretchr/testify/assert"
)

func newGeoServiceForTest(endpoint string) GeoIPService {
	return NewGeoIPService(&config.GeoConfig{
		Endpoint: endpoint,
		Timeout:  2 * time.Second,
		Enabled:  true,
	})
}

func TestGeoIPRegion(t *testing.T) {
	t.Run("SuccessfulLookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/json/203.0.113.9", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success","country":"Germany","city":"Berlin"}`))
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, "Germany, Berlin", region)
	})

	t.Run("CountryOnly", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"success","country":"Germany","city":""}`))
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, "Germany", region)
	})

	t.Run("FailStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"fail","country":"","city":""}`))
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, UnknownRegion, region)
	})

	t.Run("Non200Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, UnknownRegion, region)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, UnknownRegion, region)
	})

	t.Run("UnreachableEndpoint", func(t *testing.T) {
		service := newGeoServiceForTest("http://127.0.0.1:1")
		region := service.Region(context.Background(), "203.0.113.9")
		assert.Equal(t, UnknownRegion, region)
	})

	t.Run("PrivateAddressesShortCircuit", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		service := newGeoServiceForTest(server.URL)
		for _, ip := range []string{"", "127.0.0.1", "10.1.2.3", "192.168.0.5", "0.0.0.0", "::1"} {
			region := service.Region(context.Background(), ip)
			assert.Equal(t, UnknownRegion, region, "ip %q", ip)
		}
		assert.False(t, called, "private addresses must not hit the lookup endpoint")
	})
}

func TestMockGeoIPService(t *testing.T) {
	mock := NewMockGeoIPService()
	mock.Regions["203.0.113.9"] = "Germany, Berlin"

	assert.Equal(t, "Germany, Berlin", mock.Region(context.Background(), "203.0.113.9"))
	assert.Equal(t, UnknownRegion, mock.Region(context.Background(), "198.51.100.7"))
}
