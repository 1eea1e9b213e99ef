// Package services provides external service integrations and technical concerns like tokens and lookups
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rezashm/linkdrop/config"
)

// UnknownRegion is reported whenever the lookup fails or yields nothing
const UnknownRegion = "Unknown"

// GeoIPService resolves an approximate region for a client IP
type GeoIPService interface {
	Region(ctx context.Context, ip string) string
}

// GeoIPServiceImpl implements GeoIPService against the ip-api.com JSON endpoint
type GeoIPServiceImpl struct {
	config *config.GeoConfig
	client *http.Client
}

// geoIPResponse represents the response payload of the lookup API
type geoIPResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
}

// NewGeoIPService creates a new geolocation service instance
func NewGeoIPService(cfg *config.GeoConfig) GeoIPService {
	return &GeoIPServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Region looks up the approximate region ("Country, City") for an IP.
// Lookup failures are swallowed and reported as UnknownRegion; the click
// logging path must never surface them.
func (s *GeoIPServiceImpl) Region(ctx context.Context, ip string) string {
	if ip == "" || isPrivateIP(ip) {
		return UnknownRegion
	}

	url := fmt.Sprintf("%s/json/%s", strings.TrimRight(s.config.Endpoint, "/"), ip)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return UnknownRegion
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return UnknownRegion
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UnknownRegion
	}

	var result geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return UnknownRegion
	}
	if result.Status != "success" {
		return UnknownRegion
	}

	region := result.Country
	if result.City != "" {
		region = fmt.Sprintf("%s, %s", result.Country, result.City)
	}
	if region == "" {
		return UnknownRegion
	}
	return region
}

// isPrivateIP reports whether the address is loopback or RFC1918 space,
// which the public lookup endpoint cannot resolve
func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified()
}

// MockGeoIPService implements GeoIPService for testing
type MockGeoIPService struct {
	Regions map[string]string
}

// NewMockGeoIPService creates a new mock geolocation service
func NewMockGeoIPService() *MockGeoIPService {
	return &MockGeoIPService{Regions: make(map[string]string)}
}

func (m *MockGeoIPService) Region(ctx context.Context, ip string) string {
	if region, ok := m.Regions[ip]; ok {
		return region
	}
	return UnknownRegion
}
