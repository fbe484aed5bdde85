package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// Hint is a best-effort location guess for a client IP, used to prefill
// post locations.
type Hint struct {
	Country string
	City    string
}

// Resolver resolves location hints from IP addresses.
type Resolver interface {
	Lookup(ip string) (Hint, error)
}

// MaxMindResolver provides lookups backed by a MaxMind GeoIP2 city database.
type MaxMindResolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. When the path is
// empty, nil is returned and the location-hint endpoint is disabled.
func NewResolver(path string) (Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &MaxMindResolver{reader: reader}, nil
}

// Lookup returns the country ISO code and English city name for the
// provided IP.
func (r *MaxMindResolver) Lookup(ip string) (Hint, error) {
	if r == nil || r.reader == nil {
		return Hint{}, ErrUnavailable
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Hint{}, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.City(parsed)
	if err != nil {
		return Hint{}, fmt.Errorf("geoip: lookup city: %w", err)
	}
	if record == nil {
		return Hint{}, nil
	}
	return Hint{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}, nil
}

// Close closes the underlying database reader.
func (r *MaxMindResolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
