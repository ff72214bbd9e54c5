package ipintel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Intel is what an IP-intelligence provider knows about one address.
type Intel struct {
	IP       string         `json:"ip"`
	ASN      string         `json:"asn,omitempty"`
	Org      string         `json:"org,omitempty"`
	Country  string         `json:"country,omitempty"`
	City     string         `json:"city,omitempty"`
	Timezone string         `json:"timezone,omitempty"`
	Privacy  PrivacySignals `json:"privacy"`
	IsBogon  bool           `json:"is_bogon"`
}

// Lookup resolves IP intelligence for an address.
type Lookup interface {
	Lookup(ctx context.Context, ip string) (Intel, error)
}

var ErrInvalidIP = errors.New("invalid ip address")

// MaxMindLookup reads GeoIP2/GeoLite2 databases from disk. The City database
// is required; ASN and Anonymous-IP are used when configured.
type MaxMindLookup struct {
	city      *geoip2.Reader
	asn       *geoip2.Reader
	anonymous *geoip2.Reader
}

// OpenMaxMind opens the given database files. Empty asnPath or anonPath skips
// that database.
func OpenMaxMind(cityPath, asnPath, anonPath string) (*MaxMindLookup, error) {
	city, err := geoip2.Open(cityPath)
	if err != nil {
		return nil, fmt.Errorf("open city db: %w", err)
	}
	l := &MaxMindLookup{city: city}

	if asnPath != "" {
		if l.asn, err = geoip2.Open(asnPath); err != nil {
			l.Close()
			return nil, fmt.Errorf("open asn db: %w", err)
		}
	}
	if anonPath != "" {
		if l.anonymous, err = geoip2.Open(anonPath); err != nil {
			l.Close()
			return nil, fmt.Errorf("open anonymous-ip db: %w", err)
		}
	}
	return l, nil
}

// Lookup implements Lookup. Bogon addresses short-circuit without touching
// the databases.
func (l *MaxMindLookup) Lookup(ctx context.Context, ip string) (Intel, error) {
	if err := ctx.Err(); err != nil {
		return Intel{}, err
	}

	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Intel{}, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	out := Intel{IP: ip, IsBogon: IsBogon(ip)}
	if out.IsBogon {
		return out, nil
	}

	rec, err := l.city.City(parsed)
	if err != nil {
		return Intel{}, fmt.Errorf("city lookup: %w", err)
	}
	out.Country = rec.Country.IsoCode
	out.City = rec.City.Names["en"]
	out.Timezone = rec.Location.TimeZone

	if l.asn != nil {
		if a, err := l.asn.ASN(parsed); err == nil && a.AutonomousSystemNumber != 0 {
			out.ASN = fmt.Sprintf("AS%d", a.AutonomousSystemNumber)
			out.Org = a.AutonomousSystemOrganization
			if out.Org == "" {
				out.Org = ProviderName(out.ASN)
			}
		}
	}

	if l.anonymous != nil {
		if a, err := l.anonymous.AnonymousIP(parsed); err == nil {
			out.Privacy = PrivacySignals{
				Proxy:   a.IsPublicProxy || a.IsResidentialProxy,
				VPN:     a.IsAnonymousVPN,
				Tor:     a.IsTorExitNode,
				Hosting: a.IsHostingProvider,
			}
		}
	}

	return out, nil
}

// Close releases all open databases.
func (l *MaxMindLookup) Close() error {
	var errs []error
	for _, r := range []*geoip2.Reader{l.city, l.asn, l.anonymous} {
		if r != nil {
			errs = append(errs, r.Close())
		}
	}
	return errors.Join(errs...)
}

// StaticLookup serves fixed answers keyed by IP. Addresses not in the table
// resolve to an Intel carrying only the IP and its bogon flag. It backs tests
// and deployments that run without a GeoIP database.
type StaticLookup map[string]Intel

func (s StaticLookup) Lookup(ctx context.Context, ip string) (Intel, error) {
	if err := ctx.Err(); err != nil {
		return Intel{}, err
	}
	ip = strings.TrimSpace(ip)
	if intel, ok := s[ip]; ok {
		return intel, nil
	}
	if !validIP(ip) {
		return Intel{}, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	return Intel{IP: ip, IsBogon: IsBogon(ip)}, nil
}

func validIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
