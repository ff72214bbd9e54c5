package ipintel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// staticRecord is one entry of an intel file, shaped like an ipinfo.io
// response. Privacy stays raw so a provider that sends "yes" or 1 instead of
// true, or no object at all, degrades to false rather than failing the file.
type staticRecord struct {
	ASN      string          `json:"asn"`
	Org      string          `json:"org"`
	Country  string          `json:"country"`
	City     string          `json:"city"`
	Timezone string          `json:"timezone"`
	Privacy  json.RawMessage `json:"privacy"`
}

// LoadStaticLookup reads a JSON object keyed by IP address. Records without
// an org take the provider name from the ASN tables.
func LoadStaticLookup(path string) (StaticLookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intel file: %w", err)
	}
	return ParseStaticLookup(data)
}

// ParseStaticLookup is LoadStaticLookup over an in-memory document.
func ParseStaticLookup(data []byte) (StaticLookup, error) {
	var records map[string]staticRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode intel file: %w", err)
	}

	out := make(StaticLookup, len(records))
	for ip, rec := range records {
		ip = strings.TrimSpace(ip)
		if !validIP(ip) {
			return nil, fmt.Errorf("%w: %q in intel file", ErrInvalidIP, ip)
		}
		org := rec.Org
		if org == "" {
			org = ProviderName(rec.ASN)
		}
		out[ip] = Intel{
			IP:       ip,
			ASN:      rec.ASN,
			Org:      org,
			Country:  rec.Country,
			City:     rec.City,
			Timezone: rec.Timezone,
			Privacy:  decodePrivacy(rec.Privacy),
			IsBogon:  IsBogon(ip),
		}
	}
	return out, nil
}

func decodePrivacy(raw json.RawMessage) PrivacySignals {
	var m map[string]any
	if len(raw) > 0 {
		// A non-object payload leaves m nil.
		_ = json.Unmarshal(raw, &m)
	}
	return PrivacySignalsFromMap(m)
}

// OverrideLookup answers from Overrides first and asks Next for every other
// address.
type OverrideLookup struct {
	Overrides StaticLookup
	Next      Lookup
}

func (o OverrideLookup) Lookup(ctx context.Context, ip string) (Intel, error) {
	if err := ctx.Err(); err != nil {
		return Intel{}, err
	}
	if intel, ok := o.Overrides[strings.TrimSpace(ip)]; ok {
		return intel, nil
	}
	return o.Next.Lookup(ctx, ip)
}
