// Package consistency compares facts derived from the client IP with facts
// the browser declares about itself. Every check returns a status and a short
// human-readable evidence string, and missing input degrades to WARN.
package consistency

import (
	"fmt"
	"strings"

	"github.com/browserscan/trustscore/internal/model"
)

func warn(evidence string) model.ConsistencyCheck {
	return model.ConsistencyCheck{Status: model.StatusWarn, Evidence: evidence}
}

// CheckTimezone compares the IANA zone of the IP location with the zone the
// browser reports from Intl.DateTimeFormat.
func CheckTimezone(ipTimezone, clientTimezone string) model.ConsistencyCheck {
	ipTimezone = strings.TrimSpace(ipTimezone)
	clientTimezone = strings.TrimSpace(clientTimezone)

	if ipTimezone == "" || clientTimezone == "" {
		return warn("unable to determine timezone")
	}

	if ipTimezone == clientTimezone {
		return model.ConsistencyCheck{
			Status:   model.StatusPass,
			Evidence: fmt.Sprintf("timezone matches IP location (%s)", clientTimezone),
		}
	}

	if region(ipTimezone) == region(clientTimezone) {
		return warn(fmt.Sprintf("similar region, different timezone (IP %s, system %s)", ipTimezone, clientTimezone))
	}

	return model.ConsistencyCheck{
		Status:   model.StatusFail,
		Evidence: fmt.Sprintf("timezone mismatch (IP %s, system %s)", ipTimezone, clientTimezone),
	}
}

// region returns the area part of an IANA name: "Europe" for "Europe/Berlin".
func region(zone string) string {
	area, _, _ := strings.Cut(zone, "/")
	return area
}
