package leak

import "github.com/browserscan/trustscore/internal/model"

// IPv6Result reports whether the browser exposed a routable IPv6 address.
// Status stays SAFE; Leaked is a flag for the caller.
type IPv6Result struct {
	Status model.Status `json:"status"`
	Leaked bool         `json:"leaked"`
}

// ClassifyIPv6 inspects the IPv6 address seen by the dual-stack probe, if any.
// Link-local addresses are not routable and never count. Input that is not an
// IPv6 literal is ignored.
func ClassifyIPv6(address *string) IPv6Result {
	res := IPv6Result{Status: model.StatusSafe}
	if address == nil {
		return res
	}

	addr, ok := parseAddr(*address)
	if !ok || !addr.Is6() {
		return res
	}
	addr = addr.WithZone("")
	if linkLocal.Contains(addr) || addr.IsLoopback() || addr.IsUnspecified() {
		return res
	}

	res.Leaked = true
	return res
}

// Telemetry converts the result to the report form.
func (r IPv6Result) Telemetry(address *string) *model.IPv6Telemetry {
	t := &model.IPv6Telemetry{Status: r.Status, Leaked: r.Leaked}
	if address != nil {
		t.Address = *address
	}
	return t
}
