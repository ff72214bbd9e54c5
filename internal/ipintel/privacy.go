package ipintel

// PrivacySignalsFromMap decodes an untyped privacy payload such as the
// "privacy" object of an ipinfo-style response. Missing keys and values of
// the wrong type read as false.
func PrivacySignalsFromMap(m map[string]any) PrivacySignals {
	return PrivacySignals{
		Proxy:   getBool(m, "proxy"),
		VPN:     getBool(m, "vpn"),
		Tor:     getBool(m, "tor"),
		Hosting: getBool(m, "hosting"),
	}
}

func getBool(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
