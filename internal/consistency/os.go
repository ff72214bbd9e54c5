package consistency

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/browserscan/trustscore/internal/model"
)

type osFamily struct {
	mac, ios, android, windows bool
}

// classifyOS works on either a parsed OS name ("macOS") or a raw User-Agent
// fragment ("Windows NT 10.0"). iOS UAs also say "like Mac OS X", so iOS is
// resolved first. iOS is matched on whole words so "KaiOS" stays out.
func classifyOS(name string) osFamily {
	var f osFamily
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		switch w {
		case "ios", "ipados", "iphone", "ipad", "ipod":
			f.ios = true
		}
	}
	f.mac = !f.ios && strings.Contains(name, "mac")
	f.android = strings.Contains(name, "android")
	f.windows = strings.Contains(name, "windows")
	return f
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CheckOS verifies that the WebGL renderer is a GPU the User-Agent's OS can
// actually ship with.
func CheckOS(uaOS, webglRenderer string) model.ConsistencyCheck {
	uaOS = strings.TrimSpace(uaOS)
	webglRenderer = strings.TrimSpace(webglRenderer)
	if uaOS == "" || webglRenderer == "" {
		return warn("unable to determine OS or GPU")
	}

	osName := strings.ToLower(uaOS)
	renderer := strings.ToLower(webglRenderer)
	f := classifyOS(osName)

	fail := func(evidence string) model.ConsistencyCheck {
		return model.ConsistencyCheck{Status: model.StatusFail, Evidence: evidence}
	}

	switch {
	case strings.Contains(renderer, "apple") && !f.mac && !f.ios:
		return fail(fmt.Sprintf("Apple Silicon GPU reported on %s", uaOS))
	case f.mac && !containsAny(renderer, "apple", "amd", "nvidia", "intel"):
		return warn(fmt.Sprintf("unusual GPU on macOS: %s", webglRenderer))
	case (f.android || f.ios) && strings.Contains(renderer, "nvidia"):
		return fail(fmt.Sprintf("desktop NVIDIA GPU reported on mobile OS %s", uaOS))
	case f.windows && strings.Contains(renderer, "apple m"):
		return fail(fmt.Sprintf("Apple Silicon signature on Windows: %s", webglRenderer))
	}

	return model.ConsistencyCheck{
		Status:   model.StatusPass,
		Evidence: fmt.Sprintf("GPU consistent with %s", uaOS),
	}
}
