package consistency

import (
	"fmt"
	"slices"
	"strings"

	"github.com/browserscan/trustscore/internal/model"
)

// Primary languages a browser in each country is expected to advertise,
// keyed by ISO 3166-1 alpha-2 code. Values are ISO 639-1 base codes.
var countryLanguages = map[string][]string{
	"US": {"en", "es"},
	"GB": {"en"},
	"IE": {"en", "ga"},
	"CA": {"en", "fr"},
	"AU": {"en"},
	"NZ": {"en"},
	"ZA": {"en", "af", "zu"},
	"IN": {"hi", "en"},
	"SG": {"en", "zh", "ms"},
	"DE": {"de"},
	"AT": {"de"},
	"CH": {"de", "fr", "it"},
	"FR": {"fr"},
	"BE": {"nl", "fr", "de"},
	"NL": {"nl"},
	"LU": {"lb", "fr", "de"},
	"ES": {"es", "ca", "eu", "gl"},
	"PT": {"pt"},
	"IT": {"it"},
	"MX": {"es"},
	"AR": {"es"},
	"CO": {"es"},
	"CL": {"es"},
	"PE": {"es"},
	"BR": {"pt"},
	"PL": {"pl"},
	"CZ": {"cs"},
	"SK": {"sk"},
	"HU": {"hu"},
	"RO": {"ro"},
	"BG": {"bg"},
	"GR": {"el"},
	"TR": {"tr"},
	"RU": {"ru"},
	"UA": {"uk", "ru"},
	"BY": {"be", "ru"},
	"SE": {"sv"},
	"NO": {"nb", "no", "nn"},
	"DK": {"da"},
	"FI": {"fi", "sv"},
	"IL": {"he"},
	"SA": {"ar"},
	"AE": {"ar", "en"},
	"EG": {"ar"},
	"CN": {"zh"},
	"TW": {"zh"},
	"HK": {"zh", "en"},
	"JP": {"ja"},
	"KR": {"ko"},
	"VN": {"vi"},
	"TH": {"th"},
	"ID": {"id"},
}

// Countries where an English-first browser is the norm rather than a soft signal.
var englishHome = map[string]bool{"US": true, "GB": true}

// ExpectedLanguages returns the table entry for a country, or nil.
func ExpectedLanguages(countryCode string) []string {
	return countryLanguages[strings.ToUpper(strings.TrimSpace(countryCode))]
}

// CheckLanguage compares navigator.languages with the languages expected for
// the IP country.
func CheckLanguage(ipCountryCode string, languages []string) model.ConsistencyCheck {
	codes := baseCodes(languages)
	if len(codes) == 0 {
		return warn("no browser languages reported")
	}

	country := strings.ToUpper(strings.TrimSpace(ipCountryCode))
	if country == "" {
		return warn("unable to determine IP country")
	}

	expected := countryLanguages[country]
	primary := codes[0]

	if slices.Contains(expected, primary) {
		return model.ConsistencyCheck{
			Status:   model.StatusPass,
			Evidence: fmt.Sprintf("primary language %q matches %s", primary, country),
		}
	}

	for _, code := range codes[1:] {
		if slices.Contains(expected, code) {
			return warn(fmt.Sprintf("secondary match found: %q expected in %s, primary is %q", code, country, primary))
		}
	}

	if primary == "en" && !englishHome[country] {
		return warn(fmt.Sprintf("English browser in %s (international default)", country))
	}

	return model.ConsistencyCheck{
		Status:   model.StatusFail,
		Evidence: fmt.Sprintf("language mismatch: %q is not expected in %s", primary, country),
	}
}

// baseCodes lowercases each tag and strips its region: "pt-BR" -> "pt".
// Blank entries are dropped.
func baseCodes(languages []string) []string {
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		base, _, _ := strings.Cut(strings.TrimSpace(lang), "-")
		base, _, _ = strings.Cut(base, "_")
		if base == "" {
			continue
		}
		out = append(out, strings.ToLower(base))
	}
	return out
}
