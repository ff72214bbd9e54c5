// Package useragent extracts browser, OS and bot hints from a User-Agent header.
package useragent

import (
	"regexp"
	"strings"
)

// Info extracted from a User-Agent string.
type Info struct {
	Browser  string `json:"browser,omitempty"`
	Version  string `json:"version,omitempty"`
	OS       string `json:"os,omitempty"`
	IsMobile bool   `json:"is_mobile"`
	IsBot    bool   `json:"is_bot"`
	BotName  string `json:"bot_name,omitempty"`
}

var botPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bot\b`),
	regexp.MustCompile(`(?i)spider`),
	regexp.MustCompile(`(?i)crawler`),
	regexp.MustCompile(`(?i)scraper`),
	regexp.MustCompile(`(?i)curl`),
	regexp.MustCompile(`(?i)wget`),
	regexp.MustCompile(`(?i)python`),
	regexp.MustCompile(`(?i)java/`),
	regexp.MustCompile(`(?i)httpie`),
	regexp.MustCompile(`(?i)postman`),
	regexp.MustCompile(`(?i)insomnia`),
	regexp.MustCompile(`(?i)axios`),
	regexp.MustCompile(`(?i)node-fetch`),
	regexp.MustCompile(`(?i)go-http`),
	regexp.MustCompile(`(?i)okhttp`),
	regexp.MustCompile(`(?i)libwww`),
	regexp.MustCompile(`(?i)apache-httpclient`),
}

var (
	edgePattern    = regexp.MustCompile(`Edg/(\d+)`)
	chromePattern  = regexp.MustCompile(`Chrome/(\d+)`)
	firefoxPattern = regexp.MustCompile(`Firefox/(\d+)`)
	safariPattern  = regexp.MustCompile(`Version/(\d+).*Safari/`)
)

// Parse extracts browser info. Bot User-Agents return early with only the
// bot fields set.
func Parse(ua string) Info {
	info := Info{}

	for _, pattern := range botPatterns {
		if match := pattern.FindString(ua); match != "" {
			info.IsBot = true
			info.BotName = match
			return info
		}
	}

	if match := edgePattern.FindStringSubmatch(ua); len(match) > 1 {
		info.Browser = "Edge"
		info.Version = match[1]
	} else if match := chromePattern.FindStringSubmatch(ua); len(match) > 1 {
		info.Browser = "Chrome"
		info.Version = match[1]
	} else if match := firefoxPattern.FindStringSubmatch(ua); len(match) > 1 {
		info.Browser = "Firefox"
		info.Version = match[1]
	} else if match := safariPattern.FindStringSubmatch(ua); len(match) > 1 {
		info.Browser = "Safari"
		info.Version = match[1]
	}

	// Mobile platforms first: Android UAs say "Linux" and iOS UAs say "Mac OS X".
	switch {
	case strings.Contains(ua, "Android"):
		info.OS = "Android"
		info.IsMobile = true
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		info.OS = "iOS"
		info.IsMobile = true
	case strings.Contains(ua, "Windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "Mac OS X") || strings.Contains(ua, "Macintosh"):
		info.OS = "macOS"
	case strings.Contains(ua, "CrOS"):
		info.OS = "ChromeOS"
	case strings.Contains(ua, "Linux"):
		info.OS = "Linux"
	}

	if strings.Contains(ua, "Mobile") {
		info.IsMobile = true
	}

	return info
}
