// Package privacy scrubs credentials and host names from messages before
// they leave the process, such as error reports sent to telemetry.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// scoring services, MQTT brokers and web sockets
	urlPattern = regexp.MustCompile(`\b(?:https?|tcp|ssl|tls|mqtts?|wss?)://\S+`)

	// go-sql-driver DSN: user:password@tcp(host:port)/database
	dsnPattern = regexp.MustCompile(`\S+:\S*@(?:tcp|unix)\([^)]*\)/\S*`)

	ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

	bearerPattern = regexp.MustCompile(`(?i)(bearer\s+)\S+`)

	credentialPattern = regexp.MustCompile(`(?i)(api[_-]?key|token|password|auth)[=:]\S+`)
	longHexPattern    = regexp.MustCompile(`[0-9a-fA-F]{32,}`)
)

// ScrubMessage replaces URLs, database DSNs, bearer tokens and inline
// credentials in message with anonymized placeholders.
func ScrubMessage(message string) string {
	message = dsnPattern.ReplaceAllString(message, "[DSN]")
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	message = bearerPattern.ReplaceAllString(message, "${1}[TOKEN]")
	message = credentialPattern.ReplaceAllString(message, "[API_KEY_REDACTED]")
	return longHexPattern.ReplaceAllString(message, "[API_KEY_REDACTED]")
}

// AnonymizeURL replaces rawURL with a stable hash of its scheme, host
// category, port and path shape. Equal endpoints hash equally so reports
// can still be grouped.
func AnonymizeURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	var parts []string
	if parsedURL.Scheme != "" {
		parts = append(parts, parsedURL.Scheme)
	}
	if host := parsedURL.Hostname(); host != "" {
		parts = append(parts, categorizeHost(host))
	}
	if port := parsedURL.Port(); port != "" {
		parts = append(parts, "port-"+port)
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		parts = append(parts, anonymizePath(parsedURL.Path))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("url-%x", hash[:12])
}

// categorizeHost keeps only the kind of host
func categorizeHost(host string) string {
	switch {
	case host == "localhost" || host == "127.0.0.1" || host == "::1":
		return "localhost"
	case isPrivateIP(host):
		return "private-ip"
	case isIPAddress(host):
		return "public-ip"
	}

	if i := strings.LastIndexByte(host, '.'); i >= 0 && i < len(host)-1 {
		return "domain-" + host[i+1:]
	}
	return "unknown-host"
}

// anonymizePath keeps the number of segments and well-known API segments.
func anonymizePath(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "root"
	}

	var segments []string
	for _, segment := range strings.Split(path, "/") {
		switch {
		case segment == "":
			continue
		case isAPISegment(segment):
			segments = append(segments, segment)
		case isNumeric(segment):
			segments = append(segments, "numeric")
		default:
			hash := sha256.Sum256([]byte(segment))
			segments = append(segments, fmt.Sprintf("seg-%x", hash[:4]))
		}
	}
	return strings.Join(segments, "/")
}

func isPrivateIP(host string) bool {
	privateRanges := []string{
		"10.", "172.16.", "172.17.", "172.18.", "172.19.", "172.20.", "172.21.", "172.22.", "172.23.",
		"172.24.", "172.25.", "172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"192.168.", "169.254.",
		"fc00:", "fd00:", "fe80:",
	}

	host = strings.ToLower(host)
	for _, prefix := range privateRanges {
		if strings.HasPrefix(host, prefix) {
			return true
		}
	}
	return false
}

func isIPAddress(host string) bool {
	return ipv4Pattern.MatchString(host) || strings.Contains(host, ":")
}

func isAPISegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "predict", "api", "v1", "v2":
		return true
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
