package cookiefile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
)

const (
	netscapeHeader     = "# Netscape HTTP Cookie File"
	httpCookieHeader   = "# HTTP Cookie File"
	httpOnlyPrefix     = "#HttpOnly_"
	netscapeFieldCount = 7
)

var cookieAttributes = map[string]struct{}{
	"path":     {},
	"domain":   {},
	"expires":  {},
	"max-age":  {},
	"secure":   {},
	"httponly": {},
	"samesite": {},
	"priority": {},
}

type Codec struct{}

var _ ports.CookieCodec = Codec{}

func (Codec) Decode(data []byte) (*domain.CookieJar, error) {
	return Parse(data)
}

func (Codec) Encode(jar *domain.CookieJar) ([]byte, error) {
	return FormatNetscape(jar), nil
}

// Parse reads either a Netscape cookie file or name=value lines.
// It fails with domain.ErrCookieParse when no cookie survives.
func Parse(data []byte) (*domain.CookieJar, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	var jar *domain.CookieJar
	if isNetscape(lines) {
		jar = parseNetscape(lines)
	} else {
		jar = parseNameValue(lines)
	}

	if jar.Len() == 0 {
		return nil, domain.ErrCookieParse
	}

	return jar, nil
}

func isNetscape(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, netscapeHeader) || strings.HasPrefix(trimmed, httpCookieHeader)
	}
	return false
}

func parseNetscape(lines []string) *domain.CookieJar {
	jar := domain.NewCookieJar()

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(trimmed, httpOnlyPrefix) {
			httpOnly = true
			trimmed = strings.TrimPrefix(trimmed, httpOnlyPrefix)
		} else if strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(trimmed, "\t")
		if len(fields) < netscapeFieldCount {
			continue
		}

		cookie := domain.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: httpOnly,
		}
		if cookie.Name == "" {
			continue
		}

		if expiry, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expiry > 0 {
			expires := time.Unix(expiry, 0).UTC()
			cookie.Expires = &expires
		}

		jar.Put(cookie)
	}

	return jar
}

func parseNameValue(lines []string) *domain.CookieJar {
	jar := domain.NewCookieJar()

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || !strings.Contains(trimmed, "=") {
			continue
		}

		for _, assignment := range strings.Split(trimmed, ";") {
			name, value, ok := strings.Cut(assignment, "=")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				continue
			}
			if _, attr := cookieAttributes[strings.ToLower(name)]; attr {
				continue
			}

			jar.Put(domain.Cookie{
				Name:   name,
				Value:  strings.Trim(strings.TrimSpace(value), `"`),
				Domain: domain.DefaultCookieDomain,
				Path:   domain.DefaultCookiePath,
			})
		}
	}

	return jar
}

// FormatNetscape writes jar in the Netscape cookie file format.
func FormatNetscape(jar *domain.CookieJar) []byte {
	var buf bytes.Buffer
	buf.WriteString(netscapeHeader)
	buf.WriteString("\n\n")

	for _, cookie := range jar.Cookies() {
		domainField := cookie.Domain
		if cookie.HTTPOnly {
			domainField = httpOnlyPrefix + domainField
		}

		var expiry int64
		if cookie.Expires != nil {
			expiry = cookie.Expires.Unix()
		}

		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domainField,
			boolField(strings.HasPrefix(cookie.Domain, ".")),
			cookie.Path,
			boolField(cookie.Secure),
			expiry,
			cookie.Name,
			cookie.Value,
		)
	}

	return buf.Bytes()
}

func boolField(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}
