// Package horosafe provides the input-safety checks slotwatch applies to
// user-supplied values: profile keys, target and webhook URLs, and bounded
// reads of remote response bodies.
package horosafe

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxResponseBody is the default cap for HTTP response body reads (1 MiB).
const MaxResponseBody int64 = 1 << 20

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("horosafe: only http and https schemes are allowed")

// CheckURL checks that rawURL parses, uses http or https, and names a host.
func CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("horosafe: invalid URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrUnsafeScheme
	}
	if u.Hostname() == "" {
		return fmt.Errorf("horosafe: URL has no host")
	}
	return nil
}

// ValidateKey rejects profile keys that cannot come from a YAML mapping
// key typed on a command line: empty, oversized, invalid UTF-8 or holding
// control characters. Spaces and non-ASCII letters are allowed.
func ValidateKey(s string) error {
	if s == "" {
		return fmt.Errorf("horosafe: key must not be empty")
	}
	if len(s) > 256 {
		return fmt.Errorf("horosafe: key too long (max 256)")
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("horosafe: key is not valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("horosafe: control character %q in key", r)
		}
	}
	return nil
}

// LimitedReadAll reads at most maxBytes from r and fails if r holds more.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("horosafe: response exceeds %d bytes", maxBytes)
	}
	return data, nil
}
