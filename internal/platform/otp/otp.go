// Package otp issues and verifies stateless email verification codes.
//
// A code is a TOTP (RFC 6238) over a per-email key derived from the server
// secret, so nothing has to be stored between issue and verify.
package otp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	potp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultPeriod = 5 * time.Minute
	Digits        = 6
)

// TOTP issues codes valid for the current window; the previous window is
// also accepted so a code issued just before a boundary stays usable.
type TOTP struct {
	secret []byte
	period time.Duration
	now    func() time.Time
}

// New creates a TOTP. A period under one second falls back to DefaultPeriod.
func New(secret string, period time.Duration) *TOTP {
	if period < time.Second {
		period = DefaultPeriod
	}
	return &TOTP{
		secret: []byte(secret),
		period: period,
		now:    time.Now,
	}
}

// Period is the lifetime of one code window.
func (t *TOTP) Period() time.Duration {
	return t.period
}

// Issue returns the code for email in the current window.
func (t *TOTP) Issue(email string) (string, error) {
	code, err := totp.GenerateCodeCustom(t.key(email), t.now(), t.opts())
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return code, nil
}

// Verify reports whether code matches email in the current or previous window.
func (t *TOTP) Verify(email, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != Digits {
		return false
	}
	key := t.key(email)
	now := t.now()
	for _, at := range []time.Time{now, now.Add(-t.period)} {
		ok, err := totp.ValidateCustom(code, key, at, t.opts())
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (t *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(t.period / time.Second),
		Skew:      0,
		Digits:    potp.DigitsSix,
		Algorithm: potp.AlgorithmSHA1,
	}
}

// key is base32(HMAC-SHA256(secret, normalized email)).
func (t *TOTP) key(email string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}
