package jamf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenResponse is the body of a successful auth/tokens call.
type tokenResponse struct {
	Token   string     `json:"token"`
	Expires expiryTime `json:"expires"`
}

// expiryTime accepts the token expiry as epoch milliseconds (older servers)
// or as an RFC 3339 timestamp (newer servers).
type expiryTime struct {
	time.Time
}

func (e *expiryTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		e.Time = time.Time{}
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		e.Time = time.UnixMilli(int64(val))
	case string:
		if val == "" {
			e.Time = time.Time{}
			return nil
		}
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			e.Time = time.UnixMilli(ms)
			return nil
		}
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return fmt.Errorf("expires: cannot parse %q: %w", val, err)
		}
		e.Time = t
	default:
		return fmt.Errorf("expires: unexpected type %T", v)
	}
	return nil
}

// tokenExpiry reads the exp claim from a JWT bearer token without verifying
// its signature. It returns the zero time when the token is not a JWT or
// carries no exp claim.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
