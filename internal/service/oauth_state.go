package service

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/middleware"
	"github.com/lexflowhq/lexflow-api/internal/port"
)

// StatePayload is carried through the provider's state parameter during the
// redirect flow. It is HMAC-signed server-side so the callback can trust the
// user identity and redirect target it round-trips.
type StatePayload struct {
	UserID     string `json:"user_id"`
	RedirectTo string `json:"redirect_to"`
	ExpiresAt  int64  `json:"exp"`
}

// SignState encodes and signs a state payload: base64(json) + "." + signature.
func SignState(p StatePayload, secret string) string {
	payloadJSON, _ := json.Marshal(p)
	payloadB64 := base64.RawURLEncoding.EncodeToString(payloadJSON)
	return payloadB64 + "." + middleware.SignHS256(payloadB64, secret)
}

// VerifyState checks the signature and expiry of a state token and returns
// its payload. Any tampering or expiry yields ErrStateInvalid.
func VerifyState(token, secret string) (*StatePayload, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed", port.ErrStateInvalid)
	}

	expectedSig := middleware.SignHS256(parts[0], secret)
	if !hmac.Equal([]byte(parts[1]), []byte(expectedSig)) {
		return nil, fmt.Errorf("%w: bad signature", port.ErrStateInvalid)
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad encoding", port.ErrStateInvalid)
	}

	var p StatePayload
	if err := json.Unmarshal(payloadJSON, &p); err != nil {
		return nil, fmt.Errorf("%w: bad payload", port.ErrStateInvalid)
	}

	if time.Now().Unix() > p.ExpiresAt {
		return nil, fmt.Errorf("%w: expired", port.ErrStateInvalid)
	}

	return &p, nil
}
