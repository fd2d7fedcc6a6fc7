package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// Signed message codec for the SMS gateway path. A token is
// base64url(payload) + "." + hex(HMAC-SHA256(payload, secret)); the
// gateway signs with the shared secret, the service only verifies.

var ErrInvalidToken = errors.New("invalid signed token")

func signature(payload []byte, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign encodes and signs a raw payload.
func Sign(payload []byte, secretKey string) string {
	return base64.RawURLEncoding.EncodeToString(payload) + "." + signature(payload, secretKey)
}

// Verify checks the signature and returns the decoded payload.
func Verify(tok, secretKey string) ([]byte, error) {
	dot := strings.LastIndexByte(tok, '.')
	if dot < 0 {
		return nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(tok[:dot])
	if err != nil {
		return nil, ErrInvalidToken
	}
	expected := signature(payload, secretKey)
	if !hmac.Equal([]byte(tok[dot+1:]), []byte(expected)) {
		return nil, ErrInvalidToken
	}
	return payload, nil
}
