// Package sign computes the request authentication tag expected by the
// expense server.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of body under secret.
//
// The tag must be computed over byte-for-byte the same payload that goes on
// the wire: callers marshal once and pass the identical bytes here and to the
// request body. Re-marshaling between signing and sending would change field
// order or whitespace and fail verification server-side.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
