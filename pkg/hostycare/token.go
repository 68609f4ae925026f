package hostycare

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// tokenTimeLayout is the UTC hour bucket the API keys tokens to ("yy-MM-dd HH").
const tokenTimeLayout = "06-01-02 15"

// Token computes the per-request auth token:
// base64(hex(HMAC-SHA256(key = "{username}:{UTC yy-MM-dd HH}", data = apiKey))).
// The HMAC key embeds the current UTC hour, so the token changes at every
// hour boundary and must be recomputed per request.
func Token(username, apiKey string, now time.Time) string {
	key := username + ":" + now.UTC().Format(tokenTimeLayout)
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(apiKey))
	digest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(digest))
}
