package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// CallbackSignatureHeader 콜백 요청 서명 헤더
const CallbackSignatureHeader = "X-PowerAuth-Callback-Signature"

// SignCallbackPayload builds "t=<unix>,v1=<hex hmac>" over timestamp and body.
func SignCallbackPayload(secret []byte, body []byte, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	return "t=" + ts + ",v1=" + callbackMac(secret, ts, body)
}

// VerifyCallbackSignature validates a header produced by SignCallbackPayload.
func VerifyCallbackSignature(secret []byte, header string, body []byte, maxAge time.Duration, now time.Time) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return errors.New("missing callback signature parameters")
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errors.New("invalid callback timestamp")
	}
	if maxAge > 0 && now.Sub(time.Unix(unix, 0)) > maxAge {
		return errors.New("callback signature has expired")
	}

	// Compare in constant time
	if !hmac.Equal([]byte(callbackMac(secret, ts, body)), []byte(sig)) {
		return errors.New("invalid callback signature")
	}
	return nil
}

func callbackMac(secret []byte, ts string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
