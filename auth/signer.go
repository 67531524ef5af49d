package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"mynaming/domain"
)

// Signing header names attached to every naming request when access keys are configured.
const (
	HeaderAccessKey     = "ak"
	HeaderSignData      = "data"
	HeaderSignature     = "signature"
	HeaderSecurityToken = "Spas-SecurityToken"
)

// ErrInvalidSignature is returned by VerifySignature when the signature does not match the HMAC-SHA1 of data.
var ErrInvalidSignature = errors.New("invalid request signature")

// ErrMalformedSignature is returned by VerifySignature when the signature is not valid base64.
var ErrMalformedSignature = errors.New("malformed request signature")

// Sign computes the signing headers for one request: sign string "nowMillis@@serviceKey" (or "nowMillis" when serviceKey is blank), HMAC-SHA1 with the access key secret, base64 without trailing whitespace.
//
// Parameters: serviceKey - grouped service name of the request ("group@@name", bare name or empty); creds - current credentials (AccessKeyID and AccessKeySecret both required to sign); nowMillis - current unix time in milliseconds.
//
// Returns: map with ak, data, signature (and Spas-SecurityToken when creds.SecurityToken is set); an empty non-nil map when creds cannot sign.
//
// Called from service.Requester.Send for every outbound request.
func Sign(serviceKey string, creds domain.Credentials, nowMillis int64) map[string]string {
	headers := make(map[string]string, 4)
	if !creds.CanSign() {
		return headers
	}
	signString := strconv.FormatInt(nowMillis, 10)
	if strings.TrimSpace(serviceKey) != "" {
		signString += domain.GroupSeparator + serviceKey
	}
	headers[HeaderAccessKey] = creds.AccessKeyID
	headers[HeaderSignData] = signString
	headers[HeaderSignature] = signWithHmacSHA1(signString, creds.AccessKeySecret)
	if creds.SecurityToken != "" {
		headers[HeaderSecurityToken] = creds.SecurityToken
	}
	return headers
}

// VerifySignature checks that signature is base64(HMAC-SHA1(secret, data)) using a constant-time comparison.
//
// Parameters: data - the sign string from the data header; signature - value of the signature header; secret - access key secret.
//
// Returns: nil when the signature matches; ErrMalformedSignature when signature is not base64; ErrInvalidSignature on mismatch.
//
// Called from tests and from server-side tooling that validates signed requests.
func VerifySignature(data, signature, secret string) error {
	received, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrMalformedSignature
	}
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(data))
	if subtle.ConstantTimeCompare(received, mac.Sum(nil)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

func signWithHmacSHA1(data, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(data))
	return strings.TrimSpace(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}
