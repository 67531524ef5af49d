package helpers

import (
	"strings"

	"google.golang.org/grpc/metadata"
)

// HeaderRequestType is the gRPC metadata key carrying the payload type name of a request or response.
const HeaderRequestType = "x-naming-type"

// HeaderApp is the request header naming the calling application (set on subscribe requests).
const HeaderApp = "app"

// HeaderAccessToken is the request header carrying the login access token.
const HeaderAccessToken = "accessToken"

// HeadersToMD converts a request header map into outgoing gRPC metadata. Keys are lowercased (gRPC canonicalizes keys).
// Headers gRPC would reject are skipped: empty or reserved ("grpc-") keys, keys with characters outside [0-9a-z-_.],
// and values with bytes outside printable ASCII (e.g. a signature over a non-ASCII service name). Those headers still
// travel in the request payload.
//
// Parameters: headers - request headers (nil allowed - returns empty metadata).
//
// Returns: metadata.MD, never nil.
//
// Called from adapters.GRPCTransport.Send before invoking the server.
func HeadersToMD(headers map[string]string) metadata.MD {
	md := metadata.MD{}
	for k, v := range headers {
		k = strings.ToLower(k)
		if !validMDKey(k) || !validMDValue(v) {
			continue
		}
		md.Set(k, v)
	}
	return md
}

func validMDKey(k string) bool {
	if k == "" || strings.HasPrefix(k, "grpc-") || strings.HasSuffix(k, "-bin") {
		return false
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.') {
			return false
		}
	}
	return true
}

func validMDValue(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetHeaderValue returns the first value of header key in metadata. Key is lowercased (gRPC canonicalizes keys).
//
// Parameters: md - incoming or outgoing metadata (nil allowed - returns ("", false)); key - header name (empty string gives ("", false)).
//
// Returns: (value, true) when there is a non-empty value; ("", false) when md is nil, key is missing or value is empty.
//
// Called from adapters.GRPCTransport.Send when the reply payload carries no type.
func GetHeaderValue(md metadata.MD, key string) (string, bool) {
	if md == nil || key == "" {
		return "", false
	}
	vals := md.Get(strings.ToLower(key))
	if len(vals) == 0 || vals[0] == "" {
		return "", false
	}
	return vals[0], true
}

// MergeHeaders copies every entry of src into dst, overwriting existing keys. A nil src is a no-op.
//
// Called from service.Requester.Send when attaching signing headers.
func MergeHeaders(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
