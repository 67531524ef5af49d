package domain

// Credentials are the access keys supplied by a credentials provider. The proxy fetches them for
// every request so rotated keys take effect without a restart.
type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
}

// CanSign reports whether both the access key id and the secret are present.
func (c Credentials) CanSign() bool {
	return c.AccessKeyID != "" && c.AccessKeySecret != ""
}
