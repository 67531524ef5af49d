package adapters

import (
	"os"

	"mynaming/domain"
	"mynaming/interfaces"
)

// Environment variables read by EnvCredentials.
const (
	EnvAccessKey     = "NACOS_ACCESS_KEY"
	EnvSecretKey     = "NACOS_SECRET_KEY"
	EnvSecurityToken = "NACOS_SECURITY_TOKEN"
)

// StaticCredentials returns a provider that always yields creds.
//
// Called from cmd/main when access keys come from the YAML config, and from tests.
func StaticCredentials(creds domain.Credentials) interfaces.CredentialsProvider {
	return staticCredentials{creds: creds}
}

type staticCredentials struct {
	creds domain.Credentials
}

func (s staticCredentials) Credentials() domain.Credentials {
	return s.creds
}

// EnvCredentials returns a provider that reads NACOS_ACCESS_KEY, NACOS_SECRET_KEY and NACOS_SECURITY_TOKEN
// on every call, so rotated keys (e.g. a refreshed STS token) are picked up without restart.
//
// Called from cmd/main when the YAML config carries no access keys.
func EnvCredentials() interfaces.CredentialsProvider {
	return envCredentials{lookup: os.Getenv}
}

type envCredentials struct {
	lookup func(string) string
}

func (e envCredentials) Credentials() domain.Credentials {
	return domain.Credentials{
		AccessKeyID:     e.lookup(EnvAccessKey),
		AccessKeySecret: e.lookup(EnvSecretKey),
		SecurityToken:   e.lookup(EnvSecurityToken),
	}
}
