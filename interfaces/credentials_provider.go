package interfaces

import "mynaming/domain"

// CredentialsProvider supplies the access keys used to sign naming requests. Called once per request
// so rotated keys are picked up without restarting the client.
//
// Implemented by adapters.StaticCredentials and adapters.EnvCredentials.
//
//go:generate moq -stub -out mock/credentials_provider.go -pkg mock . CredentialsProvider
type CredentialsProvider interface {
	// Credentials returns the current credentials; empty fields mean requests go out unsigned.
	Credentials() domain.Credentials
}
