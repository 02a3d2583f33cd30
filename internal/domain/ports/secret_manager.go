package ports

import "context"

// Secret is a retrieved secret value with backend metadata.
type Secret struct {
	Value    string
	Version  string
	Metadata map[string]string
}

// SecretManager retrieves merchant credentials from a secret backend.
// Implementations exist for AWS Secrets Manager, Vault KV v2 and local files;
// credential storage and rotation UIs are out of scope.
type SecretManager interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
