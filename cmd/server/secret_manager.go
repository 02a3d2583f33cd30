package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/billingkit/cielo-gateway/internal/adapters/secrets"
	"github.com/billingkit/cielo-gateway/internal/config"
	"github.com/billingkit/cielo-gateway/internal/domain/ports"
)

// resolveMerchantKey returns the provider merchant key, reading it from the
// configured secrets backend when a secret path is set. The "env" backend
// means the key is carried directly in CIELO_MERCHANT_KEY.
func resolveMerchantKey(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	if cfg.Gateway.MerchantKeyPath == "" {
		return cfg.Gateway.MerchantKey, nil
	}

	manager, err := initSecretManager(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	secret, err := manager.GetSecret(ctx, cfg.Gateway.MerchantKeyPath)
	if err != nil {
		return "", fmt.Errorf("resolve merchant key from %q: %w", cfg.Gateway.MerchantKeyPath, err)
	}
	return secret.Value, nil
}

// initSecretManager initializes the secret backend selected by
// SECRETS_BACKEND. Supports:
//   - "aws": AWS Secrets Manager (IAM role or profile credentials)
//   - "vault": HashiCorp Vault KV (token auth via VAULT_ADDR/VAULT_TOKEN)
//   - "local": plain files under SECRETS_LOCAL_PATH (development only)
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.Secrets.Backend {
	case "aws":
		awsConfig := secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion)
		awsConfig.Endpoint = cfg.Secrets.AWSEndpoint
		return secrets.NewAWSSecretsManager(ctx, awsConfig, logger)

	case "vault":
		if cfg.Secrets.VaultAddress == "" {
			return nil, fmt.Errorf("VAULT_ADDR is required for the vault backend")
		}
		vaultConfig := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultConfig.Token = cfg.Secrets.VaultToken
		return secrets.NewVaultSecretManager(ctx, vaultConfig, logger)

	case "local":
		logger.Warn("Using local filesystem secrets - NOT for production use!",
			zap.String("path", cfg.Secrets.LocalPath),
		)
		return secrets.NewLocalSecretManager(cfg.Secrets.LocalPath, logger), nil
	}
	return nil, fmt.Errorf("unsupported secrets backend %q", cfg.Secrets.Backend)
}
