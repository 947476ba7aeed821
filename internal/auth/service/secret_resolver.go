package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SecretResolver turns configured secret values (JWT secret, audit signing key) into key bytes.
type SecretResolver interface {
	// Resolve returns the plain key bytes for value.
	Resolve(ctx context.Context, value string) ([]byte, error)

	// Close releases the underlying KMS keeper, if any.
	Close() error
}

// plainSecretResolver returns configured values as is.
type plainSecretResolver struct{}

func (plainSecretResolver) Resolve(_ context.Context, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("secret value is empty")
	}
	return []byte(value), nil
}

func (plainSecretResolver) Close() error { return nil }

// kmsSecretResolver decrypts base64 encoded KMS ciphertext.
type kmsSecretResolver struct {
	keeper *secrets.Keeper
}

func (k *kmsSecretResolver) Resolve(ctx context.Context, value string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("secret is not valid base64 ciphertext: %w", err)
	}
	plaintext, err := k.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return plaintext, nil
}

func (k *kmsSecretResolver) Close() error {
	return k.keeper.Close()
}

// NewSecretResolver opens a KMS keeper for keyURI (gcpkms://, awskms://, azurekeyvault://,
// hashivault://, base64key://). An empty keyURI means secrets are configured in plain text.
func NewSecretResolver(ctx context.Context, keyURI string) (SecretResolver, error) {
	if keyURI == "" {
		return plainSecretResolver{}, nil
	}
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return &kmsSecretResolver{keeper: keeper}, nil
}
