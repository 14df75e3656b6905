package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

// readVaultCredentials reads the username and password fields of the secret
// at path. Both KV v2 (nested data) and KV v1 layouts are understood; a v2
// secret missing a password field is an error, an absent secret too.
func readVaultCredentials(ctx context.Context, cfg Config, path string) (username, password string, err error) {
	vcfg := vaultapi.DefaultConfig()
	vcfg.Address = cfg.VaultAddr

	client, err := vaultapi.NewClient(vcfg)
	if err != nil {
		return "", "", fmt.Errorf("vault client setup: %w", err)
	}
	if cfg.VaultToken != "" {
		client.SetToken(cfg.VaultToken)
	}

	secret, err := client.Logical().ReadWithContext(ctx, strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", "", err
	}
	if secret == nil || secret.Data == nil {
		return "", "", fmt.Errorf("vault secret %q not found", path)
	}

	data := secret.Data
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}

	username, _ = data["username"].(string)
	password, _ = data["password"].(string)
	if password == "" {
		return "", "", errors.New("vault secret has no password field")
	}
	return username, password, nil
}
