package kms

import (
	"context"
	"encoding/base64"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/userpass"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/log"
)

func init() {
	Register("vault", func() Provider { return &vaultProvider{} })
}

// VaultConfig parameterizes the Vault-backed signing-key provider.
type VaultConfig struct {
	Address     string
	Username    string
	Password    string
	SecretPath  string // kv-v2 path holding the base64 seed, e.g. "secret/data/fantasma/signing-key"
	MountPath   string // userpass auth mount, defaults to "userpass"
}

type vaultProvider struct {
	cfg     VaultConfig
	client  *vaultapi.Client
	keyPair *fcrypto.KeyPair
}

// NewVault constructs a Vault transit/KV-backed signing-key provider.
func NewVault(cfg VaultConfig) Provider {
	return &vaultProvider{cfg: cfg}
}

func (p *vaultProvider) connect(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	if p.cfg.Address == "" {
		return apperr.Configuration("vault address not configured", nil)
	}

	vcfg := vaultapi.DefaultConfig()
	vcfg.Address = p.cfg.Address
	// Outbound resilience only: transient-failure backoff to Vault, never a
	// retry of request semantics.
	vcfg.HttpClient = retryablehttp.NewClient().StandardClient()

	client, err := vaultapi.NewClient(vcfg)
	if err != nil {
		return apperr.ServerError("vault client construction failed", err)
	}

	mount := p.cfg.MountPath
	if mount == "" {
		mount = "userpass"
	}
	auth, err := userpass.NewUserpassAuth(p.cfg.Username, &userpass.Password{FromString: p.cfg.Password}, userpass.WithMountPath(mount))
	if err != nil {
		return apperr.ServerError("vault userpass auth construction failed", err)
	}
	if _, err := client.Auth().Login(ctx, auth); err != nil {
		log.Error(ctx, "vault login failed", "err", err)
		return apperr.Unavailable("vault authentication failed", err)
	}

	p.client = client
	return nil
}

func (p *vaultProvider) Init(ctx context.Context) error {
	if err := p.connect(ctx); err != nil {
		return err
	}

	secret, err := p.client.Logical().ReadWithContext(ctx, p.cfg.SecretPath)
	if err == nil && secret != nil && secret.Data != nil {
		if data, ok := secret.Data["data"].(map[string]interface{}); ok {
			if seedB64, ok := data["seed"].(string); ok {
				seed, decodeErr := base64.StdEncoding.DecodeString(seedB64)
				if decodeErr == nil {
					kp, kpErr := fcrypto.KeyPairFromSeed(seed)
					if kpErr == nil {
						p.keyPair = kp
						return nil
					}
				}
			}
		}
	}

	kp, err := fcrypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	seedB64 := base64.StdEncoding.EncodeToString(kp.PrivateKey.Seed())
	_, writeErr := p.client.Logical().WriteWithContext(ctx, p.cfg.SecretPath, map[string]interface{}{
		"data": map[string]interface{}{"seed": seedB64},
	})
	if writeErr != nil {
		log.Error(ctx, "failed to persist signing key to vault", "err", writeErr)
		return apperr.Unavailable("vault write failed", writeErr)
	}

	p.keyPair = kp
	return nil
}

func (p *vaultProvider) PublicKey(ctx context.Context) ([]byte, error) {
	if p.keyPair == nil {
		if err := p.Init(ctx); err != nil {
			return nil, err
		}
	}
	return p.keyPair.PublicKey, nil
}

func (p *vaultProvider) Sign(ctx context.Context, data []byte) ([]byte, error) {
	if p.keyPair == nil {
		if err := p.Init(ctx); err != nil {
			return nil, err
		}
	}
	return p.keyPair.Sign(data), nil
}
