// Package config loads the service's nested Configuration struct from the
// environment (with an optional local .env file and YAML override file),
// following the teacher's own env-tag-driven configuration idiom.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Server holds HTTP listener settings.
type Server struct {
	BindAddress  string        `env:"SERVER_BIND_ADDRESS" envDefault:"0.0.0.0:8080"`
	IssuerURL    string        `env:"SERVER_ISSUER_URL" envDefault:"http://localhost:8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
}

// Database holds the optional relational persistence DSN. Empty ⇒ in-memory
// repositories are used instead, per the spec's own "either is acceptable"
// language.
type Database struct {
	URL             string        `env:"DATABASE_URL" envDefault:""`
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"1h"`
}

// Cache selects the discovery-document/JWKS cache backend.
type Cache struct {
	RedisURL string        `env:"CACHE_REDIS_URL" envDefault:""`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// KeyStore selects and parameterizes the signing-key backend.
type KeyStore struct {
	Backend        string `env:"KEYSTORE_BACKEND" envDefault:"local"` // local|vault|awskms
	LocalPath      string `env:"KEYSTORE_LOCAL_PATH" envDefault:"./data/keystore"`
	LocalPassword  string `env:"KEYSTORE_LOCAL_PASSWORD" envDefault:"development-only-password"`
	VaultAddress   string `env:"KEYSTORE_VAULT_ADDRESS" envDefault:""`
	VaultUsername  string `env:"KEYSTORE_VAULT_USERNAME" envDefault:""`
	VaultPassword  string `env:"KEYSTORE_VAULT_PASSWORD" envDefault:""`
	AWSKMSKeyID    string `env:"KEYSTORE_AWSKMS_KEY_ID" envDefault:""`
	AWSRegion      string `env:"KEYSTORE_AWS_REGION" envDefault:"us-east-1"`
}

// Prover selects and parameterizes the STARK proving backend.
type Prover struct {
	Backend      string `env:"PROVER_BACKEND" envDefault:"mock"` // mock|external
	CircuitsPath string `env:"PROVER_CIRCUITS_PATH" envDefault:"./circuits"`
}

// Admin holds the admin-namespace access key. Empty ⇒ every admin route
// responds 503 regardless of header, per the spec's configuration-error
// disposition.
type Admin struct {
	Key string `env:"ADMIN_KEY" envDefault:""`
}

// CORS holds the comma-separated allowed origin list, or "*".
type CORS struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// OIDC holds token-issuance parameters.
type OIDC struct {
	SigningAlg string        `env:"OIDC_SIGNING_ALG" envDefault:"EdDSA"`
	AccessTTL  time.Duration `env:"OIDC_ACCESS_TOKEN_TTL" envDefault:"1h"`
	AuthCodeTTL time.Duration `env:"OIDC_AUTH_CODE_TTL" envDefault:"600s"`
}

// Chains holds the optional on-chain anchor RPC endpoints and the signing
// material the anchor service uses to submit publishRoot transactions.
// Empty EVMRPCURL/SolanaRPCURL ⇒ the anchor component is disabled and
// /admin/anchor responds 503 (a configuration error, per §7).
type Chains struct {
	EVMRPCURL         string `env:"CHAINS_EVM_RPC_URL" envDefault:""`
	EVMChainID        int    `env:"CHAINS_EVM_CHAIN_ID" envDefault:"1337"`
	EVMStateContract  string `env:"CHAINS_EVM_STATE_CONTRACT" envDefault:""`
	EVMRegistryAddr   string `env:"CHAINS_EVM_REGISTRY_ADDRESS" envDefault:""`
	EVMSignerHex      string `env:"CHAINS_EVM_SIGNER_KEY" envDefault:""`
	SolanaRPCURL      string `env:"CHAINS_SOLANA_RPC_URL" envDefault:""`
	SolanaChainID     int    `env:"CHAINS_SOLANA_CHAIN_ID" envDefault:"1"`
	SolanaProgramID   string `env:"CHAINS_SOLANA_PROGRAM_ID" envDefault:""`
	SolanaSignerSeed  string `env:"CHAINS_SOLANA_SIGNER_KEY" envDefault:""` // base58, dev only
}

// Configuration is the root configuration object for the service.
type Configuration struct {
	Server   Server
	Database Database
	Cache    Cache
	KeyStore KeyStore
	Prover   Prover
	Admin    Admin
	CORS     CORS
	OIDC     OIDC
	Chains   Chains
}

// Load reads the environment (after optionally loading a .env file) into a
// Configuration, applying an optional YAML override file on top.
func Load(envFilePath, yamlOverridePath string) (*Configuration, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, errors.Wrap(err, "loading .env file")
			}
		}
	}

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing environment configuration")
	}

	if yamlOverridePath != "" {
		if err := applyYAMLOverride(cfg, yamlOverridePath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func applyYAMLOverride(cfg *Configuration, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "reading yaml override file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "parsing yaml override file")
	}
	return nil
}
