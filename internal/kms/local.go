package kms

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/log"
)

func init() {
	Register("local", func() Provider { return &localProvider{} })
}

// localProvider is the filesystem-backed keystore provider, adapted from
// the teacher's localEd25519KeyProvider: same generate-if-absent idiom, same
// context-threaded Sign, same log.Error(ctx, msg, "err", err, ...) call
// shape, generalized from a per-identity key set to the single OIDC
// token-signing key.
type localProvider struct {
	path       string
	passphrase string
	keyPair    *fcrypto.KeyPair
}

// NewLocal constructs a local keystore provider rooted at path, protected
// by passphrase.
func NewLocal(path, passphrase string) Provider {
	return &localProvider{path: path, passphrase: passphrase}
}

func (p *localProvider) Init(ctx context.Context) error {
	if p.path == "" {
		return apperr.Configuration("keystore local path not configured", nil)
	}

	if _, err := os.Stat(p.path); err == nil {
		seed, err := fcrypto.LoadKeystore(p.path, p.passphrase)
		if err != nil {
			log.Error(ctx, "failed to load local keystore", "err", err, "path", p.path)
			return err
		}
		kp, err := fcrypto.KeyPairFromSeed(seed)
		if err != nil {
			return err
		}
		p.keyPair = kp
		return nil
	}

	kp, err := fcrypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return apperr.ServerError("keystore directory creation failed", err)
	}
	if err := fcrypto.SaveKeystore(p.path, p.passphrase, kp.PrivateKey.Seed()); err != nil {
		log.Error(ctx, "failed to save local keystore", "err", err, "path", p.path)
		return err
	}
	p.keyPair = kp
	return nil
}

func (p *localProvider) PublicKey(ctx context.Context) ([]byte, error) {
	if p.keyPair == nil {
		if err := p.Init(ctx); err != nil {
			return nil, err
		}
	}
	return p.keyPair.PublicKey, nil
}

func (p *localProvider) Sign(ctx context.Context, data []byte) ([]byte, error) {
	if p.keyPair == nil {
		if err := p.Init(ctx); err != nil {
			return nil, err
		}
	}
	return p.keyPair.Sign(data), nil
}
