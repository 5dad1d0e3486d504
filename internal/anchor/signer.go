package anchor

import (
	"context"
	"crypto/ecdsa"
	"os"
	"path/filepath"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/log"
)

// loadOrGenerateSeed generalizes internal/kms's local-keystore
// generate-if-absent idiom to arbitrary key material, reusing the same
// on-disk format (nonce‖tag‖ciphertext) for the anchor component's two
// chain-specific signing keys rather than duplicating the keystore format.
func loadOrGenerateSeed(ctx context.Context, path, passphrase string, generate func() ([]byte, error)) ([]byte, error) {
	if _, err := os.Stat(path); err == nil {
		seed, err := fcrypto.LoadKeystore(path, passphrase)
		if err != nil {
			log.Error(ctx, "failed to load anchor keystore", "err", err, "path", path)
			return nil, err
		}
		return seed, nil
	}

	seed, err := generate()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, apperr.ServerError("anchor keystore directory creation failed", err)
	}
	if err := fcrypto.SaveKeystore(path, passphrase, seed); err != nil {
		log.Error(ctx, "failed to save anchor keystore", "err", err, "path", path)
		return nil, err
	}
	return seed, nil
}

// EVMSigner loads or generates the secp256k1 key used to sign anchor
// transactions on EVM chains.
func EVMSigner(ctx context.Context, path, passphrase string) (*ecdsa.PrivateKey, error) {
	seed, err := loadOrGenerateSeed(ctx, path, passphrase, func() ([]byte, error) {
		key, err := ethcrypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		return ethcrypto.FromECDSA(key), nil
	})
	if err != nil {
		return nil, err
	}
	return ethcrypto.ToECDSA(seed)
}

// SolanaSigner loads or generates the ed25519 key used to sign anchor
// transactions on Solana.
func SolanaSigner(ctx context.Context, path, passphrase string) (solana.PrivateKey, error) {
	seed, err := loadOrGenerateSeed(ctx, path, passphrase, func() ([]byte, error) {
		_, priv, err := solana.NewRandomPrivateKey()
		return []byte(priv), err
	})
	if err != nil {
		return nil, err
	}
	return solana.PrivateKey(seed), nil
}
