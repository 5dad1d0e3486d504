package services

import (
	"context"
	"math/big"
	"time"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	fcrypto "github.com/jackfredericksen/fantasma/internal/crypto"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
	"github.com/jackfredericksen/fantasma/internal/core/ports"
)

// WitnessBuilder derives, per claim predicate, the structured private/public
// input vector a prover backend consumes. Each builder clause is additive:
// supporting a new credential schema or predicate is one new clause, no
// change to the existing ones.
type WitnessBuilder struct {
	merkle ports.MerkleRegistry
}

// NewWitnessBuilder constructs a WitnessBuilder backed by the given Merkle
// registry (used by HoldsCredential and SetMembership).
func NewWitnessBuilder(merkle ports.MerkleRegistry) *WitnessBuilder {
	return &WitnessBuilder{merkle: merkle}
}

func yyyymmdd(t time.Time) uint32 {
	return uint32(t.Year())*10000 + uint32(t.Month())*100 + uint32(t.Day())
}

// Build dispatches on predicate.Kind to the matching clause. leafIndex and
// domainName/nonce/userSecret are only consulted by the Merkle-registry-backed
// predicates (HoldsCredential, SetMembership).
func (w *WitnessBuilder) Build(ctx context.Context, predicate domain.ClaimPredicate, cred *domain.Credential, issuer *domain.IssuerInfo, userSecret []byte, domainName string, nonce []byte, leafIndex uint64, now time.Time) (domain.Witness, error) {
	if cred == nil {
		return domain.Witness{}, apperr.Credential("no matching credential for predicate", nil)
	}
	if cred.Expired(now) {
		return domain.Witness{}, apperr.Credential("credential expired", nil)
	}

	switch predicate.Kind {
	case domain.PredicateAgeAtLeast:
		return w.buildAgeAtLeast(predicate, cred, issuer, now)
	case domain.PredicateKycStatus:
		return w.buildKycStatus(predicate, cred, issuer, now)
	case domain.PredicateHoldsCredential:
		return w.buildHoldsCredential(ctx, predicate, cred, issuer, userSecret, domainName, nonce, leafIndex)
	case domain.PredicateSetMembership:
		return w.buildSetMembership(ctx, predicate, cred, userSecret, domainName, nonce, leafIndex)
	default:
		return domain.Witness{}, apperr.Input("unknown claim predicate kind", nil)
	}
}

func (w *WitnessBuilder) buildAgeAtLeast(predicate domain.ClaimPredicate, cred *domain.Credential, issuer *domain.IssuerInfo, now time.Time) (domain.Witness, error) {
	body, ok := cred.Body.(domain.IdentityBody)
	if !ok {
		return domain.Witness{}, apperr.Credential("credential is not an identity credential", nil)
	}

	sigHash := fcrypto.SHA3_256(cred.Signature)
	issuerPKHash := fcrypto.SHA3_256(issuerPublicKey(issuer))

	witness := domain.Witness{
		Circuit: predicate.CircuitID(),
		Private: []domain.Value{
			domain.NewU32Value(body.BirthdateYYYYMMDD),
			domain.NewBytesValue(cred.CommitmentSalt[:]),
			domain.NewBytesValue(sigHash[:]),
		},
		Public: []domain.Value{
			domain.NewU8Value(predicate.Threshold),
			domain.NewU32Value(yyyymmdd(now)),
			domain.NewBytesValue(cred.Commitment[:]),
			domain.NewBytesValue(issuerPKHash[:]),
		},
	}
	return witness, nil
}

func (w *WitnessBuilder) buildKycStatus(predicate domain.ClaimPredicate, cred *domain.Credential, issuer *domain.IssuerInfo, now time.Time) (domain.Witness, error) {
	body, ok := cred.Body.(domain.KYCBody)
	if !ok {
		return domain.Witness{}, apperr.Credential("credential is not a KYC credential", nil)
	}

	idHash := fcrypto.SHA3_256(cred.ID[:])
	providerHash := fcrypto.SHA3_256([]byte(body.Provider))
	sigHash := fcrypto.SHA3_256(cred.Signature)
	dataHash := fcrypto.SHA3_256([]byte(body.Provider))
	providerPKHash := fcrypto.SHA3_256(issuerPublicKey(issuer))

	maxAge := uint64(0)
	if predicate.MaxAgeSeconds != nil {
		maxAge = *predicate.MaxAgeSeconds
	}

	witness := domain.Witness{
		Circuit: predicate.CircuitID(),
		Private: []domain.Value{
			domain.NewBytesValue(idHash[:]),
			domain.NewBytesValue(providerHash[:]),
			domain.NewU8Value(uint8(body.Level)),
			domain.NewU64Value(body.VerifiedAtUnix),
			domain.NewBytesValue(dataHash[:]),
			domain.NewBytesValue(sigHash[:]),
			domain.NewBytesValue(cred.CommitmentSalt[:]),
		},
		Public: []domain.Value{
			domain.NewU8Value(uint8(predicate.Level)),
			domain.NewU64Value(maxAge),
			domain.NewU64Value(uint64(now.Unix())),
			domain.NewBytesValue(providerPKHash[:]),
			domain.NewBytesValue(cred.Commitment[:]),
		},
	}
	return witness, nil
}

func (w *WitnessBuilder) buildHoldsCredential(ctx context.Context, predicate domain.ClaimPredicate, cred *domain.Credential, issuer *domain.IssuerInfo, userSecret []byte, domainName string, nonce []byte, leafIndex uint64) (domain.Witness, error) {
	typeHash := fcrypto.SHA3_256([]byte(predicate.CredentialType))
	idHash := fcrypto.SHA3_256(cred.ID[:])
	issuerPKHash := fcrypto.SHA3_256(issuerPublicKey(issuer))

	registry := string(cred.Schema)
	siblings, pathBits, err := w.merkle.Prove(ctx, registry, leafIndex)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("merkle proof build failed", err)
	}
	root, err := w.merkle.Root(ctx, registry)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("merkle root fetch failed", err)
	}

	nullifier, err := fcrypto.DeriveNullifier(cred.Commitment, userSecret, domainName, nonce)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("nullifier derivation failed", err)
	}
	domainHash := fcrypto.SHA3_256([]byte(domainName))

	siblingFields := make([]*big.Int, len(siblings))
	for i, s := range siblings {
		siblingFields[i] = fcrypto.BytesToField(s)
	}

	witness := domain.Witness{
		Circuit: predicate.CircuitID(),
		Private: []domain.Value{
			domain.NewBytesValue(typeHash[:]),
			domain.NewBytesValue(idHash[:]),
			domain.NewBytesValue(cred.CommitmentSalt[:]),
			domain.NewBytesValue(userSecret),
			domain.NewFieldArrayValue(siblingFields),
			domain.NewBoolArrayValue(pathBits),
		},
		Public: []domain.Value{
			domain.NewBytesValue(typeHash[:]),
			domain.NewBytesValue(root[:]),
			domain.NewBytesValue(issuerPKHash[:]),
			domain.NewBytesValue(nullifier[:]),
			domain.NewBytesValue(domainHash[:]),
			domain.NewBytesValue(nonce),
		},
	}
	return witness, nil
}

// buildSetMembership is the supplemented fourth circuit's witness clause —
// same proof shape as HoldsCredential, generalized to an arbitrary named
// registry rather than a per-credential-type one.
func (w *WitnessBuilder) buildSetMembership(ctx context.Context, predicate domain.ClaimPredicate, cred *domain.Credential, userSecret []byte, domainName string, nonce []byte, leafIndex uint64) (domain.Witness, error) {
	idHash := fcrypto.SHA3_256(cred.ID[:])
	setIDHash := fcrypto.SHA3_256([]byte(predicate.SetID))

	registry := "set:" + predicate.SetID
	siblings, pathBits, err := w.merkle.Prove(ctx, registry, leafIndex)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("merkle proof build failed", err)
	}
	root, err := w.merkle.Root(ctx, registry)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("merkle root fetch failed", err)
	}

	nullifier, err := fcrypto.DeriveNullifier(cred.Commitment, userSecret, domainName, nonce)
	if err != nil {
		return domain.Witness{}, apperr.ServerError("nullifier derivation failed", err)
	}
	domainHash := fcrypto.SHA3_256([]byte(domainName))

	siblingFields := make([]*big.Int, len(siblings))
	for i, s := range siblings {
		siblingFields[i] = fcrypto.BytesToField(s)
	}

	witness := domain.Witness{
		Circuit: predicate.CircuitID(),
		Private: []domain.Value{
			domain.NewBytesValue(idHash[:]),
			domain.NewBytesValue(cred.CommitmentSalt[:]),
			domain.NewBytesValue(userSecret),
			domain.NewFieldArrayValue(siblingFields),
			domain.NewBoolArrayValue(pathBits),
		},
		Public: []domain.Value{
			domain.NewBytesValue(setIDHash[:]),
			domain.NewBytesValue(root[:]),
			domain.NewBytesValue(nullifier[:]),
			domain.NewBytesValue(domainHash[:]),
			domain.NewBytesValue(nonce),
		},
	}
	return witness, nil
}

func issuerPublicKey(issuer *domain.IssuerInfo) []byte {
	if issuer == nil {
		return nil
	}
	return issuer.PublicKey
}
