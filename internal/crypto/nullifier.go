package crypto

// DeriveNullifier computes N = H2(H2(commitment‖user_secret) ‖ H2(H(domain)‖nonce))
// per the data model's nullifier formula. N is a pure function of its four
// inputs: identical inputs always yield identical output, and distinct
// domains or nonces yield distinct outputs with overwhelming probability.
func DeriveNullifier(commitment [32]byte, userSecret []byte, domainName string, nonce []byte) ([32]byte, error) {
	commitmentField := BytesToField(commitment[:])
	secretField := BytesToField(userSecret)

	left, err := PoseidonPair(commitmentField, secretField)
	if err != nil {
		return [32]byte{}, err
	}

	domainHash := SHA3_256([]byte(domainName))
	domainField := BytesToField(domainHash[:])
	nonceField := BytesToField(nonce)

	right, err := PoseidonPair(domainField, nonceField)
	if err != nil {
		return [32]byte{}, err
	}

	final, err := PoseidonPair(left, right)
	if err != nil {
		return [32]byte{}, err
	}

	return FieldToBytes32(final), nil
}
