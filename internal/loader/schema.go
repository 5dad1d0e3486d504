package loader

import (
	"context"
	"encoding/json"
	"io"

	ipfsapi "github.com/ipfs/go-ipfs-api"
	v2verifiable "github.com/iden3/go-schema-processor/v2/verifiable"
	"github.com/piprate/json-gold/ld"

	"github.com/jackfredericksen/fantasma/internal/apperr"
	"github.com/jackfredericksen/fantasma/internal/core/domain"
)

// schemaContexts holds the JSON-LD @context document for each supported
// credential schema, addressable by a synthetic fantasma:// URL the
// embeddedLoader below resolves without any network round-trip.
var schemaContexts = map[domain.CredentialType]string{
	domain.CredentialIdentityV1: `{
		"@context": {"@version": 1.1, "birthdate_yyyymmdd": "https://schema.fantasma.dev/identity-v1#birthdate_yyyymmdd"}
	}`,
	domain.CredentialKYCV1: `{
		"@context": {"@version": 1.1, "provider": "https://schema.fantasma.dev/kyc-v1#provider", "level": "https://schema.fantasma.dev/kyc-v1#level", "verified_at_unix": "https://schema.fantasma.dev/kyc-v1#verified_at_unix"}
	}`,
	domain.CredentialDegreeV1: `{
		"@context": {"@version": 1.1, "institution": "https://schema.fantasma.dev/degree-v1#institution", "degree_type": "https://schema.fantasma.dev/degree-v1#degree_type", "field": "https://schema.fantasma.dev/degree-v1#field", "conferred_yyyymmdd": "https://schema.fantasma.dev/degree-v1#conferred_yyyymmdd"}
	}`,
	domain.CredentialLicenseV1: `{
		"@context": {"@version": 1.1, "license_type": "https://schema.fantasma.dev/license-v1#license_type", "jurisdiction": "https://schema.fantasma.dev/license-v1#jurisdiction"}
	}`,
	domain.CredentialMembershipV1: `{
		"@context": {"@version": 1.1, "organization": "https://schema.fantasma.dev/membership-v1#organization", "membership_type": "https://schema.fantasma.dev/membership-v1#membership_type"}
	}`,
}

// contextURL returns the synthetic, in-process URL schemaLoader serves
// credType's @context document from.
func contextURL(credType domain.CredentialType) string {
	return "fantasma://schemas/" + string(credType) + "/context.jsonld"
}

// embeddedLoader is a json-gold ld.DocumentLoader that resolves the
// fantasma:// context URLs above from schemaContexts, falling back to an
// IPFS gateway fetch (via go-ipfs-api) for ipfs:// URLs — matching the
// spec's "optional IPFS-backed fetch" loader wiring — and otherwise
// delegating to json-gold's own default HTTP loader.
type embeddedLoader struct {
	ipfs     *ipfsapi.Shell
	fallback ld.DocumentLoader
}

// NewSchemaLoader constructs a json-gold DocumentLoader serving fantasma's
// five embedded credential-schema contexts, an optional IPFS gateway for
// ipfs:// URLs, and the standard HTTP loader for everything else.
func NewSchemaLoader(ipfsAPIURL string) ld.DocumentLoader {
	var shell *ipfsapi.Shell
	if ipfsAPIURL != "" {
		shell = ipfsapi.NewShell(ipfsAPIURL)
	}
	return &embeddedLoader{ipfs: shell, fallback: ld.NewDefaultDocumentLoader(nil)}
}

func (l *embeddedLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	for credType, rawContext := range schemaContexts {
		if u == contextURL(credType) {
			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(rawContext), &doc); err != nil {
				return nil, apperr.ServerError("embedded schema context malformed", err)
			}
			return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
		}
	}

	if l.ipfs != nil && len(u) > 7 && u[:7] == "ipfs://" {
		reader, err := l.ipfs.Cat(u[7:])
		if err != nil {
			return nil, apperr.Unavailable("ipfs schema fetch failed", err)
		}
		defer reader.Close()

		raw, err := io.ReadAll(reader)
		if err != nil {
			return nil, apperr.Unavailable("ipfs schema read failed", err)
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, apperr.ServerError("ipfs schema document malformed", err)
		}
		return &ld.RemoteDocument{DocumentURL: u, Document: doc}, nil
	}

	return l.fallback.LoadDocument(u)
}

// CredentialSchema returns the iden3 verifiable.CredentialSchema
// descriptor for credType, binding its embedded @context document as the
// schema's JsonSchemaValidator2018 identifier.
func CredentialSchema(credType domain.CredentialType) v2verifiable.CredentialSchema {
	return v2verifiable.CredentialSchema{
		ID:   contextURL(credType),
		Type: "JsonSchemaValidator2018",
	}
}

// Expand runs the JSON-LD expansion algorithm over doc using loader,
// surfacing malformed-schema errors as apperr.Configuration rather than a
// raw json-gold error.
func Expand(ctx context.Context, loader ld.DocumentLoader, doc map[string]interface{}) ([]interface{}, error) {
	proc := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.DocumentLoader = loader

	expanded, err := proc.Expand(doc, options)
	if err != nil {
		return nil, apperr.Configuration("jsonld expansion failed", err)
	}
	return expanded, nil
}
