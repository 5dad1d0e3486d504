package loader

import (
	"github.com/google/uuid"
	comm "github.com/iden3/iden3comm/v2"
)

// ProofSubmissionAck builds the iden3comm envelope acknowledging receipt of
// a stored proof, reusing the same From/To/ThreadID/ID/Typ BasicMessage
// shape internal/core/services/payment.go used for
// CreatePaymentRequestForProposalRequest, generalized from payment-proposal
// acknowledgement to a proof POST's acknowledgement.
func ProofSubmissionAck(from, to, threadID string) *comm.BasicMessage {
	return &comm.BasicMessage{
		From:     from,
		To:       to,
		ThreadID: threadID,
		ID:       uuid.NewString(),
		Typ:      "application/iden3comm-plain-json",
	}
}
