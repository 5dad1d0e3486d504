package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProofSubmissionAck(t *testing.T) {
	msg := ProofSubmissionAck("did:iden3:fantasma:issuer", "did:iden3:fantasma:user-1", "thread-1")
	assert.Equal(t, "did:iden3:fantasma:issuer", msg.From)
	assert.Equal(t, "did:iden3:fantasma:user-1", msg.To)
	assert.Equal(t, "thread-1", msg.ThreadID)
	assert.NotEmpty(t, msg.ID)
}
