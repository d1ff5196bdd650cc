package mqhandler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	contracts "talentlink/contracts/mq"
)

func TestDedupeKeyStableAcrossRedelivery(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	p := contracts.ProposalSubmittedPayload{
		ApplicationID:  7,
		ProjectID:      3,
		ProposedStatus: "Completed",
		ProposedAt:     at,
	}

	key1, entity1 := proposalSubmittedKey(p)
	key2, entity2 := proposalSubmittedKey(p)
	assert.Equal(t, key1, key2)
	assert.Equal(t, entity1, entity2)
	assert.Equal(t, 7, entity1)
}

func TestDedupeKeyDistinguishesRepropose(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	again := first.Add(5 * time.Minute)

	// the client rejects the first proposal, the freelancer proposes again on
	// the same application
	k1, _ := proposalSubmittedKey(contracts.ProposalSubmittedPayload{
		ApplicationID: 7, ProposedStatus: "Completed", ProposedAt: first,
	})
	k2, _ := proposalSubmittedKey(contracts.ProposalSubmittedPayload{
		ApplicationID: 7, ProposedStatus: "Completed", ProposedAt: again,
	})
	assert.NotEqual(t, k1, k2)

	r1, _ := proposalResolvedKey(contracts.ProposalResolvedPayload{
		ApplicationID: 7, Approved: false, ResolvedAt: first.Add(time.Minute),
	})
	r2, _ := proposalResolvedKey(contracts.ProposalResolvedPayload{
		ApplicationID: 7, Approved: true, ResolvedAt: again.Add(time.Minute),
	})
	assert.NotEqual(t, r1, r2)
}

func TestDedupeKeyDistinguishesRebid(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	again := first.Add(2 * time.Hour)

	// a rejected application frees the freelancer to bid again on the same
	// project; the new bid must notify the client
	k1, e1 := applicationSubmittedKey(contracts.ApplicationSubmittedPayload{
		ApplicationID: 11, ProjectID: 3, FreelancerID: 2, AppliedAt: first,
	})
	k2, e2 := applicationSubmittedKey(contracts.ApplicationSubmittedPayload{
		ApplicationID: 12, ProjectID: 3, FreelancerID: 2, AppliedAt: again,
	})
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, e1, e2)
}

func TestDedupeKeyDistinguishesStatusChanges(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	k1, _ := projectStatusChangedKey(contracts.ProjectStatusChangedPayload{
		ProjectID: 3, OldStatus: "Open", NewStatus: "Acquired", ChangedAt: first,
	})
	k2, _ := projectStatusChangedKey(contracts.ProjectStatusChangedPayload{
		ProjectID: 3, OldStatus: "Acquired", NewStatus: "In Progress", ChangedAt: first.Add(time.Hour),
	})
	assert.NotEqual(t, k1, k2)
}
