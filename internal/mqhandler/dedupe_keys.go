package mqhandler

import (
	"fmt"

	contracts "talentlink/contracts/mq"
)

// Dedupe keys identify one logical event, not the aggregate behind it. The
// same application carries a fresh proposal after a rejection, and a
// freelancer can bid again once a rejected application clears, so each key
// folds in the event timestamp. Only a redelivery of the same message repeats
// the key.

func applicationSubmittedKey(p contracts.ApplicationSubmittedPayload) (string, int) {
	return fmt.Sprintf("application_submitted:%d", p.AppliedAt.UnixNano()), p.ApplicationID
}

func proposalSubmittedKey(p contracts.ProposalSubmittedPayload) (string, int) {
	return fmt.Sprintf("proposal_submitted:%d", p.ProposedAt.UnixNano()), p.ApplicationID
}

func proposalResolvedKey(p contracts.ProposalResolvedPayload) (string, int) {
	return fmt.Sprintf("proposal_resolved:%d", p.ResolvedAt.UnixNano()), p.ApplicationID
}

func projectStatusChangedKey(p contracts.ProjectStatusChangedPayload) (string, int) {
	return fmt.Sprintf("project_status_changed:%d", p.ChangedAt.UnixNano()), p.ProjectID
}
