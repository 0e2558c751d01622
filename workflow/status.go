package workflow

import (
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// Tier identifies the review stage acting on an update.
type Tier int

const (
	TierContractor Tier = iota
	TierSupervisor
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierContractor:
		return "contractor"
	case TierSupervisor:
		return "supervisor"
	case TierAdmin:
		return "admin"
	}
	return "unknown"
}

// Flags carries the context that decides tier skipping: a department without
// a supervisor has no supervisor tier, a project without admin or owner has
// no admin tier.
type Flags struct {
	HasSupervisor bool
	HasAdmin      bool
}

// NextStatus is the full transition table for the review pipeline. It is pure:
// given the stored status, the acting tier, the decision and the context
// flags, it returns the next status or a Conflict error when the update is
// not in a status the tier may act on.
//
//	Submitted -> UnderSupervisorReview -> {SupervisorApproved | SupervisorRejected}
//	SupervisorApproved -> UnderAdminReview -> {AdminApproved | AdminRejected}
//	Submitted -> ContractorRejected (contractor tier reject)
//
// A missing tier short-circuits: supervisor approval lands on
// SupervisorApproved (terminal) when no admin tier exists, and the admin may
// review a Submitted update directly when the department has no supervisor.
func NextStatus(current models.UpdateStatus, tier Tier, approve bool, f Flags) (models.UpdateStatus, error) {
	switch tier {
	case TierContractor:
		if current != models.UpdateSubmitted {
			return current, conflict("update is not awaiting contractor review (status %s)", current)
		}
		if !approve {
			return models.UpdateContractorRejected, nil
		}
		if f.HasSupervisor {
			return models.UpdateUnderSupervisorReview, nil
		}
		if f.HasAdmin {
			return models.UpdateUnderAdminReview, nil
		}
		return models.UpdateSupervisorApproved, nil

	case TierSupervisor:
		if current != models.UpdateSubmitted && current != models.UpdateUnderSupervisorReview {
			return current, conflict("update is not awaiting supervisor review (status %s)", current)
		}
		if !approve {
			return models.UpdateSupervisorRejected, nil
		}
		if f.HasAdmin {
			return models.UpdateUnderAdminReview, nil
		}
		return models.UpdateSupervisorApproved, nil

	case TierAdmin:
		ok := current == models.UpdateUnderAdminReview
		if !ok && !f.HasSupervisor {
			// No supervisor on the department: the admin reviews directly.
			ok = current == models.UpdateSubmitted || current == models.UpdateSupervisorApproved
		}
		if !ok {
			return current, conflict("update is not awaiting admin review (status %s)", current)
		}
		if !approve {
			return models.UpdateAdminRejected, nil
		}
		return models.UpdateAdminApproved, nil
	}
	return current, invalid("unknown review tier")
}

// terminalApproved reports whether status is an approval from which no
// further tier runs, given the project context.
func terminalApproved(status models.UpdateStatus, f Flags) bool {
	if status == models.UpdateAdminApproved {
		return true
	}
	return status == models.UpdateSupervisorApproved && !f.HasAdmin
}
