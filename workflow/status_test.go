package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

func TestNextStatusSupervisorApproveWithAdminTier(t *testing.T) {
	f := Flags{HasSupervisor: true, HasAdmin: true}

	next, err := NextStatus(models.UpdateSubmitted, TierSupervisor, true, f)
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderAdminReview, next)

	next, err = NextStatus(models.UpdateUnderSupervisorReview, TierSupervisor, true, f)
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderAdminReview, next)
}

func TestNextStatusSupervisorApproveWithoutAdminTier(t *testing.T) {
	next, err := NextStatus(models.UpdateSubmitted, TierSupervisor, true, Flags{HasSupervisor: true})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateSupervisorApproved, next, "approval is terminal when no admin tier exists")
}

func TestNextStatusSupervisorReject(t *testing.T) {
	next, err := NextStatus(models.UpdateUnderSupervisorReview, TierSupervisor, false, Flags{HasSupervisor: true, HasAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateSupervisorRejected, next)
}

func TestNextStatusAdminDirectReviewWhenNoSupervisor(t *testing.T) {
	f := Flags{HasSupervisor: false, HasAdmin: true}

	next, err := NextStatus(models.UpdateSubmitted, TierAdmin, true, f)
	require.NoError(t, err)
	assert.Equal(t, models.UpdateAdminApproved, next)

	next, err = NextStatus(models.UpdateSupervisorApproved, TierAdmin, false, f)
	require.NoError(t, err)
	assert.Equal(t, models.UpdateAdminRejected, next)
}

func TestNextStatusAdminCannotSkipSupervisor(t *testing.T) {
	f := Flags{HasSupervisor: true, HasAdmin: true}

	_, err := NextStatus(models.UpdateSubmitted, TierAdmin, true, f)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestNextStatusContractorTier(t *testing.T) {
	next, err := NextStatus(models.UpdateSubmitted, TierContractor, true, Flags{HasSupervisor: true, HasAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderSupervisorReview, next)

	next, err = NextStatus(models.UpdateSubmitted, TierContractor, true, Flags{HasAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateUnderAdminReview, next, "skips straight to admin review without a supervisor")

	next, err = NextStatus(models.UpdateSubmitted, TierContractor, true, Flags{})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateSupervisorApproved, next, "terminal approval when no later tier exists")

	next, err = NextStatus(models.UpdateSubmitted, TierContractor, false, Flags{HasSupervisor: true, HasAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, models.UpdateContractorRejected, next)
}

func TestNextStatusTerminalStatesAcceptNoDecision(t *testing.T) {
	terminals := []models.UpdateStatus{
		models.UpdateSupervisorRejected,
		models.UpdateAdminApproved,
		models.UpdateAdminRejected,
		models.UpdateContractorRejected,
	}
	tiers := []Tier{TierContractor, TierSupervisor, TierAdmin}
	f := Flags{HasSupervisor: true, HasAdmin: true}

	for _, cur := range terminals {
		for _, tier := range tiers {
			for _, approve := range []bool{true, false} {
				_, err := NextStatus(cur, tier, approve, f)
				require.Errorf(t, err, "expected error for %s at %s tier", cur, tier)
				assert.Equal(t, KindConflict, KindOf(err))
			}
		}
	}
}

func TestNextStatusOnlyAdjacentEdges(t *testing.T) {
	// Brute force: every reachable transition must be one of the enumerated
	// edges regardless of flag combination.
	type edge struct {
		from models.UpdateStatus
		to   models.UpdateStatus
	}
	allowed := map[edge]bool{
		{models.UpdateSubmitted, models.UpdateUnderSupervisorReview}:          true,
		{models.UpdateSubmitted, models.UpdateUnderAdminReview}:               true,
		{models.UpdateSubmitted, models.UpdateSupervisorApproved}:             true,
		{models.UpdateSubmitted, models.UpdateSupervisorRejected}:             true,
		{models.UpdateSubmitted, models.UpdateAdminApproved}:                  true,
		{models.UpdateSubmitted, models.UpdateAdminRejected}:                  true,
		{models.UpdateSubmitted, models.UpdateContractorRejected}:             true,
		{models.UpdateUnderSupervisorReview, models.UpdateUnderAdminReview}:   true,
		{models.UpdateUnderSupervisorReview, models.UpdateSupervisorApproved}: true,
		{models.UpdateUnderSupervisorReview, models.UpdateSupervisorRejected}: true,
		{models.UpdateSupervisorApproved, models.UpdateAdminApproved}:         true,
		{models.UpdateSupervisorApproved, models.UpdateAdminRejected}:         true,
		{models.UpdateUnderAdminReview, models.UpdateAdminApproved}:           true,
		{models.UpdateUnderAdminReview, models.UpdateAdminRejected}:           true,
	}

	statuses := []models.UpdateStatus{
		models.UpdateSubmitted, models.UpdateUnderSupervisorReview,
		models.UpdateSupervisorApproved, models.UpdateSupervisorRejected,
		models.UpdateUnderAdminReview, models.UpdateAdminApproved,
		models.UpdateAdminRejected, models.UpdateContractorRejected,
	}
	for _, cur := range statuses {
		for _, tier := range []Tier{TierContractor, TierSupervisor, TierAdmin} {
			for _, approve := range []bool{true, false} {
				for _, hasSup := range []bool{true, false} {
					for _, hasAdm := range []bool{true, false} {
						next, err := NextStatus(cur, tier, approve, Flags{HasSupervisor: hasSup, HasAdmin: hasAdm})
						if err != nil {
							continue
						}
						assert.Truef(t, allowed[edge{cur, next}],
							"non-adjacent transition %s -> %s (tier %s, approve %v)", cur, next, tier, approve)
					}
				}
			}
		}
	}
}
