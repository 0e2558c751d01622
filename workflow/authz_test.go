package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

func uintPtr(v uint) *uint { return &v }

func TestResolveCapabilitiesRelationships(t *testing.T) {
	task := &models.Task{ID: 1, AssigneeID: uintPtr(10)}
	contractor := &models.Contractor{ID: 3, AdminID: uintPtr(11)}
	dept := &models.Department{ID: 5, SupervisorID: uintPtr(12)}
	proj := &models.Project{ID: 7, AdminID: uintPtr(13), OwnerID: uintPtr(14)}

	caps := ResolveCapabilities(Actor{UserID: 10, Role: models.RoleWorker}, task, contractor, dept, proj)
	assert.True(t, caps.IsAssignee)
	assert.False(t, caps.IsSupervisor)
	assert.False(t, caps.CanReview(TierSupervisor))
	assert.True(t, caps.CanComplete())

	caps = ResolveCapabilities(Actor{UserID: 11, Role: models.RoleContractorAdmin}, task, contractor, dept, proj)
	assert.True(t, caps.IsContractorAdmin)
	assert.True(t, caps.CanReview(TierContractor))
	assert.False(t, caps.CanReview(TierSupervisor))

	caps = ResolveCapabilities(Actor{UserID: 12, Role: models.RoleSupervisor}, task, contractor, dept, proj)
	assert.True(t, caps.IsSupervisor)
	assert.True(t, caps.CanReview(TierContractor), "higher tier covers the lower one")
	assert.True(t, caps.CanReview(TierSupervisor))
	assert.False(t, caps.CanReview(TierAdmin))

	for _, id := range []uint{13, 14} {
		caps = ResolveCapabilities(Actor{UserID: id, Role: models.RoleProjectAdmin}, task, contractor, dept, proj)
		assert.True(t, caps.IsProjectAdminOrOwner)
		assert.True(t, caps.CanReview(TierSupervisor))
		assert.True(t, caps.CanReview(TierAdmin))
	}
}

func TestResolveCapabilitiesSupervisorOfOtherDepartment(t *testing.T) {
	// Supervisor of department X gains nothing over a task in department Y.
	dept := &models.Department{ID: 5, SupervisorID: uintPtr(99)}
	proj := &models.Project{ID: 7, AdminID: uintPtr(13)}
	task := &models.Task{ID: 1, DepartmentID: 5}

	caps := ResolveCapabilities(Actor{UserID: 12, Role: models.RoleSupervisor}, task, nil, dept, proj)
	assert.False(t, caps.IsSupervisor)
	assert.False(t, caps.CanReview(TierSupervisor))
	assert.False(t, caps.CanComplete())
}

func TestResolveCapabilitiesPlatformOverride(t *testing.T) {
	dept := &models.Department{ID: 5}
	proj := &models.Project{ID: 7}
	task := &models.Task{ID: 1}

	caps := ResolveCapabilities(Actor{UserID: 1, Role: models.RoleSuperAdmin}, task, nil, dept, proj)
	assert.True(t, caps.IsPlatformOverride)
	assert.True(t, caps.CanReview(TierContractor))
	assert.True(t, caps.CanReview(TierSupervisor))
	assert.True(t, caps.CanReview(TierAdmin))
	assert.True(t, caps.CanComplete())

	// Org admin has listing visibility but no review override.
	caps = ResolveCapabilities(Actor{UserID: 1, Role: models.RoleOrgAdmin}, task, nil, dept, proj)
	assert.False(t, caps.IsPlatformOverride)
	assert.False(t, caps.CanReview(TierAdmin))
}

func TestCanViewTask(t *testing.T) {
	task := &models.Task{ID: 1, AssigneeID: uintPtr(10)}
	dept := &models.Department{ID: 5, SupervisorID: uintPtr(12)}
	proj := &models.Project{ID: 7, OrganizationID: 1, AdminID: uintPtr(13)}

	resolve := func(userID uint, role string) (Capabilities, Actor) {
		actor := Actor{UserID: userID, Role: role}
		return ResolveCapabilities(actor, task, nil, dept, proj), actor
	}

	caps, actor := resolve(10, models.RoleWorker)
	assert.True(t, CanViewTask(caps, actor, 1, proj), "assignee")

	caps, actor = resolve(12, models.RoleSupervisor)
	assert.True(t, CanViewTask(caps, actor, 1, proj), "supervisor")

	caps, actor = resolve(20, models.RoleWorker)
	assert.False(t, CanViewTask(caps, actor, 1, proj), "same-org worker without a relationship")

	caps, actor = resolve(20, models.RoleOrgAdmin)
	assert.True(t, CanViewTask(caps, actor, 1, proj), "org admin of the owning organization")
	assert.False(t, CanViewTask(caps, actor, 2, proj), "org admin of another organization")

	caps, actor = resolve(20, models.RoleSuperAdmin)
	assert.True(t, CanViewTask(caps, actor, 2, proj), "platform override crosses organizations")
}
