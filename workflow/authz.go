package workflow

import (
	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// Actor is the authenticated identity acting on the workflow, as resolved
// from the access token.
type Actor struct {
	UserID uint
	Role   string
}

// Capabilities is the resolved authority of an actor over one task's
// ownership chain. It is computed once per request from already-loaded
// records; review and completion share it so the two paths cannot drift.
// Precedence is assignee < contractor admin < supervisor < project
// admin/owner < platform override.
type Capabilities struct {
	IsAssignee            bool
	IsContractorAdmin     bool
	IsSupervisor          bool
	IsProjectAdminOrOwner bool
	IsPlatformOverride    bool
}

// ResolveCapabilities is pure: no I/O, callers supply the loaded context.
// contractor may be nil when the task has no contractor attached.
func ResolveCapabilities(actor Actor, task *models.Task, contractor *models.Contractor, dept *models.Department, proj *models.Project) Capabilities {
	c := Capabilities{
		IsPlatformOverride: models.IsPlatformOverride(actor.Role),
	}
	if task != nil && task.AssigneeID != nil && *task.AssigneeID == actor.UserID {
		c.IsAssignee = true
	}
	if contractor != nil && contractor.AdminID != nil && *contractor.AdminID == actor.UserID {
		c.IsContractorAdmin = true
	}
	if dept != nil && dept.SupervisorID != nil && *dept.SupervisorID == actor.UserID {
		c.IsSupervisor = true
	}
	if proj != nil {
		if (proj.AdminID != nil && *proj.AdminID == actor.UserID) ||
			(proj.OwnerID != nil && *proj.OwnerID == actor.UserID) {
			c.IsProjectAdminOrOwner = true
		}
	}
	return c
}

// CanReview reports whether the actor may act at the given tier. Each tier
// accepts its own role plus every higher tier in the precedence order.
func (c Capabilities) CanReview(tier Tier) bool {
	if c.IsPlatformOverride {
		return true
	}
	switch tier {
	case TierContractor:
		return c.IsContractorAdmin || c.IsSupervisor || c.IsProjectAdminOrOwner
	case TierSupervisor:
		return c.IsSupervisor || c.IsProjectAdminOrOwner
	case TierAdmin:
		return c.IsProjectAdminOrOwner
	}
	return false
}

// CanComplete reports whether the actor may mark the task complete.
func (c Capabilities) CanComplete() bool {
	return c.IsAssignee || c.IsSupervisor || c.IsProjectAdminOrOwner || c.IsPlatformOverride
}

// CanViewTask reports whether the actor may read a task and its update
// history, including per-tier reviewer feedback: anyone holding a capability
// on the task's ownership chain, an org admin of the owning organization, or
// the platform override. Everyone else, authenticated or not in the same
// organization, is refused.
func CanViewTask(caps Capabilities, actor Actor, actorOrgID uint, proj *models.Project) bool {
	if caps.IsPlatformOverride || caps.IsAssignee || caps.IsContractorAdmin ||
		caps.IsSupervisor || caps.IsProjectAdminOrOwner {
		return true
	}
	return proj != nil && actorOrgID == proj.OrganizationID && actor.Role == models.RoleOrgAdmin
}
