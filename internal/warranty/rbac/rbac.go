// Package rbac holds the static role/permission model: which status
// transitions each role may perform and which claims each role may see.
// Everything here is a pure lookup, safe for concurrent use.
package rbac

import (
	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
)

// storeTransitions is the explicit allow-list for the store role, keyed by
// the current status. Store users only shepherd a claim through the early
// analysis loop; approval and closure stay with relm staff.
var storeTransitions = map[entity.ClaimStatus][]entity.ClaimStatus{
	entity.StatusRecebido:          {entity.StatusEmAnalise},
	entity.StatusEmAnalise:         {entity.StatusAguardandoCliente},
	entity.StatusAguardandoCliente: {entity.StatusEmAnalise},
}

// CanTransition reports whether role may move a claim from one status to
// another. Admin and manager hold an unconditional grant, including out of
// terminal states; that is the operational escape hatch, and every use of
// it still writes an audit event. Unknown roles or status tokens are
// always denied.
func CanTransition(role entity.Role, from, to entity.ClaimStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	switch role {
	case entity.RoleAdmin, entity.RoleManager:
		return true
	case entity.RoleStore:
		for _, t := range storeTransitions[from] {
			if t == to {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CanAccessClaim reports whether the caller may see or act on the claim.
// A store user with no store binding is denied everything: that is a
// configuration error upstream and we fail closed.
func CanAccessClaim(role entity.Role, callerStoreID string, claim *entity.Claim) bool {
	if claim == nil {
		return false
	}
	switch role {
	case entity.RoleAdmin, entity.RoleManager:
		return true
	case entity.RoleStore:
		if callerStoreID == "" {
			return false
		}
		return claim.StoreID != nil && *claim.StoreID == callerStoreID
	default:
		return false
	}
}

// AllowedTargets lists the statuses role may move a claim in status from
// to. Consumed by the claim action panel so the UI only offers legal moves.
func AllowedTargets(role entity.Role, from entity.ClaimStatus) []entity.ClaimStatus {
	if !from.Valid() {
		return nil
	}
	switch role {
	case entity.RoleAdmin, entity.RoleManager:
		targets := make([]entity.ClaimStatus, 0, len(entity.AllStatuses)-1)
		for _, s := range entity.AllStatuses {
			if s != from {
				targets = append(targets, s)
			}
		}
		return targets
	case entity.RoleStore:
		// copy, so callers cannot mutate the allow-list through the
		// returned slice
		return append([]entity.ClaimStatus(nil), storeTransitions[from]...)
	default:
		return nil
	}
}
