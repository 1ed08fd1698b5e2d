package rbac

import (
	"testing"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
)

func strPtr(s string) *string { return &s }

func TestCanTransitionTotality(t *testing.T) {
	// Every (role, from, to) combination, including garbage tokens, must
	// resolve to a plain bool without panicking.
	roles := []entity.Role{entity.RoleAdmin, entity.RoleManager, entity.RoleStore, entity.Role("intruso"), entity.Role("")}
	statuses := append([]entity.ClaimStatus{}, entity.AllStatuses...)
	statuses = append(statuses, entity.ClaimStatus("DESCONHECIDO"), entity.ClaimStatus(""))

	for _, r := range roles {
		for _, from := range statuses {
			for _, to := range statuses {
				got := CanTransition(r, from, to)
				if !from.Valid() || !to.Valid() {
					if got {
						t.Errorf("CanTransition(%s, %s, %s) = true for invalid status", r, from, to)
					}
					continue
				}
				if !r.Valid() && got {
					t.Errorf("CanTransition(%s, %s, %s) = true for unknown role", r, from, to)
				}
			}
		}
	}
}

func TestCanTransitionAdminManagerBroadGrant(t *testing.T) {
	for _, r := range []entity.Role{entity.RoleAdmin, entity.RoleManager} {
		for _, from := range entity.AllStatuses {
			for _, to := range entity.AllStatuses {
				if !CanTransition(r, from, to) {
					t.Errorf("%s should be allowed %s -> %s", r, from, to)
				}
			}
		}
	}
	// The broad grant deliberately covers terminal states.
	if !CanTransition(entity.RoleAdmin, entity.StatusFinalizado, entity.StatusEmAnalise) {
		t.Error("admin should be allowed to reopen a finalized claim")
	}
}

func TestCanTransitionStoreAllowList(t *testing.T) {
	allowed := []struct{ from, to entity.ClaimStatus }{
		{entity.StatusRecebido, entity.StatusEmAnalise},
		{entity.StatusEmAnalise, entity.StatusAguardandoCliente},
		{entity.StatusAguardandoCliente, entity.StatusEmAnalise},
	}
	isAllowed := func(from, to entity.ClaimStatus) bool {
		for _, a := range allowed {
			if a.from == from && a.to == to {
				return true
			}
		}
		return false
	}

	for _, from := range entity.AllStatuses {
		for _, to := range entity.AllStatuses {
			got := CanTransition(entity.RoleStore, from, to)
			if got != isAllowed(from, to) {
				t.Errorf("store %s -> %s: got %v, want %v", from, to, got, isAllowed(from, to))
			}
		}
	}
}

func TestCanTransitionStoreTerminalStates(t *testing.T) {
	for _, from := range []entity.ClaimStatus{entity.StatusFinalizado, entity.StatusCancelado} {
		for _, to := range entity.AllStatuses {
			if CanTransition(entity.RoleStore, from, to) {
				t.Errorf("store must not leave terminal status %s (to %s)", from, to)
			}
		}
	}
}

func TestCanAccessClaim(t *testing.T) {
	own := &entity.Claim{ID: "c1", StoreID: strPtr("store-1")}
	foreign := &entity.Claim{ID: "c2", StoreID: strPtr("store-2")}
	unlinked := &entity.Claim{ID: "c3"}

	if !CanAccessClaim(entity.RoleAdmin, "", own) {
		t.Error("admin should access any claim")
	}
	if !CanAccessClaim(entity.RoleManager, "", unlinked) {
		t.Error("manager should access any claim")
	}
	if !CanAccessClaim(entity.RoleStore, "store-1", own) {
		t.Error("store should access its own claim")
	}
	if CanAccessClaim(entity.RoleStore, "store-1", foreign) {
		t.Error("store must not access a foreign claim")
	}
	if CanAccessClaim(entity.RoleStore, "store-1", unlinked) {
		t.Error("store must not access an unlinked claim")
	}
	if CanAccessClaim(entity.RoleStore, "", own) {
		t.Error("store user without a binding must be denied (fail closed)")
	}
	if CanAccessClaim(entity.Role("intruso"), "store-1", own) {
		t.Error("unknown role must be denied")
	}
	if CanAccessClaim(entity.RoleAdmin, "", nil) {
		t.Error("nil claim must be denied")
	}
}

func TestAllowedTargets(t *testing.T) {
	adm := AllowedTargets(entity.RoleAdmin, entity.StatusRecebido)
	if len(adm) != len(entity.AllStatuses)-1 {
		t.Fatalf("admin targets = %d, want %d", len(adm), len(entity.AllStatuses)-1)
	}
	for _, s := range adm {
		if s == entity.StatusRecebido {
			t.Error("admin targets should not include the current status")
		}
	}

	st := AllowedTargets(entity.RoleStore, entity.StatusRecebido)
	if len(st) != 1 || st[0] != entity.StatusEmAnalise {
		t.Errorf("store targets from RECEBIDO = %v, want [EM_ANALISE]", st)
	}
	if got := AllowedTargets(entity.RoleStore, entity.StatusAprovado); len(got) != 0 {
		t.Errorf("store targets from APROVADO = %v, want none", got)
	}
	if got := AllowedTargets(entity.RoleStore, entity.ClaimStatus("x")); got != nil {
		t.Errorf("targets for invalid status = %v, want nil", got)
	}
}

func TestAllowedTargetsReturnsIsolatedSlice(t *testing.T) {
	first := AllowedTargets(entity.RoleStore, entity.StatusRecebido)
	if len(first) != 1 {
		t.Fatalf("store targets from RECEBIDO = %v, want one entry", first)
	}
	first[0] = entity.StatusAprovado

	second := AllowedTargets(entity.RoleStore, entity.StatusRecebido)
	if len(second) != 1 || second[0] != entity.StatusEmAnalise {
		t.Errorf("mutating a returned slice leaked into the allow-list: %v", second)
	}
	if CanTransition(entity.RoleStore, entity.StatusRecebido, entity.StatusAprovado) {
		t.Error("allow-list must not be mutable through AllowedTargets")
	}
}
