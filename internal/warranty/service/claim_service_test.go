package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/Murilo2811/relm-care-plus/internal/warranty/entity"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/repository"
	"github.com/Murilo2811/relm-care-plus/internal/warranty/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupClaimService(t *testing.T) (*gorm.DB, *ClaimService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewClaimService(repos.Claim, repos.Store, nil, zap.NewNop())
	return db, svc
}

func storeActor(storeID string) Actor {
	return Actor{ID: "user-loja", Name: "Loja User", Role: entity.RoleStore, StoreID: storeID}
}

var adminActor = Actor{ID: "user-admin", Name: "Admin User", Role: entity.RoleAdmin}

func TestCreatePublicGeneratesProtocol(t *testing.T) {
	_, svc := setupClaimService(t)
	ctx := context.Background()

	claim, err := svc.CreatePublic(ctx, &CreatePublicClaimRequest{
		CustomerName:       "João Pereira",
		CustomerPhone:      "11987654321",
		CustomerEmail:      "joao@example.com",
		ProductDescription: "Quadro trincado próximo ao garfo",
		PurchaseStoreName:  "Loja Desconhecida XYZ",
	})
	if err != nil {
		t.Fatalf("CreatePublic failed: %v", err)
	}

	protocolPattern := regexp.MustCompile(`^HB-\d{8}-\d{4}$`)
	if !protocolPattern.MatchString(claim.ProtocolNumber) {
		t.Errorf("Unexpected protocol format: %s", claim.ProtocolNumber)
	}
	if claim.Status != entity.StatusRecebido {
		t.Errorf("Expected status RECEBIDO, got %s", claim.Status)
	}
	if claim.LinkStatus != entity.LinkPendingReview {
		t.Errorf("Expected PENDING_REVIEW for unmatched store, got %s", claim.LinkStatus)
	}
}

func TestCreatePublicMatchesStoreIgnoringAccents(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Bicicletaria São João", "Bike SJ")

	cases := []struct {
		name  string
		input string
	}{
		{"exact", "Bicicletaria São João"},
		{"no accents", "bicicletaria sao joao"},
		{"alias", "BIKE SJ"},
		{"padded", "  Bicicletaria São João  "},
	}
	for _, tc := range cases {
		claim, err := svc.CreatePublic(ctx, &CreatePublicClaimRequest{
			CustomerName:       "Cliente",
			CustomerPhone:      "11987654321",
			ProductDescription: "Defeito",
			PurchaseStoreName:  tc.input,
		})
		if err != nil {
			t.Fatalf("%s: CreatePublic failed: %v", tc.name, err)
		}
		if claim.StoreID == nil || *claim.StoreID != store.ID {
			t.Errorf("%s: expected auto link to %s, got %v", tc.name, store.ID, claim.StoreID)
		}
		if claim.LinkStatus != entity.LinkLinkedAuto {
			t.Errorf("%s: expected LINKED_AUTO, got %s", tc.name, claim.LinkStatus)
		}
	}

	// no match stays pending for manual review
	claim, err := svc.CreatePublic(ctx, &CreatePublicClaimRequest{
		CustomerName:       "Cliente",
		CustomerPhone:      "11987654321",
		ProductDescription: "Defeito",
		PurchaseStoreName:  "Loja Inexistente",
	})
	if err != nil {
		t.Fatalf("CreatePublic failed: %v", err)
	}
	if claim.StoreID != nil {
		t.Errorf("Expected no store link, got %v", *claim.StoreID)
	}
	if claim.LinkStatus != entity.LinkPendingReview {
		t.Errorf("Expected PENDING_REVIEW, got %s", claim.LinkStatus)
	}
}

func TestCreatePublicMissingFields(t *testing.T) {
	_, svc := setupClaimService(t)

	_, err := svc.CreatePublic(context.Background(), &CreatePublicClaimRequest{
		CustomerName:      "   ",
		CustomerPhone:     "11987654321",
		PurchaseStoreName: "Loja",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestUpdateStatusStoreAllowed(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &store.ID)

	updated, err := svc.UpdateStatus(ctx, storeActor(store.ID), claim.ID, "EM_ANALISE", "Iniciando análise")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != entity.StatusEmAnalise {
		t.Errorf("Expected EM_ANALISE, got %s", updated.Status)
	}

	events, err := svc.History(ctx, storeActor(store.ID), claim.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected exactly 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.EventType != entity.EventStatusChange {
		t.Errorf("Expected STATUS_CHANGE, got %s", ev.EventType)
	}
	if ev.FromStatus == nil || *ev.FromStatus != entity.StatusRecebido {
		t.Errorf("Unexpected from status: %v", ev.FromStatus)
	}
	if ev.ToStatus == nil || *ev.ToStatus != entity.StatusEmAnalise {
		t.Errorf("Unexpected to status: %v", ev.ToStatus)
	}
	if ev.Comment != "Iniciando análise" {
		t.Errorf("Unexpected comment: %s", ev.Comment)
	}
	if ev.ActorID != "user-loja" {
		t.Errorf("Unexpected actor: %s", ev.ActorID)
	}
}

func TestUpdateStatusStoreDeniedTransition(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &store.ID)

	_, err := svc.UpdateStatus(ctx, storeActor(store.ID), claim.ID, "APROVADO", "Tentativa indevida")
	var terr *InvalidTransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected InvalidTransitionError, got %v", err)
	}
	if !strings.Contains(terr.Error(), "loja") {
		t.Errorf("Error should name the role: %s", terr.Error())
	}

	// status unchanged, no event written
	reloaded, err := svc.GetByID(ctx, adminActor, claim.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.Status != entity.StatusRecebido {
		t.Errorf("Status should be unchanged, got %s", reloaded.Status)
	}
	events, _ := svc.History(ctx, adminActor, claim.ID)
	if len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
}

func TestUpdateStatusForeignClaimForbidden(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	storeA := testutil.SeedStore(t, db, "Loja A")
	storeB := testutil.SeedStore(t, db, "Loja B")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &storeA.ID)

	_, err := svc.UpdateStatus(ctx, storeActor(storeB.ID), claim.ID, "EM_ANALISE", "Não é minha")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestUpdateStatusAdminBroadGrant(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	updated, err := svc.UpdateStatus(ctx, adminActor, claim.ID, "FINALIZADO", "Encerrado administrativamente")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != entity.StatusFinalizado {
		t.Errorf("Expected FINALIZADO, got %s", updated.Status)
	}

	// admins can also leave terminal states
	updated, err = svc.UpdateStatus(ctx, adminActor, claim.ID, "EM_ANALISE", "Reaberto")
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if updated.Status != entity.StatusEmAnalise {
		t.Errorf("Expected EM_ANALISE, got %s", updated.Status)
	}
}

func TestUpdateStatusEmptyComment(t *testing.T) {
	db, svc := setupClaimService(t)
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	for _, comment := range []string{"", "   "} {
		_, err := svc.UpdateStatus(context.Background(), adminActor, claim.ID, "EM_ANALISE", comment)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Comment %q: expected ValidationError, got %v", comment, err)
		}
	}
}

func TestUpdateStatusUnknownToken(t *testing.T) {
	db, svc := setupClaimService(t)
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	_, err := svc.UpdateStatus(context.Background(), adminActor, claim.ID, "EM_ANDAMENTO", "Comentário")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for unknown status, got %v", err)
	}
}

func TestGetByIDForeignClaimNotFound(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	storeA := testutil.SeedStore(t, db, "Loja A")
	storeB := testutil.SeedStore(t, db, "Loja B")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &storeA.ID)

	_, err := svc.GetByID(ctx, storeActor(storeB.ID), claim.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign claim, got %v", err)
	}

	// unlinked claims are invisible to store users too
	pending := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)
	_, err = svc.GetByID(ctx, storeActor(storeB.ID), pending.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unlinked claim, got %v", err)
	}
}

func TestListScopesAndMasks(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	storeA := testutil.SeedStore(t, db, "Loja A")
	storeB := testutil.SeedStore(t, db, "Loja B")
	testutil.SeedClaim(t, db, entity.StatusRecebido, &storeA.ID)
	testutil.SeedClaim(t, db, entity.StatusEmAnalise, &storeA.ID)
	testutil.SeedClaim(t, db, entity.StatusRecebido, &storeB.ID)
	testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	// admin sees everything, unmasked
	all, err := svc.List(ctx, adminActor, ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("Expected 4 claims for admin, got %d", len(all))
	}
	if all[0].CustomerPhone != "11987654321" {
		t.Errorf("Admin should see raw phone, got %s", all[0].CustomerPhone)
	}

	// store sees only its own claims, masked
	mine, err := svc.List(ctx, storeActor(storeA.ID), ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("Expected 2 claims for store A, got %d", len(mine))
	}
	for _, c := range mine {
		if c.CustomerPhone != "(11) *****-4321" {
			t.Errorf("Expected masked phone, got %s", c.CustomerPhone)
		}
		if c.CustomerEmail != MaskedEmail {
			t.Errorf("Expected masked email, got %s", c.CustomerEmail)
		}
	}

	// status filter
	analysing, err := svc.List(ctx, adminActor, ListFilter{Status: "EM_ANALISE"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(analysing) != 1 {
		t.Errorf("Expected 1 EM_ANALISE claim, got %d", len(analysing))
	}

	// store user without binding is rejected
	if _, err := svc.List(ctx, storeActor(""), ListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for unbound store user, got %v", err)
	}
}

func TestTrackByProtocolOmitsContactData(t *testing.T) {
	db, svc := setupClaimService(t)
	claim := testutil.SeedClaim(t, db, entity.StatusEmAnalise, nil)

	view, err := svc.TrackByProtocol(context.Background(), claim.ProtocolNumber)
	if err != nil {
		t.Fatalf("TrackByProtocol failed: %v", err)
	}
	if view.ProtocolNumber != claim.ProtocolNumber {
		t.Errorf("Unexpected protocol: %s", view.ProtocolNumber)
	}
	if view.Status != entity.StatusEmAnalise {
		t.Errorf("Unexpected status: %s", view.Status)
	}

	if _, err := svc.TrackByProtocol(context.Background(), "HB-19700101-0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown protocol, got %v", err)
	}
}

func TestAddComment(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &store.ID)

	ev, err := svc.AddComment(ctx, storeActor(store.ID), claim.ID, "Peça recebida na loja")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if ev.EventType != entity.EventComment {
		t.Errorf("Expected COMMENT, got %s", ev.EventType)
	}
	if ev.FromStatus != nil || ev.ToStatus != nil {
		t.Errorf("Comment events carry no status fields")
	}

	if _, err := svc.AddComment(ctx, storeActor(store.ID), claim.ID, "  "); err == nil {
		t.Errorf("Expected error for blank comment")
	}
}

func TestLinkStoreStaffOnly(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	if _, err := svc.LinkStore(ctx, storeActor(store.ID), claim.ID, store.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden for store actor, got %v", err)
	}

	linked, err := svc.LinkStore(ctx, adminActor, claim.ID, store.ID)
	if err != nil {
		t.Fatalf("LinkStore failed: %v", err)
	}
	if linked.StoreID == nil || *linked.StoreID != store.ID {
		t.Errorf("Expected claim linked to %s", store.ID)
	}
	if linked.LinkStatus != entity.LinkLinkedManually {
		t.Errorf("Expected LINKED_MANUALLY, got %s", linked.LinkStatus)
	}

	events, _ := svc.History(ctx, adminActor, claim.ID)
	if len(events) != 1 || events[0].EventType != entity.EventComment {
		t.Errorf("Expected one COMMENT event recording the link, got %v", events)
	}

	if _, err := svc.LinkStore(ctx, adminActor, claim.ID, "missing-store"); err == nil {
		t.Errorf("Expected error for unknown store")
	}
}

func TestAllowedTransitions(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, &store.ID)

	targets, err := svc.AllowedTransitions(ctx, storeActor(store.ID), claim.ID)
	if err != nil {
		t.Fatalf("AllowedTransitions failed: %v", err)
	}
	if len(targets) != 1 || targets[0] != entity.StatusEmAnalise {
		t.Errorf("Expected [EM_ANALISE] for store on RECEBIDO, got %v", targets)
	}

	targets, err = svc.AllowedTransitions(ctx, adminActor, claim.ID)
	if err != nil {
		t.Fatalf("AllowedTransitions failed: %v", err)
	}
	if len(targets) != len(entity.AllStatuses)-1 {
		t.Errorf("Expected %d targets for admin, got %d", len(entity.AllStatuses)-1, len(targets))
	}
}

func TestUpdateStatusConcurrentCallsSerialize(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []string{"EM_ANALISE", "AGUARDANDO_LOJA"}

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.UpdateStatus(ctx, adminActor, claim.ID, target, "Transição concorrente")
		}(i, target)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("UpdateStatus %s failed: %v", targets[i], err)
		}
	}

	// both transitions committed, serialized by the row lock: one event
	// each, and the second one chains off the first one's result instead
	// of re-reading the stale pre-transition status
	events, err := svc.History(ctx, adminActor, claim.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected exactly 2 events, got %d", len(events))
	}

	fromRecebido := 0
	for _, ev := range events {
		if ev.FromStatus != nil && *ev.FromStatus == entity.StatusRecebido {
			fromRecebido++
		}
	}
	if fromRecebido != 1 {
		t.Errorf("Expected exactly one transition out of RECEBIDO, got %d", fromRecebido)
	}
	if *events[1].FromStatus != *events[0].ToStatus {
		t.Errorf("Broken audit chain: event 2 from %s, event 1 to %s",
			*events[1].FromStatus, *events[0].ToStatus)
	}

	final, err := svc.GetByID(ctx, adminActor, claim.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if *events[1].ToStatus != final.Status {
		t.Errorf("Final status %s does not match last event target %s", final.Status, *events[1].ToStatus)
	}
}

func TestLinkStoreDoesNotRevertConcurrentTransition(t *testing.T) {
	db, svc := setupClaimService(t)
	ctx := context.Background()
	store := testutil.SeedStore(t, db, "Loja A")
	claim := testutil.SeedClaim(t, db, entity.StatusRecebido, nil)

	start := make(chan struct{})
	var wg sync.WaitGroup
	var statusErr, linkErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, statusErr = svc.UpdateStatus(ctx, adminActor, claim.ID, "EM_ANALISE", "Iniciando análise")
	}()
	go func() {
		defer wg.Done()
		<-start
		_, linkErr = svc.LinkStore(ctx, adminActor, claim.ID, store.ID)
	}()
	close(start)
	wg.Wait()

	if statusErr != nil {
		t.Fatalf("UpdateStatus failed: %v", statusErr)
	}
	if linkErr != nil {
		t.Fatalf("LinkStore failed: %v", linkErr)
	}

	// whichever order the row lock granted, both writes must survive
	final, err := svc.GetByID(ctx, adminActor, claim.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.Status != entity.StatusEmAnalise {
		t.Errorf("Status transition was lost: got %s", final.Status)
	}
	if final.StoreID == nil || *final.StoreID != store.ID {
		t.Errorf("Store link was lost: got %v", final.StoreID)
	}
	if final.LinkStatus != entity.LinkLinkedManually {
		t.Errorf("Expected LINKED_MANUALLY, got %s", final.LinkStatus)
	}

	events, _ := svc.History(ctx, adminActor, claim.ID)
	if len(events) != 2 {
		t.Errorf("Expected 2 events (transition + link), got %d", len(events))
	}
}
