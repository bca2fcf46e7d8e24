package items

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tenantdesk-backend/internal/cache"
	dbpkg "github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/items"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/testutil"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/mediator/behaviors"
)

const testPolicies = `
policies:
  items.delete:
    any_role: [Manager]
    claims:
      department: inventory
`

type fixture struct {
	m      *mediator.Mediator
	store  *cache.Memory
	tenant string
	ps     *identity.PolicySet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	reg := mediator.NewRegistry()
	if err := Register(reg, Deps{Items: items.NewItemRepo(db, log), Tx: dbpkg.NewTxRunner(db), Log: log}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ps, err := identity.LoadPolicies(strings.NewReader(testPolicies))
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	store := cache.NewMemory()
	m := mediator.New(reg,
		mediator.WithLogger(log),
		mediator.WithIdentity(identity.Resolver),
		mediator.WithInner(behaviors.NewCaching(store, log)),
	)
	return &fixture{m: m, store: store, tenant: "tenant-" + uuid.NewString(), ps: ps}
}

func (f *fixture) as(roles []string, claims map[string]string) context.Context {
	p := identity.NewPrincipal("user-1",
		identity.InTenants(f.tenant),
		identity.WithRoles(roles...),
		identity.WithClaims(claims),
		identity.WithPolicies(f.ps),
	)
	return identity.WithPrincipal(context.Background(), p)
}

func (f *fixture) manager() context.Context {
	return f.as([]string{RoleManager}, map[string]string{"department": "inventory"})
}

func TestCreateGetListDelete(t *testing.T) {
	f := newFixture(t)
	ctx := f.manager()

	created := mediator.Send[ItemView](ctx, f.m, CreateItem{TenantID: f.tenant, Name: " Widget ", SKU: "WID-1", Description: "blue"})
	if !created.OK() {
		t.Fatalf("CreateItem: code=%s message=%s details=%v", created.Code(), created.Message(), created.Details())
	}
	view := created.Data()
	if view.Name != "Widget" || view.SKU != "WID-1" || view.CreatedBy != "user-1" || view.TenantID != f.tenant {
		t.Fatalf("CreateItem: unexpected view %+v", view)
	}

	got := mediator.Send[ItemView](ctx, f.m, GetItem{TenantID: f.tenant, ID: view.ID})
	if !got.OK() || got.Data().ID != view.ID {
		t.Fatalf("GetItem: code=%s data=%+v", got.Code(), got.Data())
	}

	listed := mediator.Send[[]ItemView](ctx, f.m, ListItems{TenantID: f.tenant})
	if !listed.OK() || len(listed.Data()) != 1 {
		t.Fatalf("ListItems: code=%s len=%d", listed.Code(), len(listed.Data()))
	}

	deleted := mediator.Send[Deleted](ctx, f.m, DeleteItem{TenantID: f.tenant, ID: view.ID})
	if !deleted.OK() || deleted.Data().ID != view.ID {
		t.Fatalf("DeleteItem: code=%s message=%s", deleted.Code(), deleted.Message())
	}

	// Both cached reads were invalidated by the delete.
	if keys := f.store.Keys(); len(keys) != 0 {
		t.Fatalf("DeleteItem: cache still holds %v", keys)
	}
	missing := mediator.Send[ItemView](ctx, f.m, GetItem{TenantID: f.tenant, ID: view.ID})
	if missing.Code() != mediator.CodeNotFound || missing.Message() != "item not found" {
		t.Fatalf("GetItem after delete: code=%s message=%s", missing.Code(), missing.Message())
	}
	again := mediator.Send[Deleted](ctx, f.m, DeleteItem{TenantID: f.tenant, ID: view.ID})
	if again.Code() != mediator.CodeNotFound {
		t.Fatalf("DeleteItem twice: code=%s", again.Code())
	}
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	res := mediator.Send[ItemView](f.manager(), f.m, CreateItem{TenantID: f.tenant, SKU: "lower case"})
	if res.Code() != mediator.CodeValidationError {
		t.Fatalf("CreateItem: code=%s", res.Code())
	}
	d := res.Details()
	if len(d["name"]) != 1 || d["name"][0] != "Name is required" {
		t.Fatalf("CreateItem: name details=%v", d["name"])
	}
	if len(d["sku"]) != 1 || d["sku"][0] != "SKU must be uppercase letters, digits or dashes" {
		t.Fatalf("CreateItem: sku details=%v", d["sku"])
	}
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := f.manager()
	first := mediator.Send[ItemView](ctx, f.m, CreateItem{TenantID: f.tenant, Name: "A", SKU: "DUP-1"})
	if !first.OK() {
		t.Fatalf("CreateItem: code=%s", first.Code())
	}
	second := mediator.Send[ItemView](ctx, f.m, CreateItem{TenantID: f.tenant, Name: "B", SKU: "DUP-1"})
	if second.Code() != mediator.CodeValidationError {
		t.Fatalf("CreateItem duplicate: code=%s", second.Code())
	}
	if msgs := second.Details()["sku"]; len(msgs) != 1 || msgs[0] != msgSKUTaken {
		t.Fatalf("CreateItem duplicate: details=%v", second.Details())
	}
}

func TestCreateItemAuthorization(t *testing.T) {
	f := newFixture(t)
	req := CreateItem{TenantID: f.tenant, Name: "A", SKU: "A-1"}

	if res := mediator.Send[ItemView](context.Background(), f.m, req); res.Code() != mediator.CodeUnauthorized {
		t.Fatalf("anonymous: code=%s", res.Code())
	}
	if res := mediator.Send[ItemView](f.as([]string{"Clerk"}, nil), f.m, req); res.Code() != mediator.CodeForbidden {
		t.Fatalf("clerk: code=%s", res.Code())
	}
	foreign := req
	foreign.TenantID = "someone-else"
	if res := mediator.Send[ItemView](f.manager(), f.m, foreign); res.Code() != mediator.CodeForbidden {
		t.Fatalf("foreign tenant: code=%s", res.Code())
	}
}

func TestDeleteItemRequiresPolicy(t *testing.T) {
	f := newFixture(t)
	created := mediator.Send[ItemView](f.manager(), f.m, CreateItem{TenantID: f.tenant, Name: "A", SKU: "A-1"})
	if !created.OK() {
		t.Fatalf("CreateItem: code=%s", created.Code())
	}
	noClaim := f.as([]string{RoleManager}, nil)
	res := mediator.Send[Deleted](noClaim, f.m, DeleteItem{TenantID: f.tenant, ID: created.Data().ID})
	if res.Code() != mediator.CodeForbidden {
		t.Fatalf("DeleteItem without claim: code=%s", res.Code())
	}
}

func TestListItemsLimit(t *testing.T) {
	f := newFixture(t)
	res := mediator.Send[[]ItemView](f.manager(), f.m, ListItems{TenantID: f.tenant, Limit: 500})
	if res.Code() != mediator.CodeValidationError || len(res.Details()["limit"]) != 1 {
		t.Fatalf("ListItems: code=%s details=%v", res.Code(), res.Details())
	}
	if (ListItems{}).CacheKey() != "limit=50" {
		t.Fatalf("CacheKey: default limit not applied")
	}
}

func TestGetItemRequiresID(t *testing.T) {
	f := newFixture(t)
	res := mediator.Send[ItemView](f.manager(), f.m, GetItem{TenantID: f.tenant})
	if res.Code() != mediator.CodeValidationError || len(res.Details()["id"]) != 1 {
		t.Fatalf("GetItem: code=%s details=%v", res.Code(), res.Details())
	}
}
