package auditlog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tenantdesk-backend/internal/audit"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/testutil"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
)

const testPolicies = `
policies:
  audit.read:
    any_role: [Admin]
`

func newMediator(t *testing.T) (*mediator.Mediator, *audit.Store, *identity.PolicySet) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	store := audit.NewStore(db, log)
	reg := mediator.NewRegistry()
	if err := Register(reg, store); err != nil {
		t.Fatalf("Register: %v", err)
	}
	ps, err := identity.LoadPolicies(strings.NewReader(testPolicies))
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	m := mediator.New(reg, mediator.WithLogger(log), mediator.WithIdentity(identity.Resolver))
	return m, store, ps
}

func asUser(tenant string, ps *identity.PolicySet, roles ...string) context.Context {
	p := identity.NewPrincipal("user-1", identity.InTenants(tenant), identity.WithRoles(roles...), identity.WithPolicies(ps))
	return identity.WithPrincipal(context.Background(), p)
}

func TestListEntries(t *testing.T) {
	m, store, ps := newMediator(t)
	tenant := "tenant-" + uuid.NewString()
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	seed := []audit.Entry{
		{CorrelationID: "a", RequestType: "items.CreateItem", TenantID: tenant, Code: "success", OccurredAt: base},
		{CorrelationID: "b", RequestType: "items.DeleteItem", TenantID: tenant, Code: "forbidden", OccurredAt: base.Add(time.Minute)},
		{CorrelationID: "c", RequestType: "items.GetItem", TenantID: "other-" + tenant, Code: "success", OccurredAt: base.Add(2 * time.Minute)},
	}
	for _, e := range seed {
		if err := store.Record(context.Background(), e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	ctx := asUser(tenant, ps, "Admin")

	res := mediator.Send[[]EntryView](ctx, m, ListEntries{TenantID: tenant})
	if !res.OK() {
		t.Fatalf("ListEntries: code=%s message=%s", res.Code(), res.Message())
	}
	got := res.Data()
	if len(got) != 2 || got[0].CorrelationID != "b" || got[1].CorrelationID != "a" {
		t.Fatalf("ListEntries: unexpected entries %+v", got)
	}

	res = mediator.Send[[]EntryView](ctx, m, ListEntries{TenantID: tenant, Code: "success"})
	if !res.OK() || len(res.Data()) != 1 || res.Data()[0].RequestType != "items.CreateItem" {
		t.Fatalf("ListEntries(code): code=%s data=%+v", res.Code(), res.Data())
	}
}

func TestListEntriesAuthorizationAndValidation(t *testing.T) {
	m, _, ps := newMediator(t)
	tenant := "tenant-" + uuid.NewString()

	cases := []struct {
		name string
		ctx  context.Context
		req  ListEntries
		want mediator.Code
	}{
		{"anonymous", context.Background(), ListEntries{TenantID: tenant}, mediator.CodeUnauthorized},
		{"missing policy", asUser(tenant, ps, "Manager"), ListEntries{TenantID: tenant}, mediator.CodeForbidden},
		{"foreign tenant", asUser(tenant, ps, "Admin"), ListEntries{TenantID: "elsewhere"}, mediator.CodeForbidden},
		{"unknown code", asUser(tenant, ps, "Admin"), ListEntries{TenantID: tenant, Code: "teapot"}, mediator.CodeValidationError},
		{"limit too large", asUser(tenant, ps, "Admin"), ListEntries{TenantID: tenant, Limit: maxLimit + 1}, mediator.CodeValidationError},
	}
	for _, tc := range cases {
		res := mediator.Send[[]EntryView](tc.ctx, m, tc.req)
		if res.Code() != tc.want {
			t.Fatalf("%s: code=%s want=%s", tc.name, res.Code(), tc.want)
		}
	}
}
