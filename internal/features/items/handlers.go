package items

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/tenantdesk-backend/internal/authz"
	"github.com/yungbote/tenantdesk-backend/internal/data/db"
	"github.com/yungbote/tenantdesk-backend/internal/data/repos/items"
	"github.com/yungbote/tenantdesk-backend/internal/domain/catalog"
	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/mediator"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
	"github.com/yungbote/tenantdesk-backend/internal/validation"
)

const (
	RoleManager       = "Manager"
	PolicyDeleteItems = "items.delete"
	msgSKUTaken       = "SKU already exists"
	msgItemNotFound   = "item not found"
)

type createHandler struct {
	repo items.ItemRepo
	tx   db.TxRunner
	log  *logger.Logger
}

func (h createHandler) Validate(ctx context.Context, req CreateItem) error {
	exists, err := h.repo.SKUExists(ctx, nil, req.TenantID, req.SKU)
	if err != nil {
		return err
	}
	if exists {
		errs := validation.Errors{}
		errs.Add("sku", msgSKUTaken)
		return errs
	}
	return nil
}

func (h createHandler) Handle(ctx context.Context, req CreateItem) (ItemView, error) {
	it := &catalog.Item{
		TenantID:    req.TenantID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         req.SKU,
		Description: strings.TrimSpace(req.Description),
	}
	if p, ok := identity.FromContext(ctx); ok {
		it.CreatedBy = p.Subject()
	}
	var created *catalog.Item
	err := h.tx.InTx(ctx, func(tx *gorm.DB) error {
		exists, err := h.repo.SKUExists(ctx, tx, it.TenantID, it.SKU)
		if err != nil {
			return err
		}
		if exists {
			return items.ErrDuplicateSKU
		}
		created, err = h.repo.Create(ctx, tx, it)
		return err
	})
	if errors.Is(err, items.ErrDuplicateSKU) {
		return ItemView{}, mediator.InvalidField("sku", msgSKUTaken)
	}
	if err != nil {
		return ItemView{}, err
	}
	h.log.Info("item created", "tenant_id", created.TenantID, "item_id", created.ID.String())
	return viewOf(created), nil
}

type getHandler struct {
	repo items.ItemRepo
}

func (h getHandler) Handle(ctx context.Context, req GetItem) (ItemView, error) {
	it, err := h.repo.GetByID(ctx, nil, req.TenantID, req.ID)
	if errors.Is(err, items.ErrNotFound) {
		return ItemView{}, mediator.NotFound(msgItemNotFound)
	}
	if err != nil {
		return ItemView{}, err
	}
	return viewOf(it), nil
}

type listHandler struct {
	repo items.ItemRepo
}

func (h listHandler) Handle(ctx context.Context, req ListItems) ([]ItemView, error) {
	found, err := h.repo.List(ctx, nil, req.TenantID, req.limit())
	if err != nil {
		return nil, err
	}
	out := make([]ItemView, 0, len(found))
	for _, it := range found {
		out = append(out, viewOf(it))
	}
	return out, nil
}

type deleteHandler struct {
	repo items.ItemRepo
	log  *logger.Logger
}

func (h deleteHandler) Handle(ctx context.Context, req DeleteItem) (Deleted, error) {
	err := h.repo.Delete(ctx, nil, req.TenantID, req.ID)
	if errors.Is(err, items.ErrNotFound) {
		return Deleted{}, mediator.NotFound(msgItemNotFound)
	}
	if err != nil {
		return Deleted{}, err
	}
	h.log.Info("item deleted", "tenant_id", req.TenantID, "item_id", req.ID.String())
	return Deleted{ID: req.ID}, nil
}

type Deps struct {
	Items items.ItemRepo
	Tx    db.TxRunner
	Log   *logger.Logger
}

// Register binds every item request and its requirements.
func Register(reg *mediator.Registry, deps Deps) error {
	log := deps.Log.With("feature", "Items")
	repo := deps.Items
	create := createHandler{repo: repo, tx: deps.Tx, log: log}
	if create.tx == nil {
		create.tx = noTx{}
	}
	if err := mediator.Register[CreateItem, ItemView](reg, create,
		mediator.Requires(authz.Roles(RoleManager))); err != nil {
		return err
	}
	if err := mediator.Register[GetItem, ItemView](reg, getHandler{repo: repo},
		mediator.Requires(authz.Authenticated())); err != nil {
		return err
	}
	if err := mediator.Register[ListItems, []ItemView](reg, listHandler{repo: repo},
		mediator.Requires(authz.Authenticated())); err != nil {
		return err
	}
	return mediator.Register[DeleteItem, Deleted](reg, deleteHandler{repo: repo, log: log},
		mediator.Requires(authz.Roles(RoleManager), authz.Policy(PolicyDeleteItems)))
}

// noTx runs fn against the repo's own connection.
type noTx struct{}

func (noTx) InTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }
