package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/iliyamo/restaurant-dashboard/internal/backend"
	"github.com/iliyamo/restaurant-dashboard/internal/cache"
	"github.com/iliyamo/restaurant-dashboard/internal/imaging"
	"github.com/iliyamo/restaurant-dashboard/internal/model"
	"github.com/iliyamo/restaurant-dashboard/internal/mutation"
	"github.com/iliyamo/restaurant-dashboard/internal/notify"
	"github.com/iliyamo/restaurant-dashboard/internal/report"
	"github.com/iliyamo/restaurant-dashboard/internal/repository"
)

// MenuItemService manages dishes, their photos and their modifier links.
type MenuItemService struct {
	repo    *repository.MenuItemRepo
	x       *mutation.Executor[model.MenuItem]
	outcome outcome

	create      mutation.Create[model.MenuItem, model.MenuItemInput]
	update      mutation.Update[model.MenuItem, model.MenuItemPatch]
	remove      mutation.Delete[model.MenuItem]
	upload      mutation.Update[model.MenuItem, ImageFile]
	removeImage mutation.Update[model.MenuItem, struct{}]
}

// ImageFile is a photo as received from the browser.
type ImageFile struct {
	Name string
	Body io.Reader
}

func NewMenuItemService(d Deps) *MenuItemService {
	d = d.withDefaults()
	repo := repository.NewMenuItemRepo(d.Transport)
	s := &MenuItemService{
		repo:    repo,
		x:       newExecutor(d, newCollection(d, cache.MenuItems, repo.List)),
		outcome: newOutcome(d),
	}
	s.create = mutation.Create[model.MenuItem, model.MenuItemInput]{
		Call: func(ctx context.Context, rid string, in model.MenuItemInput) (model.MenuItem, error) {
			if err := validItem(in); err != nil {
				return model.MenuItem{}, err
			}
			return repo.Create(ctx, rid, in)
		},
		Synthesize: func(d mutation.Draft, in model.MenuItemInput) model.MenuItem {
			category := in.Category
			if category == "" {
				category = model.DefaultMenuCategory
			}
			return model.MenuItem{
				ID:           d.LocalID,
				RestaurantID: d.RestaurantID,
				Name:         in.Name,
				Description:  in.Description,
				Price:        in.Price,
				Category:     category,
				Available:    ptrOr(in.Available, true),
				CreatedAt:    d.Now,
				UpdatedAt:    d.Now,
			}
		},
		Messages: mutation.Messages{Success: "Menu item created", Failure: "Failed to create menu item"},
	}
	s.update = mutation.Update[model.MenuItem, model.MenuItemPatch]{
		Call: func(ctx context.Context, rid, id string, p model.MenuItemPatch) (model.MenuItem, error) {
			if p.Name != nil {
				if err := required("name", *p.Name); err != nil {
					return model.MenuItem{}, err
				}
			}
			if err := nonNegative("price", ptrOr(p.Price, 0)); err != nil {
				return model.MenuItem{}, err
			}
			return repo.Update(ctx, rid, id, p)
		},
		Merge:    func(m model.MenuItem, p model.MenuItemPatch) model.MenuItem { return p.Apply(m) },
		Messages: mutation.Messages{Success: "Menu item updated", Failure: "Failed to update menu item"},
	}
	s.remove = mutation.Delete[model.MenuItem]{
		Call: func(ctx context.Context, rid, id string) error {
			return idempotentDelete(repo.Delete(ctx, rid, id))
		},
		Messages: mutation.Messages{Success: "Menu item deleted", Failure: "Failed to delete menu item"},
	}
	// The stored URL is only known once the upload lands, so nothing
	// changes optimistically; the reply replaces the item.
	s.upload = mutation.Update[model.MenuItem, ImageFile]{
		Call: func(ctx context.Context, rid, id string, f ImageFile) (model.MenuItem, error) {
			photo, err := imaging.Process(f.Body)
			if err != nil {
				return model.MenuItem{}, backend.Invalid("file", err)
			}
			if _, err := repo.UploadImage(ctx, rid, id, imaging.Filename(f.Name), photo.MIME, photo.Data); err != nil {
				return model.MenuItem{}, err
			}
			return repo.Get(ctx, rid, id)
		},
		Merge:    func(m model.MenuItem, _ ImageFile) model.MenuItem { return m },
		Messages: mutation.Messages{Success: "Image uploaded", Failure: "Failed to upload image"},
	}
	s.removeImage = mutation.Update[model.MenuItem, struct{}]{
		Call: func(ctx context.Context, rid, id string, _ struct{}) (model.MenuItem, error) {
			if err := repo.DeleteImage(ctx, rid, id); err != nil {
				return model.MenuItem{}, err
			}
			return repo.Get(ctx, rid, id)
		},
		Merge: func(m model.MenuItem, _ struct{}) model.MenuItem {
			m.ImageURL = nil
			return m
		},
		Messages: mutation.Messages{Success: "Image removed", Failure: "Failed to remove image"},
	}
	return s
}

func validItem(in model.MenuItemInput) error {
	return firstErr(required("name", in.Name), nonNegative("price", in.Price))
}

func (s *MenuItemService) List(ctx context.Context, restaurantID string) ([]cache.Entry[model.MenuItem], error) {
	return s.x.Collection().Read(ctx, restaurantID)
}

func (s *MenuItemService) Create(ctx context.Context, restaurantID string, in model.MenuItemInput) (model.MenuItem, error) {
	return s.create.Run(ctx, s.x, restaurantID, in)
}

func (s *MenuItemService) Update(ctx context.Context, restaurantID, id string, p model.MenuItemPatch) (model.MenuItem, error) {
	return s.update.Run(ctx, s.x, restaurantID, id, p)
}

func (s *MenuItemService) Delete(ctx context.Context, restaurantID, id string) error {
	return s.remove.Run(ctx, s.x, restaurantID, id)
}

// UploadImage re-encodes the photo and stores it as the item's image.
func (s *MenuItemService) UploadImage(ctx context.Context, restaurantID, id string, f ImageFile) (model.MenuItem, error) {
	return s.upload.Run(ctx, s.x, restaurantID, id, f)
}

func (s *MenuItemService) DeleteImage(ctx context.Context, restaurantID, id string) (model.MenuItem, error) {
	return s.removeImage.Run(ctx, s.x, restaurantID, id, struct{}{})
}

// Modifiers lists the modifiers linked to an item.  Links are not cached.
func (s *MenuItemService) Modifiers(ctx context.Context, restaurantID, itemID string) ([]model.MenuItemModifier, error) {
	return s.repo.ListModifiers(ctx, restaurantID, itemID)
}

func (s *MenuItemService) LinkModifier(ctx context.Context, restaurantID, itemID string, in model.LinkModifierInput) (model.MenuItemModifier, error) {
	var link model.MenuItemModifier
	err := required("modifier_id", in.ModifierID)
	if err == nil {
		link, err = s.repo.LinkModifier(ctx, restaurantID, itemID, in)
	}
	return link, s.outcome.done(ctx, cache.MenuItems, http.MethodPost, restaurantID, err,
		mutation.Messages{Success: "Modifier linked", Failure: "Failed to link modifier"})
}

func (s *MenuItemService) UnlinkModifier(ctx context.Context, restaurantID, itemID, modifierID string) error {
	err := idempotentDelete(s.repo.UnlinkModifier(ctx, restaurantID, itemID, modifierID))
	return s.outcome.done(ctx, cache.MenuItems, http.MethodDelete, restaurantID, err,
		mutation.Messages{Success: "Modifier unlinked", Failure: "Failed to unlink modifier"})
}

// ImportFailure is a parsed row the backend refused.
type ImportFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Created []model.MenuItem  `json:"created"`
	Skipped []report.RowError `json:"skipped"`
	Failed  []ImportFailure   `json:"failed"`
}

// Import creates one menu item per usable spreadsheet row.  Rows are sent
// one after another, the collection is revalidated once at the end and a
// single summary notification is shown.
func (s *MenuItemService) Import(ctx context.Context, restaurantID string, r io.Reader) (ImportResult, error) {
	var res ImportResult
	items, skipped, err := report.ParseMenuItems(r)
	if err != nil {
		return res, s.outcome.done(ctx, cache.MenuItems, http.MethodPost, restaurantID, backend.Invalid("file", err),
			mutation.Messages{Failure: "Failed to import menu"})
	}
	res.Skipped = skipped
	lastErr := errNothingImported
	for _, in := range items {
		item, err := s.repo.Create(ctx, restaurantID, in)
		if err != nil {
			lastErr = err
			res.Failed = append(res.Failed, ImportFailure{Name: in.Name, Reason: backend.Message(err, "rejected by the server")})
			if backend.Classify(err) == backend.KindNetwork || ctx.Err() != nil {
				break
			}
			continue
		}
		res.Created = append(res.Created, item)
	}
	if len(res.Created) > 0 {
		s.x.Collection().Revalidate(restaurantID)
	}

	if len(res.Created) == 0 {
		return res, s.outcome.done(ctx, cache.MenuItems, http.MethodPost, restaurantID, lastErr,
			mutation.Messages{Failure: "No menu items imported"})
	}
	msg := fmt.Sprintf("Imported %d menu items", len(res.Created))
	sev := notify.Success
	if n := len(res.Skipped) + len(res.Failed); n > 0 {
		msg += fmt.Sprintf(", %d rows not imported", n)
		sev = notify.Warning
	}
	s.outcome.sink.Show(msg, sev)
	return res, nil
}

var errNothingImported = errors.New("no rows imported")
