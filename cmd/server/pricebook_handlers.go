package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/pricing"
)

type itemView struct {
	pricebook.Item
	Pricing pricebook.ItemPricing `json:"pricing"`
}

func newItemView(it pricebook.Item) itemView {
	return itemView{Item: it, Pricing: it.Pricing()}
}

func newItemViews(items []pricebook.Item) []itemView {
	views := make([]itemView, 0, len(items))
	for _, it := range items {
		views = append(views, newItemView(it))
	}
	return views
}

type bookView struct {
	Items            []itemView                  `json:"items"`
	BundleDiscounts  []pricing.BundleDiscount    `json:"bundle_discounts"`
	FinancingOptions []pricebook.FinancingOption `json:"financing_options"`
	Incentives       []pricebook.Incentive       `json:"incentives"`
	Settings         pricebook.Settings          `json:"settings"`
}

func (s *server) handlePriceBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.books.Load(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookView{
		Items:            newItemViews(book.Items),
		BundleDiscounts:  book.BundleDiscounts,
		FinancingOptions: book.FinancingOptions,
		Incentives:       book.Incentives,
		Settings:         book.Settings,
	})
}

func (s *server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	kind := pricebook.ItemKind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if kind != "" && !kind.Valid() {
		s.fail(w, r, fmt.Errorf("%w: kind must be tier, addon or plan", errBadRequest))
		return
	}
	items, err := s.books.ListItems(r.Context(), kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemViews(items))
}

func (s *server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	var it pricebook.Item
	if err := decodeJSON(w, r, &it); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.books.CreateItem(r.Context(), it)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemView(created))
}

func (s *server) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var it pricebook.Item
	if err := decodeJSON(w, r, &it); err != nil {
		s.fail(w, r, err)
		return
	}
	it.ID = id
	if err := s.books.UpdateItem(r.Context(), it); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(it))
}

func (s *server) handleItemMargin(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var margin pricing.Margin
	if err := decodeJSON(w, r, &margin); err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.books.UpdateMargin(r.Context(), id, margin)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(it))
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.books.GetSettings(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var settings pricebook.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		s.fail(w, r, err)
		return
	}
	settings.Currency = strings.ToUpper(strings.TrimSpace(settings.Currency))
	if err := s.books.UpdateSettings(r.Context(), settings); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleBundleDiscountsList(w http.ResponseWriter, r *http.Request) {
	discounts, err := s.books.ListBundleDiscounts(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discounts)
}

type bundleDiscountRequest struct {
	DiscountPercent float64 `json:"discount_percent"`
	Badge           string  `json:"badge"`
}

func (s *server) handleBundleDiscountPut(w http.ResponseWriter, r *http.Request) {
	years, err := int64Param(r, "years")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req bundleDiscountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	discount := pricing.BundleDiscount{Years: int(years), DiscountPercent: req.DiscountPercent, Badge: strings.TrimSpace(req.Badge)}
	if err := s.books.PutBundleDiscount(r.Context(), discount); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, discount)
}

func (s *server) handleBundleDiscountDelete(w http.ResponseWriter, r *http.Request) {
	years, err := int64Param(r, "years")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.books.DeleteBundleDiscount(r.Context(), int(years)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleFinancingOptionsList(w http.ResponseWriter, r *http.Request) {
	options, err := s.books.ListFinancingOptions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (s *server) handleFinancingOptionCreate(w http.ResponseWriter, r *http.Request) {
	var option pricebook.FinancingOption
	if err := decodeJSON(w, r, &option); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.books.CreateFinancingOption(r.Context(), option)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleFinancingOptionUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var option pricebook.FinancingOption
	if err := decodeJSON(w, r, &option); err != nil {
		s.fail(w, r, err)
		return
	}
	option.ID = id
	if err := s.books.UpdateFinancingOption(r.Context(), option); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, option)
}

func (s *server) handleIncentivesList(w http.ResponseWriter, r *http.Request) {
	incentives, err := s.books.ListIncentives(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, incentives)
}

func (s *server) handleIncentiveCreate(w http.ResponseWriter, r *http.Request) {
	var inc pricebook.Incentive
	if err := decodeJSON(w, r, &inc); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.books.CreateIncentive(r.Context(), inc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleIncentiveUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var inc pricebook.Incentive
	if err := decodeJSON(w, r, &inc); err != nil {
		s.fail(w, r, err)
		return
	}
	inc.ID = id
	if err := s.books.UpdateIncentive(r.Context(), inc); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}
