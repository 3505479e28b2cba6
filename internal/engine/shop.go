package engine

import (
	"context"

	"eduquest/internal/catalog"
)

const (
	EffectXPBoost      = "xp_boost"
	EffectFocusRestore = "focus_restore"
	EffectQuizHint     = "quiz_hint"
)

type ShopEntry struct {
	catalog.ShopItem
	// Owned is set for one-time unlocks the player already has.
	Owned      bool
	Quantity   int
	Affordable bool
}

type UseResult struct {
	ItemID    string
	Effect    string
	Remaining int
}

// Shop lists every item with the player's ownership and whether they can
// afford it.
func (s *Service) Shop() []ShopEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopEntries(s.cat.Items)
}

// LimitedOffers lists the shop items currently on limited offer.
func (s *Service) LimitedOffers() []ShopEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopEntries(s.cat.LimitedOffers())
}

func (s *Service) shopEntries(items []catalog.ShopItem) []ShopEntry {
	out := make([]ShopEntry, 0, len(items))
	for _, it := range items {
		out = append(out, ShopEntry{
			ShopItem:   it,
			Owned:      s.ownsUnlock(it),
			Quantity:   s.st.Inventory.Quantity(it.ID),
			Affordable: s.st.Profile.Gold >= it.Cost,
		})
	}
	return out
}

func (s *Service) ownsUnlock(it catalog.ShopItem) bool {
	switch it.Type {
	case catalog.ItemAvatarGear:
		return s.st.Inventory.HasPart(it.Category, it.AssetID)
	case catalog.ItemTheme:
		return s.st.Inventory.HasTheme(it.AssetID)
	default:
		return false
	}
}

// PurchaseItem exchanges gold for an item. Avatar gear and themes unlock
// once; everything else stacks in the inventory.
func (s *Service) PurchaseItem(ctx context.Context, itemID string) error {
	const op = "purchase"
	s.lock()
	defer s.unlock()

	it, ok := s.cat.ShopItem(itemID)
	if !ok {
		return s.fail(notFound(op, "Item %q not found.", itemID))
	}
	if it.Type.IsUnlock() && s.ownsUnlock(it) {
		return s.fail(precondition(op, "You already own %s.", it.Name))
	}
	if err := s.debit(op, it.Cost); err != nil {
		return s.fail(err)
	}

	inv := &s.st.Inventory
	switch it.Type {
	case catalog.ItemAvatarGear:
		inv.UnlockedAvatarParts[it.Category] = append(inv.UnlockedAvatarParts[it.Category], it.AssetID)
	case catalog.ItemTheme:
		inv.UnlockedThemes = append(inv.UnlockedThemes, it.AssetID)
	default:
		s.addItem(it.ID, 1)
	}
	s.touch(KeyInventory)
	s.notify(SeveritySuccess, "Purchased %s!", it.Name)
	s.evaluateAchievements()
	s.log.Debug("item purchased", "item", it.ID, "gold", s.st.Profile.Gold)
	s.commit(ctx)
	return nil
}

// addItem changes an item's stack by delta, dropping the entry at zero.
func (s *Service) addItem(id string, delta int) int {
	inv := &s.st.Inventory
	for i := range inv.Items {
		if inv.Items[i].ID != id {
			continue
		}
		inv.Items[i].Quantity += delta
		q := inv.Items[i].Quantity
		if q <= 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return 0
		}
		return q
	}
	if delta <= 0 {
		return 0
	}
	inv.Items = append(inv.Items, InventoryItem{ID: id, Quantity: delta})
	return delta
}

// UseItem consumes one of an item and applies its effect. An item whose
// effect is not recognised is refused and kept.
func (s *Service) UseItem(ctx context.Context, itemID string) (UseResult, error) {
	const op = "use item"
	s.lock()
	defer s.unlock()

	it, ok := s.cat.ShopItem(itemID)
	if !ok {
		return UseResult{}, s.fail(notFound(op, "Item %q not found.", itemID))
	}
	if s.st.Inventory.Quantity(it.ID) <= 0 {
		return UseResult{}, s.fail(precondition(op, "You don't have any %s.", it.Name))
	}
	if it.Effect == nil {
		return UseResult{}, s.fail(precondition(op, "%s cannot be used.", it.Name))
	}

	switch it.Effect.Type {
	case EffectXPBoost:
		s.notify(SeverityInfo, "%s used! Your next quest grants +%g%% XP.", it.Name, it.Effect.Value*100)
	case EffectFocusRestore:
		p := &s.st.Profile
		p.Focus = clamp(p.Focus+it.Effect.Value, 0, s.rules.FocusMax)
		s.touch(KeyPlayer)
		s.notify(SeveritySuccess, "%s used! Focus is now %g.", it.Name, p.Focus)
	case EffectQuizHint:
		s.notify(SeverityInfo, "%s used! A hint will be shown in your next quiz.", it.Name)
	default:
		return UseResult{}, s.fail(precondition(op, "%s has an unknown effect (%s).", it.Name, it.Effect.Type))
	}

	left := s.addItem(it.ID, -1)
	s.touch(KeyInventory)
	s.log.Debug("item used", "item", it.ID, "effect", it.Effect.Type, "remaining", left)
	s.commit(ctx)
	return UseResult{ItemID: it.ID, Effect: it.Effect.Type, Remaining: left}, nil
}
