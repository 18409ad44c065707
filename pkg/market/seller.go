package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FindItem returns the inventory item with the given id.
func (s *Seller) FindItem(itemID int) (*Item, bool) {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i], true
		}
	}
	return nil, false
}

// AddItem appends an item to the inventory.
// Item ids are unique per seller and quantity/price must not be negative.
func (s *Seller) AddItem(item Item) error {
	if item.Quantity < 0 || item.Price.IsNegative() {
		return ErrInvalidItem
	}
	if _, ok := s.FindItem(item.ID); ok {
		return fmt.Errorf("item %d: %w", item.ID, ErrDuplicateItem)
	}
	s.Items = append(s.Items, item)
	return nil
}

// RemoveItem deletes the item with the given id, keeping the order of the rest.
func (s *Seller) RemoveItem(itemID int) error {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateItem replaces name, quantity and price of an existing item.
// An unknown id is silently ignored and reports false. Negative quantity or
// price is rejected with ErrInvalidItem and leaves the item untouched.
func (s *Seller) UpdateItem(itemID int, name string, quantity int, price decimal.Decimal) (bool, error) {
	if quantity < 0 || price.IsNegative() {
		return false, ErrInvalidItem
	}
	item, ok := s.FindItem(itemID)
	if !ok {
		return false, nil
	}
	*item = Item{ID: itemID, Name: name, Quantity: quantity, Price: price}
	return true, nil
}
