package catalogs

import (
	"github.com/sobani/cardvault/pkg/errors"
)

// Condition is the physical condition a shop reports for an item.
type Condition string

// Known conditions.
const (
	ConditionGood    Condition = "Good"
	ConditionScratch Condition = "Scratch"
)

// Status is the sale status a shop reports for an item.
type Status string

// Known statuses. An item going out of stock is a status transition, never a
// removal of the entry.
const (
	StatusForSale Status = "For Sale"
	StatusSoldOut Status = "Sold Out"
)

// PriceEntry is one shop listing observed at a market. Within one market's
// list on a card, ID is unique; it is source-scoped and often derived
// deterministically from normalized listing text.
//
// Name and Comment are transient: they exist only for matching and the
// safety heuristics, and are stripped before persistence.
type PriceEntry struct {
	ID           int       `bson:"id" json:"id"`
	Price        int       `bson:"price" json:"price"`
	Name         string    `bson:"name,omitempty" json:"name,omitempty"`
	SetNumber    string    `bson:"set_number" json:"set_number"`
	Rarity       string    `bson:"rarity" json:"rarity"`
	Condition    Condition `bson:"condition" json:"condition"`
	Status       Status    `bson:"status" json:"status"`
	LastModified int64     `bson:"last_modified" json:"last_modified"`
	Comment      string    `bson:"comment,omitempty" json:"comment,omitempty"`
}

// Stripped returns a copy of the entry with the transient fields cleared,
// ready for persistence.
func (p PriceEntry) Stripped() PriceEntry {
	p.Name = ""
	p.Comment = ""
	return p
}

// Validate checks that an observation carries the fields matching depends
// on. Price zero is allowed here; the update planner treats it as an
// incomplete observation when deciding whether to append.
func (p PriceEntry) Validate() error {
	if p.ID == 0 {
		return errors.NewValidationError("id", p.ID, "missing listing identity")
	}
	if p.Name == "" {
		return errors.NewValidationError("name", p.Name, "missing display name")
	}
	if p.SetNumber == "" {
		return errors.NewValidationError("set_number", p.SetNumber, "missing set number")
	}
	if p.Status != StatusForSale && p.Status != StatusSoldOut {
		return errors.NewValidationError("status", p.Status, "unknown status")
	}
	return nil
}

// CardPrices maps each market to the listings reconciled onto a card.
type CardPrices map[Market][]PriceEntry

// NewCardPrices returns a price map with an empty list for every known
// market.
func NewCardPrices() CardPrices {
	prices := make(CardPrices, len(Markets()))
	for _, m := range Markets() {
		prices[m] = []PriceEntry{}
	}
	return prices
}

// Entry returns the entry with the given id in a market's list, or nil.
func (cp CardPrices) Entry(market Market, id int) *PriceEntry {
	for i := range cp[market] {
		if cp[market][i].ID == id {
			return &cp[market][i]
		}
	}
	return nil
}
