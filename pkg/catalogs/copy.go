package catalogs

// Clone returns a deep copy of the card. Ingestion tasks match against
// task-local snapshot copies and never mutate shared memory, so snapshot
// loading clones every document it hands out.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Sets.JA = append([]SetRef(nil), c.Sets.JA...)
	clone.Sets.AE = append([]SetRef(nil), c.Sets.AE...)

	if c.Prices != nil {
		clone.Prices = make(CardPrices, len(c.Prices))
		for market, entries := range c.Prices {
			clone.Prices[market] = append([]PriceEntry(nil), entries...)
		}
	}

	return &clone
}
