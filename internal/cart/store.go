// Package cart holds the shopper's in-progress selection on the client,
// independent of any server session. All operations are synchronous
// reducers over local state, flushed to storage after each mutation.
package cart

// Item is one cart line. Price, Image and Stock are snapshots taken when
// the product was added; Stock only bounds Quantity and can go stale.
type Item struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

// Store is a single-threaded cart container over a pluggable Storage.
type Store struct {
	items   []Item
	storage Storage
}

// NewStore loads any previously persisted items from storage.
func NewStore(storage Storage) (*Store, error) {
	items, err := storage.Load()
	if err != nil {
		return nil, err
	}
	return &Store{items: items, storage: storage}, nil
}

// AddItem merges item into the cart. An existing line for the same product
// has its quantity increased; either way the quantity is clamped to the
// stock snapshot, never rejected.
func (s *Store) AddItem(item Item) error {
	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			s.items[i].Quantity = clamp(s.items[i].Quantity+item.Quantity, 0, s.items[i].Stock)
			return s.persist()
		}
	}

	item.Quantity = clamp(item.Quantity, 0, item.Stock)
	s.items = append(s.items, item)
	return s.persist()
}

// RemoveItem deletes the line for id. Removing an absent id is a no-op.
func (s *Store) RemoveItem(id string) error {
	for i := range s.items {
		if s.items[i].ProductID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// UpdateQuantity sets the line's quantity, clamped to [0, stock]. A line
// reduced to zero stays in the cart; only RemoveItem deletes it.
func (s *Store) UpdateQuantity(id string, quantity int) error {
	for i := range s.items {
		if s.items[i].ProductID == id {
			s.items[i].Quantity = clamp(quantity, 0, s.items[i].Stock)
			return s.persist()
		}
	}
	return nil
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.items = []Item{}
	return s.persist()
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems is the sum of all line quantities.
func (s *Store) TotalItems() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of unit price times quantity over all lines.
func (s *Store) TotalPrice() float64 {
	total := 0.0
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (s *Store) persist() error {
	return s.storage.Save(s.items)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
