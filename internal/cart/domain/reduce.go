package domain

// Command is the tagged set of cart mutations. Apply is a pure function over
// CartState so the whole transition table is testable without any transport
// or storage attached.
type Command interface {
	isCommand()
}

type AddItem struct {
	Product Product
}

type RemoveItem struct {
	ProductID string
}

type SetQuantity struct {
	ProductID string
	Quantity  int32
}

type Clear struct{}

type Toggle struct{}

type SetOpen struct {
	Open bool
}

func (AddItem) isCommand()     {}
func (RemoveItem) isCommand()  {}
func (SetQuantity) isCommand() {}
func (Clear) isCommand()       {}
func (Toggle) isCommand()      {}
func (SetOpen) isCommand()     {}

// Apply returns the next state. The input state is never mutated; the item
// slice is copied before any change. Every command is total: unknown product
// IDs are no-ops, not errors.
func Apply(s CartState, cmd Command) CartState {
	switch c := cmd.(type) {
	case AddItem:
		next := cloneItems(s.Items)
		merged := false
		for i := range next {
			if next[i].Product.ID == c.Product.ID {
				next[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			next = append(next, CartItem{Product: c.Product, Quantity: 1})
		}
		return CartState{Items: next, Open: true}

	case RemoveItem:
		next := make([]CartItem, 0, len(s.Items))
		for _, it := range s.Items {
			if it.Product.ID != c.ProductID {
				next = append(next, it)
			}
		}
		return CartState{Items: next, Open: s.Open}

	case SetQuantity:
		if c.Quantity <= 0 {
			return Apply(s, RemoveItem{ProductID: c.ProductID})
		}
		next := cloneItems(s.Items)
		for i := range next {
			if next[i].Product.ID == c.ProductID {
				next[i].Quantity = c.Quantity
				break
			}
		}
		return CartState{Items: next, Open: s.Open}

	case Clear:
		return CartState{Items: nil, Open: s.Open}

	case Toggle:
		return CartState{Items: s.Items, Open: !s.Open}

	case SetOpen:
		return CartState{Items: s.Items, Open: c.Open}
	}

	return s
}

func cloneItems(items []CartItem) []CartItem {
	next := make([]CartItem, len(items))
	copy(next, items)
	return next
}
