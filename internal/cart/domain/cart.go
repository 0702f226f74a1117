package domain

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// Product is the catalog snapshot carried inside a cart line. The cart never
// mutates it; price changes land on the next add, not on existing lines.
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Price       Money             `json:"price"`
	Image       string            `json:"image,omitempty"`
	Category    string            `json:"category,omitempty"`
	Subcategory string            `json:"subcategory,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int32   `json:"quantity"`
}

// CartState is the whole reducible state: the ordered line sequence plus the
// transient drawer flag. Only Items is ever persisted.
type CartState struct {
	Items []CartItem
	Open  bool
}

func (s CartState) TotalItems() int32 {
	var n int32
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

func (s CartState) TotalPrice() Money {
	var total Money
	for _, it := range s.Items {
		if total.Currency == "" {
			total.Currency = it.Product.Price.Currency
		}
		total.Amount += it.Product.Price.Amount * int64(it.Quantity)
	}
	return total
}

func (s CartState) Find(productID string) (CartItem, bool) {
	for _, it := range s.Items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
