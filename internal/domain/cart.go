package domain

// LineItem is one product at one quantity in a cart
type LineItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unitPrice"` // minor currency units
	ImageRef  string `json:"imageRef,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns quantity × unit price
func (i LineItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Cart holds line items plus totals derived from them.
// Every mutation refolds the totals from Items.
type Cart struct {
	Items         []LineItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalAmount   int64      `json:"totalAmount"`
}

// AddItem merges item into the cart. A line with the same product id has its
// quantity increased; otherwise the item is appended.
func (c *Cart) AddItem(item LineItem) {
	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, item)
	}
	c.Recalculate()
}

// RemoveItem drops the line for productID. Unknown ids are a no-op.
func (c *Cart) RemoveItem(productID string) {
	kept := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.Recalculate()
}

// UpdateQuantity sets the quantity of an existing line. Unknown ids are a
// no-op, and a quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.Recalculate()
}

// Recalculate refolds TotalQuantity and TotalAmount from Items.
func (c *Cart) Recalculate() {
	var quantity int
	var amount int64
	for _, item := range c.Items {
		quantity += item.Quantity
		amount += item.Subtotal()
	}
	c.TotalQuantity = quantity
	c.TotalAmount = amount
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.TotalQuantity = 0
	c.TotalAmount = 0
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Find returns the line for productID
func (c Cart) Find(productID string) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// Clone returns a deep copy so callers can mutate it without touching c.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{
		Items:         items,
		TotalQuantity: c.TotalQuantity,
		TotalAmount:   c.TotalAmount,
	}
}
