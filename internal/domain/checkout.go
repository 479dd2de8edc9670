package domain

// CheckoutForm holds the contact and shipping fields collected at checkout.
// The binding tags are the single rule set for both the storefront client
// and the order API; see internal/validation for the custom rules.
type CheckoutForm struct {
	Name       string `json:"name" binding:"trimmin=2"`
	LastName   string `json:"lastname" binding:"trimmin=2"`
	Phone      string `json:"phone" binding:"mindigits=10"`
	Email      string `json:"email" binding:"email"`
	Company    string `json:"company" binding:"min=5"`
	Address    string `json:"address" binding:"min=5"`
	Apartment  string `json:"apartment" binding:"min=1"`
	City       string `json:"city" binding:"min=5"`
	Country    string `json:"country" binding:"min=5"`
	PostalCode string `json:"postalCode" binding:"min=3"`
	Notice     string `json:"notice,omitempty"`
}
