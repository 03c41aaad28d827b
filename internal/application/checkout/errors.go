package checkout

import "github.com/armory/backend/internal/domain/shared"

// Checkout validation errors. The codes map onto the API error taxonomy.
var (
	// ErrEmptyCart is returned when the cart has no items
	ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cart must contain at least one item")

	// ErrItemNotFound is returned when a cart item is not in the catalog
	ErrItemNotFound = shared.NewDomainError("ITEM_NOT_FOUND", "Cart references an unknown catalog item")

	// ErrAmountMismatch is returned when the client-displayed total disagrees
	// with the server-side recomputation. Rejected outright, never corrected.
	ErrAmountMismatch = shared.NewDomainError("AMOUNT_MISMATCH", "Claimed total does not match the priced cart")

	// ErrPaymentProvider is returned when the payment processor cannot be reached
	ErrPaymentProvider = shared.NewDomainError("PAYMENT_PROVIDER", "Payment provider is unavailable")
)
