package armory

import "github.com/armory/backend/internal/domain/shared"

// Domain errors for the inventory ledger
var (
	ErrInvalidDeliveryStatus = shared.NewDomainError("INVALID_DELIVERY_STATUS", "Delivery status is not valid")
)
