package domain

// User roles.
const (
	RoleCustomer   = "CUSTOMER"
	RoleRestaurant = "RESTAURANT"
)

// Order lifecycle after payment.
const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusOnTheWay  = "ON_THE_WAY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)
