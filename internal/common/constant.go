package common

// Roles a profile can hold. Superadmin is granted only through the
// configured allow-list during onboarding.
const (
	RoleUser       = "user"
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Order statuses shown in the order form.
const (
	OrderStatusAwaiting     = "Awaiting"
	OrderStatusInProgress   = "In progress"
	OrderStatusSuspectedBan = "Suspected ban"
	OrderStatusFinished     = "Finished"
)

// OrderStatuses lists the statuses in display order.
var OrderStatuses = []string{
	OrderStatusAwaiting,
	OrderStatusInProgress,
	OrderStatusSuspectedBan,
	OrderStatusFinished,
}

// ServiceTypes and Platforms are the catalog values offered by the order form.
var (
	ServiceTypes = []string{"camuflagem dark meter", "ranked mp do bo6", "ranked warzone", "bot lobby"}
	Platforms    = []string{"PlayStation", "Steam", "Battle Net", "Xbox"}
)

// Currencies accepted for order and booster values.
var Currencies = []string{"BRL", "USD"}

// TenantStatusActive marks a tenant counted by billing.
const TenantStatusActive = "active"

// SubscriptionStatusActive marks a billed subscription.
const SubscriptionStatusActive = "active"
