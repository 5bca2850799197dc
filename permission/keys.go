package permission

// Key is a single back-office permission. Keys form a closed enumeration:
// every key the server may grant is declared here and registered in the
// default registry. Unknown wire keys are dropped at the decode boundary.
type Key string

// Customer screens.
const (
	CustomersView   Key = "customers.view"
	CustomersCreate Key = "customers.create"
	CustomersEdit   Key = "customers.edit"
	CustomersDelete Key = "customers.delete"
	CustomersExport Key = "customers.export"
)

// Supplier screens.
const (
	SuppliersView   Key = "suppliers.view"
	SuppliersCreate Key = "suppliers.create"
	SuppliersEdit   Key = "suppliers.edit"
	SuppliersDelete Key = "suppliers.delete"
)

// Sales screens.
const (
	SalesView     Key = "sales.view"
	SalesCreate   Key = "sales.create"
	SalesEdit     Key = "sales.edit"
	SalesDelete   Key = "sales.delete"
	SalesDiscount Key = "sales.discount"
	SalesRefund   Key = "sales.refund"
	SalesExport   Key = "sales.export"
)

// Purchase screens.
const (
	PurchasesView    Key = "purchases.view"
	PurchasesCreate  Key = "purchases.create"
	PurchasesEdit    Key = "purchases.edit"
	PurchasesDelete  Key = "purchases.delete"
	PurchasesApprove Key = "purchases.approve"
)

// Payment screens.
const (
	PaymentsView   Key = "payments.view"
	PaymentsCreate Key = "payments.create"
	PaymentsEdit   Key = "payments.edit"
	PaymentsDelete Key = "payments.delete"
	PaymentsVerify Key = "payments.verify"
)

// Inventory screens.
const (
	InventoryView   Key = "inventory.view"
	InventoryCreate Key = "inventory.create"
	InventoryEdit   Key = "inventory.edit"
	InventoryDelete Key = "inventory.delete"
	InventoryAdjust Key = "inventory.adjust"
)

// Reporting and administration.
const (
	ReportsView    Key = "reports.view"
	ReportsFinance Key = "reports.finance"
	SettingsView   Key = "settings.view"
	SettingsEdit   Key = "settings.edit"
	StaffView      Key = "staff.view"
	StaffManage    Key = "staff.manage"
	SessionsManage Key = "sessions.manage"
)

// Keys returns the full closed enumeration in registration order.
func Keys() []Key {
	return []Key{
		CustomersView, CustomersCreate, CustomersEdit, CustomersDelete, CustomersExport,
		SuppliersView, SuppliersCreate, SuppliersEdit, SuppliersDelete,
		SalesView, SalesCreate, SalesEdit, SalesDelete, SalesDiscount, SalesRefund, SalesExport,
		PurchasesView, PurchasesCreate, PurchasesEdit, PurchasesDelete, PurchasesApprove,
		PaymentsView, PaymentsCreate, PaymentsEdit, PaymentsDelete, PaymentsVerify,
		InventoryView, InventoryCreate, InventoryEdit, InventoryDelete, InventoryAdjust,
		ReportsView, ReportsFinance, SettingsView, SettingsEdit, StaffView, StaffManage,
		SessionsManage,
	}
}
