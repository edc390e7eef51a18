package repository

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Items        ItemRepository
	Requisitions RequisitionRepository
	Receipts     ReceiptRepository
	Usage        UsageRepository
	Movements    InventoryMovementRepository
	Audit        AuditRepository
}
