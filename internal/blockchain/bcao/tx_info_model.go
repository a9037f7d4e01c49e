package bcao

// TransactionCreationInfo contains the info to be returned when a transaction is created successfully.
type TransactionCreationInfo struct {
	TransactionID string `json:"transactionId"`     // Transaction ID
	BlockID       string `json:"blockId,omitempty"` // Block ID
}
