package common

import "time"

// AssetRecord is the local audit entry written after an asset is created by this client.
type AssetRecord struct {
	AssetID         string    `json:"assetID"`         // Asset ID on the ledger
	OrgName         string    `json:"orgName"`         // Creating organization
	Hash            string    `json:"hash"`            // Digest of the compact payload
	DigestAlgorithm string    `json:"digestAlgorithm"` // Algorithm of `Hash`
	TransactionID   string    `json:"transactionId"`   // ID of the "CreateAsset" transaction
	PayloadCID      string    `json:"payloadCID"`      // CID of the archived payload. Empty if not archived.
	TimeCreated     time.Time `json:"timeCreated"`
}

// TransferRecord is the local audit entry written after an asset transfer.
type TransferRecord struct {
	ID            string    `json:"id"`            // Snowflake ID
	AssetID       string    `json:"assetID"`       // Asset ID on the ledger
	SellerOrgName string    `json:"sellerOrgName"` // Organization of the owner before the transfer
	BuyerOrgName  string    `json:"buyerOrgName"`  // Organization of the owner after the transfer
	TransactionID string    `json:"transactionId"` // ID of the "AgreeToTransfer" transaction
	PayloadCID    string    `json:"payloadCID"`    // CID of the archived payload. Empty if not archived.
	IsVerified    bool      `json:"isVerified"`    // Whether every verification check passed
	TimeCreated   time.Time `json:"timeCreated"`
}

// AssetRecords collects the local entries of an asset. `Creation` is nil if the asset was created elsewhere.
type AssetRecords struct {
	Creation  *AssetRecord     `json:"creation"`
	Transfers []TransferRecord `json:"transfers"`
}
