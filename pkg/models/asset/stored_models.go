package asset

// ObjectTypeValuableAsset is the object type tag of the assets created by this client.
const ObjectTypeValuableAsset = "ValuableAsset"

// AssetProperties is the transient payload of "CreateAsset". The field order is the order in which the fields are serialized.
type AssetProperties struct {
	ObjectType string `json:"objectType"` // Type tag, always `ObjectTypeValuableAsset`
	AssetID    string `json:"assetID"`    // Asset ID, "asset" followed by a number in [1, 1000]
	Hash       string `json:"hash"`       // Hex digest of the compact SBOM
	Time       string `json:"time"`       // Human-readable creation time
	SBOM       string `json:"sbom"`       // The compact SBOM JSON
}

// Asset is the public part of an asset as returned by "ReadAsset".
type Asset struct {
	ObjectType     string `json:"objectType"`
	AssetID        string `json:"assetID"`
	Hash           string `json:"hash,omitempty"`
	Time           string `json:"time,omitempty"`
	Owner          string `json:"owner"`                    // The client identity of the owner. Contains the user ID somewhere inside.
	AppraisedValue *int   `json:"appraisedValue,omitempty"` // Only present if the chaincode records it
}

// AssetPrivateDetails is the private part of an asset stored in an organization's private collection, as returned by "ReadAssetPrivateDetails".
type AssetPrivateDetails struct {
	AssetID        string `json:"assetID"`
	SBOM           string `json:"sbom"`
	AppraisedValue *int   `json:"appraisedValue,omitempty"`
}

// AssetValue is the transient payload of "AgreeToTransfer". The buyer agrees on the same private payload as the owner holds.
type AssetValue struct {
	AssetID string `json:"assetID"`
	SBOM    string `json:"sbom"`
}

// AssetOwner is the transient payload of "TransferAsset".
type AssetOwner struct {
	AssetID  string `json:"assetID"`
	BuyerMSP string `json:"buyerMSP"`
}

// TransferAgreement is what "ReadTransferAgreement" returns.
type TransferAgreement struct {
	AssetID string `json:"assetID"`
	BuyerID string `json:"buyerID"`
}
