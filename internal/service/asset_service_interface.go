package service

import (
	"context"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/models/common"
)

// AssetServiceInterface defines the operations on SBOM assets.
type AssetServiceInterface interface {
	// CreateAsset creates an asset owned by the seller with the SBOM in the file as its private payload.
	//
	// Parameters:
	//   the path to the SBOM file
	//
	// Returns:
	//   the asset ID
	CreateAsset(ctx context.Context, payloadPath string) (string, error)

	// TransferAsset transfers the asset from the seller to the buyer organization. The buyer agrees on the SBOM in the file.
	//
	// Parameters:
	//   the asset ID
	//   the name of the buyer organization
	//   the path to the SBOM file
	//
	// Returns:
	//   the ID of the "AgreeToTransfer" transaction
	TransferAsset(ctx context.Context, assetID, buyerOrgName, payloadPath string) (string, error)

	// GetTransaction looks up the block of a transaction as seen by the organization. An empty name means the seller.
	//
	// Returns:
	//   the transaction ID and the block ID
	GetTransaction(ctx context.Context, orgName, txID string) (*bcao.TransactionCreationInfo, error)

	// GetAssetRecords lists the local records of the asset. `errorcode.ErrorNotImplemented` is returned if no database is configured.
	GetAssetRecords(ctx context.Context, assetID string) (*common.AssetRecords, error)
}
