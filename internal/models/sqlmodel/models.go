package sqlmodel

import (
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/models/common"
	"github.com/pkg/errors"
)

// AssetRecord defines the table `asset_records`. Asset IDs are reused across runs of the network, so a newer creation overwrites the row.
type AssetRecord struct {
	AssetID         string    `gorm:"type:VARCHAR(64);primaryKey"`
	OrgName         string    `gorm:"type:VARCHAR(64) NOT NULL"`
	Hash            string    `gorm:"type:VARCHAR(128) NOT NULL"`
	DigestAlgorithm string    `gorm:"type:VARCHAR(16) NOT NULL"`
	TransactionID   string    `gorm:"type:VARCHAR(128) NOT NULL"`
	PayloadCID      string    `gorm:"type:VARCHAR(128)"`
	TimeCreated     time.Time `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TransferRecord defines the table `transfer_records`. An asset has many transfers.
type TransferRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false"`
	AssetID       string    `gorm:"type:VARCHAR(64) NOT NULL;index"`
	SellerOrgName string    `gorm:"type:VARCHAR(64) NOT NULL"`
	BuyerOrgName  string    `gorm:"type:VARCHAR(64) NOT NULL"`
	TransactionID string    `gorm:"type:VARCHAR(128) NOT NULL"`
	PayloadCID    string    `gorm:"type:VARCHAR(128)"`
	IsVerified    bool      `gorm:"not null"`
	TimeCreated   time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

// NewAssetRecordFromModel converts a `common.AssetRecord` into its database object.
func NewAssetRecordFromModel(model *common.AssetRecord) *AssetRecord {
	return &AssetRecord{
		AssetID:         model.AssetID,
		OrgName:         model.OrgName,
		Hash:            model.Hash,
		DigestAlgorithm: model.DigestAlgorithm,
		TransactionID:   model.TransactionID,
		PayloadCID:      model.PayloadCID,
		TimeCreated:     model.TimeCreated,
	}
}

// ToModel converts the database object back into a `common.AssetRecord`.
func (r *AssetRecord) ToModel() *common.AssetRecord {
	return &common.AssetRecord{
		AssetID:         r.AssetID,
		OrgName:         r.OrgName,
		Hash:            r.Hash,
		DigestAlgorithm: r.DigestAlgorithm,
		TransactionID:   r.TransactionID,
		PayloadCID:      r.PayloadCID,
		TimeCreated:     r.TimeCreated,
	}
}

// NewTransferRecordFromModel converts a `common.TransferRecord` into its database object. The ID must be a snowflake ID.
func NewTransferRecordFromModel(model *common.TransferRecord) (*TransferRecord, error) {
	id, err := parseSnowflakeStringToInt64(model.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot convert the transfer record into a database object: id: %v", model.ID)
	}

	return &TransferRecord{
		ID:            id,
		AssetID:       model.AssetID,
		SellerOrgName: model.SellerOrgName,
		BuyerOrgName:  model.BuyerOrgName,
		TransactionID: model.TransactionID,
		PayloadCID:    model.PayloadCID,
		IsVerified:    model.IsVerified,
		TimeCreated:   model.TimeCreated,
	}, nil
}

// ToModel converts the database object back into a `common.TransferRecord`.
func (r *TransferRecord) ToModel() *common.TransferRecord {
	return &common.TransferRecord{
		ID:            parseInt64ToSnowflakeString(r.ID),
		AssetID:       r.AssetID,
		SellerOrgName: r.SellerOrgName,
		BuyerOrgName:  r.BuyerOrgName,
		TransactionID: r.TransactionID,
		PayloadCID:    r.PayloadCID,
		IsVerified:    r.IsVerified,
		TimeCreated:   r.TimeCreated,
	}
}
