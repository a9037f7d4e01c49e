package db

import (
	"gitee.com/czyczk/sbom-asset-transfer/internal/models/common"
	"gitee.com/czyczk/sbom-asset-transfer/internal/models/sqlmodel"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrateLocalDB creates or updates the tables of the local records.
func MigrateLocalDB(db *gorm.DB) error {
	if err := db.AutoMigrate(&sqlmodel.AssetRecord{}, &sqlmodel.TransferRecord{}); err != nil {
		return errors.Wrap(err, "cannot migrate the local database")
	}

	return nil
}

// SaveAssetRecordToLocalDB saves a `common.AssetRecord` into the database, overwriting the row of the same asset ID.
func SaveAssetRecordToLocalDB(record *common.AssetRecord, db *gorm.DB) error {
	dbResult := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}},
		UpdateAll: true,
	}).Create(sqlmodel.NewAssetRecordFromModel(record))
	if dbResult.Error != nil {
		return errors.Wrapf(dbResult.Error, "cannot save the record of asset '%v'", record.AssetID)
	}

	return nil
}

// SaveTransferRecordToLocalDB saves a `common.TransferRecord` into the database.
func SaveTransferRecordToLocalDB(record *common.TransferRecord, db *gorm.DB) error {
	recordDB, err := sqlmodel.NewTransferRecordFromModel(record)
	if err != nil {
		return err
	}

	if dbResult := db.Create(recordDB); dbResult.Error != nil {
		return errors.Wrapf(dbResult.Error, "cannot save the transfer record of asset '%v'", record.AssetID)
	}

	return nil
}

// GetAssetRecordsFromLocalDB reads the creation record and the transfer records of the asset. Transfers are ordered from the oldest.
func GetAssetRecordsFromLocalDB(assetID string, db *gorm.DB) (*common.AssetRecords, error) {
	ret := &common.AssetRecords{Transfers: []common.TransferRecord{}}

	var assetRecordDB sqlmodel.AssetRecord
	dbResult := db.Where("asset_id = ?", assetID).Take(&assetRecordDB)
	if dbResult.Error != nil {
		if errors.Cause(dbResult.Error) != gorm.ErrRecordNotFound {
			return nil, errors.Wrapf(dbResult.Error, "cannot read the record of asset '%v'", assetID)
		}
	} else {
		ret.Creation = assetRecordDB.ToModel()
	}

	var transferRecordsDB []sqlmodel.TransferRecord
	dbResult = db.Where("asset_id = ?", assetID).Order("time_created").Find(&transferRecordsDB)
	if dbResult.Error != nil {
		return nil, errors.Wrapf(dbResult.Error, "cannot read the transfer records of asset '%v'", assetID)
	}

	for i := range transferRecordsDB {
		ret.Transfers = append(ret.Transfers, *transferRecordsDB[i].ToModel())
	}

	if ret.Creation == nil && len(ret.Transfers) == 0 {
		return nil, errorcode.ErrorNotFound
	}

	return ret, nil
}
