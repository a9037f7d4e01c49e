package bcao

import (
	"context"
	"encoding/json"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/utils/timingutils"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/models/asset"
	"github.com/pkg/errors"
)

// Chaincode functions of the private asset transfer chaincode
const (
	FcnCreateAsset             = "CreateAsset"
	FcnReadAsset               = "ReadAsset"
	FcnReadAssetPrivateDetails = "ReadAssetPrivateDetails"
	FcnAgreeToTransfer         = "AgreeToTransfer"
	FcnReadTransferAgreement   = "ReadTransferAgreement"
	FcnTransferAsset           = "TransferAsset"
)

// Transient map keys expected by the chaincode
const (
	TransientKeyAssetProperties = "asset_properties"
	TransientKeyAssetValue      = "asset_value"
	TransientKeyAssetOwner      = "asset_owner"
)

// AssetBCAO invokes the asset chaincode through a session. Every call is bounded by the call timeout.
type AssetBCAO struct {
	session     ISession
	callTimeout time.Duration
}

// NewAssetBCAO wraps a session. A zero timeout leaves the calls bounded only by the caller's context.
func NewAssetBCAO(session ISession, callTimeout time.Duration) *AssetBCAO {
	return &AssetBCAO{
		session:     session,
		callTimeout: callTimeout,
	}
}

func (o *AssetBCAO) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, o.callTimeout)
}

func (o *AssetBCAO) submitWithTransient(ctx context.Context, fcn, transientKey string, transientValue interface{}) (*TransactionCreationInfo, error) {
	valueBytes, err := json.Marshal(transientValue)
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize the transient data")
	}

	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	defer timingutils.GetDeferrableTimingLogger("Submit " + fcn)()

	info, err := o.session.Submit(callCtx, &SubmitRequest{
		Fcn:          fcn,
		TransientMap: map[string][]byte{transientKey: valueBytes},
	})
	if err != nil {
		return nil, GetClassifiedError(fcn, err)
	}

	return info, nil
}

func (o *AssetBCAO) evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error) {
	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	defer timingutils.GetDeferrableTimingLogger("Evaluate " + fcn)()

	payload, err := o.session.Evaluate(callCtx, fcn, args...)
	if err != nil {
		return nil, GetClassifiedError(fcn, err)
	}

	return payload, nil
}

// CreateAsset submits "CreateAsset" with the asset properties as private data.
func (o *AssetBCAO) CreateAsset(ctx context.Context, properties *asset.AssetProperties) (*TransactionCreationInfo, error) {
	return o.submitWithTransient(ctx, FcnCreateAsset, TransientKeyAssetProperties, properties)
}

// ReadAssetPrivateDetails reads the private details of the asset from the collection. An empty result means the collection has no such asset.
func (o *AssetBCAO) ReadAssetPrivateDetails(ctx context.Context, collection, assetID string) ([]byte, error) {
	return o.evaluate(ctx, FcnReadAssetPrivateDetails, collection, assetID)
}

// ReadAsset reads the public part of the asset.
func (o *AssetBCAO) ReadAsset(ctx context.Context, assetID string) ([]byte, error) {
	return o.evaluate(ctx, FcnReadAsset, assetID)
}

// AgreeToTransfer submits "AgreeToTransfer" as the buyer with the agreed private payload.
func (o *AssetBCAO) AgreeToTransfer(ctx context.Context, value *asset.AssetValue) (*TransactionCreationInfo, error) {
	return o.submitWithTransient(ctx, FcnAgreeToTransfer, TransientKeyAssetValue, value)
}

// ReadTransferAgreement reads the agreement set by the buyer. Any member may read it.
func (o *AssetBCAO) ReadTransferAgreement(ctx context.Context, assetID string) ([]byte, error) {
	return o.evaluate(ctx, FcnReadTransferAgreement, assetID)
}

// TransferAsset submits "TransferAsset" as the owner, handing the asset to the buyer's MSP.
func (o *AssetBCAO) TransferAsset(ctx context.Context, owner *asset.AssetOwner) (*TransactionCreationInfo, error) {
	return o.submitWithTransient(ctx, FcnTransferAsset, TransientKeyAssetOwner, owner)
}

// QueryTransaction finds the block of a committed transaction.
func (o *AssetBCAO) QueryTransaction(ctx context.Context, txID string) (*TransactionCreationInfo, error) {
	callCtx, cancel := o.callContext(ctx)
	defer cancel()
	defer timingutils.GetDeferrableTimingLogger("Query block by transaction ID")()

	blockID, err := o.session.QueryBlockID(callCtx, txID)
	if err != nil {
		return nil, GetClassifiedError("QueryBlockByTxID", err)
	}

	return &TransactionCreationInfo{
		TransactionID: txID,
		BlockID:       blockID,
	}, nil
}
