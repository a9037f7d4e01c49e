package bcao

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/models/asset"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	mock.Mock
}

func (s *mockSession) Evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error) {
	ret := s.Called(fcn, args)
	payload, _ := ret.Get(0).([]byte)
	return payload, ret.Error(1)
}

func (s *mockSession) Submit(ctx context.Context, request *SubmitRequest) (*TransactionCreationInfo, error) {
	ret := s.Called(request)
	info, _ := ret.Get(0).(*TransactionCreationInfo)
	return info, ret.Error(1)
}

func (s *mockSession) QueryBlockID(ctx context.Context, txID string) (string, error) {
	ret := s.Called(txID)
	return ret.String(0), ret.Error(1)
}

func (s *mockSession) Close() error {
	return s.Called().Error(0)
}

func TestCreateAssetSendsPropertiesAsTransient(t *testing.T) {
	session := &mockSession{}
	session.On("Submit", mock.MatchedBy(func(req *SubmitRequest) bool {
		if req.Fcn != FcnCreateAsset || len(req.Args) != 0 {
			return false
		}

		var props asset.AssetProperties
		if err := json.Unmarshal(req.TransientMap[TransientKeyAssetProperties], &props); err != nil {
			return false
		}
		return props.AssetID == "asset7" && props.ObjectType == asset.ObjectTypeValuableAsset
	})).Return(&TransactionCreationInfo{TransactionID: "tx1"}, nil)

	o := NewAssetBCAO(session, time.Second)
	info, err := o.CreateAsset(context.Background(), &asset.AssetProperties{
		ObjectType: asset.ObjectTypeValuableAsset,
		AssetID:    "asset7",
		Hash:       "abc",
		SBOM:       `{"a":1}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "tx1", info.TransactionID)
	session.AssertExpectations(t)
}

func TestTransientPayloadKeyOrder(t *testing.T) {
	session := &mockSession{}
	var captured *SubmitRequest
	session.On("Submit", mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(0).(*SubmitRequest)
	}).Return(&TransactionCreationInfo{TransactionID: "tx2"}, nil)

	o := NewAssetBCAO(session, 0)
	_, err := o.TransferAsset(context.Background(), &asset.AssetOwner{AssetID: "asset3", BuyerMSP: "Org2MSP"})
	require.NoError(t, err)
	assert.Equal(t, FcnTransferAsset, captured.Fcn)
	assert.Equal(t, `{"assetID":"asset3","buyerMSP":"Org2MSP"}`, string(captured.TransientMap[TransientKeyAssetOwner]))

	_, err = o.AgreeToTransfer(context.Background(), &asset.AssetValue{AssetID: "asset3", SBOM: `{"a":1}`})
	require.NoError(t, err)
	assert.Equal(t, FcnAgreeToTransfer, captured.Fcn)
	assert.Equal(t, `{"assetID":"asset3","sbom":"{\"a\":1}"}`, string(captured.TransientMap[TransientKeyAssetValue]))
}

func TestReadFunctionsPassArguments(t *testing.T) {
	session := &mockSession{}
	session.On("Evaluate", FcnReadAssetPrivateDetails, []string{"Org1MSPPrivateCollection", "asset5"}).Return([]byte("private"), nil)
	session.On("Evaluate", FcnReadAsset, []string{"asset5"}).Return([]byte("public"), nil)
	session.On("Evaluate", FcnReadTransferAgreement, []string{"asset5"}).Return([]byte("agreement"), nil)

	o := NewAssetBCAO(session, time.Second)

	payload, err := o.ReadAssetPrivateDetails(context.Background(), "Org1MSPPrivateCollection", "asset5")
	require.NoError(t, err)
	assert.Equal(t, "private", string(payload))

	payload, err = o.ReadAsset(context.Background(), "asset5")
	require.NoError(t, err)
	assert.Equal(t, "public", string(payload))

	payload, err = o.ReadTransferAgreement(context.Background(), "asset5")
	require.NoError(t, err)
	assert.Equal(t, "agreement", string(payload))
}

func TestErrorsAreClassified(t *testing.T) {
	session := &mockSession{}
	session.On("Evaluate", FcnReadAsset, []string{"asset404"}).Return(nil, errors.New("asset404 does not exist"))
	session.On("Evaluate", FcnReadTransferAgreement, []string{"asset1"}).Return(nil, errors.New("endorsement failure"))
	session.On("Evaluate", FcnReadAssetPrivateDetails, []string{"Org2MSPPrivateCollection", "asset1"}).
		Return(nil, errors.New("client is not authorized to read Org2MSPPrivateCollection ~FORBIDDEN~"))
	session.On("Evaluate", FcnReadAsset, []string{"asset2"}).Return(nil, errors.New("history queries are disabled ~NOTIMPLEMENTED~"))

	o := NewAssetBCAO(session, time.Second)

	_, err := o.ReadAsset(context.Background(), "asset404")
	assert.Equal(t, errorcode.ErrorNotFound, errors.Cause(err))
	assert.Contains(t, err.Error(), "asset404 does not exist")

	_, err = o.ReadTransferAgreement(context.Background(), "asset1")
	assert.Contains(t, err.Error(), FcnReadTransferAgreement)
	assert.Contains(t, err.Error(), "endorsement failure")

	_, err = o.ReadAssetPrivateDetails(context.Background(), "Org2MSPPrivateCollection", "asset1")
	assert.Equal(t, errorcode.ErrorForbidden, errors.Cause(err))
	assert.Contains(t, err.Error(), "client is not authorized to read Org2MSPPrivateCollection")

	_, err = o.ReadAsset(context.Background(), "asset2")
	assert.Equal(t, errorcode.ErrorNotImplemented, errors.Cause(err))
	assert.Contains(t, err.Error(), "history queries are disabled")
}

func TestCallTimeoutIsApplied(t *testing.T) {
	session := &mockSession{}
	var deadline time.Time
	var hasDeadline bool
	session.On("Evaluate", FcnReadAsset, []string{"asset1"}).Return([]byte("{}"), nil)

	o := NewAssetBCAO(&deadlineRecorder{mockSession: session, record: func(ctx context.Context) {
		deadline, hasDeadline = ctx.Deadline()
	}}, 3*time.Second)

	_, err := o.ReadAsset(context.Background(), "asset1")
	require.NoError(t, err)
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(3*time.Second), deadline, time.Second)
}

type deadlineRecorder struct {
	*mockSession
	record func(ctx context.Context)
}

func (r *deadlineRecorder) Evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error) {
	r.record(ctx)
	return r.mockSession.Evaluate(ctx, fcn, args...)
}

func TestQueryTransaction(t *testing.T) {
	session := &mockSession{}
	session.On("QueryBlockID", "tx9").Return("ab12", nil)

	o := NewAssetBCAO(session, time.Second)
	info, err := o.QueryTransaction(context.Background(), "tx9")
	require.NoError(t, err)
	assert.Equal(t, &TransactionCreationInfo{TransactionID: "tx9", BlockID: "ab12"}, info)
}
