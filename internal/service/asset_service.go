package service

import (
	"context"
	"strings"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/db"
	"gitee.com/czyczk/sbom-asset-transfer/internal/models/common"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/internal/utils/idutils"
	"gitee.com/czyczk/sbom-asset-transfer/internal/utils/timingutils"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/errorcode"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/models/asset"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// AssetServiceOptions tunes an `AssetService`.
type AssetServiceOptions struct {
	DigestAlgorithm    DigestAlgorithm
	VerificationPolicy VerificationPolicy
	MaxConcurrentFlows int // Zero for no bound
}

// AssetService creates SBOM assets and transfers them between the organizations.
type AssetService struct {
	ServiceInfo        *Info
	DigestAlgorithm    DigestAlgorithm
	VerificationPolicy VerificationPolicy

	flows *semaphore.Weighted
	ids   *assetIDGenerator
	now   func() time.Time
}

func NewAssetService(info *Info, opts AssetServiceOptions) *AssetService {
	s := &AssetService{
		ServiceInfo:        info,
		DigestAlgorithm:    opts.DigestAlgorithm,
		VerificationPolicy: opts.VerificationPolicy,
		ids:                newTimeSeededAssetIDGenerator(),
		now:                time.Now,
	}
	if s.DigestAlgorithm == "" {
		s.DigestAlgorithm = DigestMD5
	}
	if opts.MaxConcurrentFlows > 0 {
		s.flows = semaphore.NewWeighted(int64(opts.MaxConcurrentFlows))
	}

	return s
}

func (s *AssetService) acquireFlow(ctx context.Context) (release func(), err error) {
	if s.flows == nil {
		return func() {}, nil
	}

	if err = s.flows.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "cannot start the flow")
	}
	return func() { s.flows.Release(1) }, nil
}

func (s *AssetService) openSession(ctx context.Context, profile *networkinfo.OrgProfile) (bcao.ISession, error) {
	cred, err := s.ServiceInfo.Credentials.Get(ctx, profile)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot get the credential of %v@%v", profile.UserID, profile.Name)
	}

	defer timingutils.GetDeferrableTimingLogger("Connect as " + profile.Name)()
	session, err := s.ServiceInfo.Connector.Connect(ctx, profile, cred)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to the network as %v@%v", profile.UserID, profile.Name)
	}

	return session, nil
}

func closeSession(session bcao.ISession, profile *networkinfo.OrgProfile) {
	if err := session.Close(); err != nil {
		log.WithField("org", profile.Name).Warnf("Cannot close the session: %v", err)
	}
}

func (s *AssetService) newBCAO(session bcao.ISession) *bcao.AssetBCAO {
	return bcao.NewAssetBCAO(session, s.ServiceInfo.CallTimeout)
}

// CreateAsset implements `AssetServiceInterface`.
func (s *AssetService) CreateAsset(ctx context.Context, payloadPath string) (string, error) {
	payload, err := LoadPayload(payloadPath, s.DigestAlgorithm)
	if err != nil {
		return "", err
	}

	seller, err := s.ServiceInfo.Network.Profile(s.ServiceInfo.SellerOrg)
	if err != nil {
		return "", err
	}

	release, err := s.acquireFlow(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	session, err := s.openSession(ctx, seller)
	if err != nil {
		return "", err
	}
	defer closeSession(session, seller)

	assetID, err := s.ids.next()
	if err != nil {
		return "", err
	}

	timeCreated := s.now()
	properties := &asset.AssetProperties{
		ObjectType: asset.ObjectTypeValuableAsset,
		AssetID:    assetID,
		Hash:       payload.Digest,
		Time:       timingutils.FormatJSDateString(timeCreated),
		SBOM:       payload.Compact,
	}

	logger := log.WithFields(log.Fields{"assetID": assetID, "org": seller.Name})
	logger.Infof("Creating asset with %v digest %v", payload.Algorithm, payload.Digest)

	txInfo, err := s.newBCAO(session).CreateAsset(ctx, properties)
	if err != nil {
		s.ids.release(assetID)
		return "", errors.Wrapf(err, "cannot create asset '%v'", assetID)
	}

	logger.Infof("Asset created in transaction '%v'", txInfo.TransactionID)

	payloadCID := s.archivePayload(payload, assetID)
	if s.ServiceInfo.DB != nil {
		record := &common.AssetRecord{
			AssetID:         assetID,
			OrgName:         seller.Name,
			Hash:            payload.Digest,
			DigestAlgorithm: string(payload.Algorithm),
			TransactionID:   txInfo.TransactionID,
			PayloadCID:      payloadCID,
			TimeCreated:     timeCreated,
		}
		if err = db.SaveAssetRecordToLocalDB(record, s.ServiceInfo.DB.WithContext(ctx)); err != nil {
			logger.Warnf("Cannot save the local record: %v", err)
		}
	}

	return assetID, nil
}

// resolveBuyer maps the buyer organization name to its profile. Only a configured organization other than the seller can buy.
func (s *AssetService) resolveBuyer(buyerOrgName string) (*networkinfo.OrgProfile, error) {
	buyerOrg, err := networkinfo.NewOrgFromString(buyerOrgName)
	if err != nil {
		return nil, err
	}

	if buyerOrg == s.ServiceInfo.SellerOrg {
		return nil, errors.Wrapf(networkinfo.ErrUnsupportedOrg, "'%v' is the seller and cannot buy its own asset", buyerOrgName)
	}

	return s.ServiceInfo.Network.Profile(buyerOrg)
}

// TransferAsset implements `AssetServiceInterface`. Steps run strictly in order and both sessions are closed on every exit path.
func (s *AssetService) TransferAsset(ctx context.Context, assetID, buyerOrgName, payloadPath string) (string, error) {
	payload, err := LoadPayload(payloadPath, s.DigestAlgorithm)
	if err != nil {
		return "", err
	}

	buyer, err := s.resolveBuyer(buyerOrgName)
	if err != nil {
		return "", err
	}

	seller, err := s.ServiceInfo.Network.Profile(s.ServiceInfo.SellerOrg)
	if err != nil {
		return "", err
	}

	release, err := s.acquireFlow(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	logger := log.WithFields(log.Fields{"assetID": assetID, "seller": seller.Name, "buyer": buyer.Name})

	// Sessions of both sides
	sellerSession, err := s.openSession(ctx, seller)
	if err != nil {
		return "", err
	}
	defer closeSession(sellerSession, seller)

	buyerSession, err := s.openSession(ctx, buyer)
	if err != nil {
		return "", err
	}
	defer closeSession(buyerSession, buyer)

	sellerBCAO := s.newBCAO(sellerSession)
	buyerBCAO := s.newBCAO(buyerSession)
	verifications := &verificationRecorder{policy: s.VerificationPolicy}

	// The seller holds the same payload in its private collection
	logger.Infof("Reading private details from '%v'", seller.PrivateCollection)
	resp, err := sellerBCAO.ReadAssetPrivateDetails(ctx, seller.PrivateCollection, assetID)
	if err != nil {
		return "", err
	}
	if err = verifications.record(VerifyAssetPrivate(resp, assetID, payload.Compact), ""); err != nil {
		return "", err
	}

	// The buyer sees the seller as the owner
	logger.Info("Reading the asset as the buyer")
	resp, err = buyerBCAO.ReadAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	if err = verifications.record(VerifyAssetPublic(resp, assetID, seller.UserID, nil), ""); err != nil {
		return "", err
	}

	// The buyer agrees on the payload
	logger.Info("Agreeing to the transfer as the buyer")
	agreeInfo, err := buyerBCAO.AgreeToTransfer(ctx, &asset.AssetValue{AssetID: assetID, SBOM: payload.Compact})
	if err != nil {
		return "", err
	}
	txID := agreeInfo.TransactionID
	logger.Infof("Agreement submitted in transaction '%v'", txID)

	// The seller reads the agreement before transferring
	resp, err = sellerBCAO.ReadTransferAgreement(ctx, assetID)
	if err != nil {
		return "", err
	}
	logger.Debugf("Transfer agreement: %s", resp)

	logger.Info("Transferring the asset as the seller")
	if _, err = sellerBCAO.TransferAsset(ctx, &asset.AssetOwner{AssetID: assetID, BuyerMSP: buyer.MSPID}); err != nil {
		return "", err
	}

	// The buyer is the owner now
	resp, err = sellerBCAO.ReadAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	if err = verifications.record(VerifyAssetPublic(resp, assetID, buyer.UserID, nil), txID); err != nil {
		return "", err
	}

	verificationErr := verifications.err(txID)
	payloadCID := s.archivePayload(payload, assetID)
	if s.ServiceInfo.DB != nil {
		s.saveTransferRecord(ctx, &common.TransferRecord{
			AssetID:       assetID,
			SellerOrgName: seller.Name,
			BuyerOrgName:  buyer.Name,
			TransactionID: txID,
			PayloadCID:    payloadCID,
			IsVerified:    verificationErr == nil,
			TimeCreated:   s.now(),
		})
	}

	if verificationErr != nil {
		return txID, verificationErr
	}

	logger.Infof("Asset transferred to '%v'", buyer.Name)
	return txID, nil
}

func (s *AssetService) saveTransferRecord(ctx context.Context, record *common.TransferRecord) {
	id, err := idutils.GenerateSnowflakeId()
	if err != nil {
		log.WithField("assetID", record.AssetID).Warnf("Cannot save the local transfer record: %v", err)
		return
	}
	record.ID = id

	if err = db.SaveTransferRecordToLocalDB(record, s.ServiceInfo.DB.WithContext(ctx)); err != nil {
		log.WithField("assetID", record.AssetID).Warnf("Cannot save the local transfer record: %v", err)
	}
}

// archivePayload adds the payload to IPFS. It returns the CID or an empty string if there's no IPFS node or the addition failed.
func (s *AssetService) archivePayload(payload *Payload, assetID string) string {
	if s.ServiceInfo.IPFSSh == nil {
		return ""
	}

	defer timingutils.GetDeferrableTimingLogger("Archive payload to IPFS")()
	cid, err := s.ServiceInfo.IPFSSh.Add(strings.NewReader(payload.Compact))
	if err != nil {
		log.WithField("assetID", assetID).Warnf("Cannot archive the payload to IPFS: %v", err)
		return ""
	}

	log.WithFields(log.Fields{"assetID": assetID, "cid": cid}).Info("Payload archived to IPFS")
	return cid
}

// GetTransaction implements `AssetServiceInterface`.
func (s *AssetService) GetTransaction(ctx context.Context, orgName, txID string) (*bcao.TransactionCreationInfo, error) {
	var profile *networkinfo.OrgProfile
	var err error
	if orgName == "" {
		profile, err = s.ServiceInfo.Network.Profile(s.ServiceInfo.SellerOrg)
	} else {
		profile, err = s.ServiceInfo.Network.ProfileByName(orgName)
	}
	if err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer closeSession(session, profile)

	return s.newBCAO(session).QueryTransaction(ctx, txID)
}

// GetAssetRecords implements `AssetServiceInterface`.
func (s *AssetService) GetAssetRecords(ctx context.Context, assetID string) (*common.AssetRecords, error) {
	if s.ServiceInfo.DB == nil {
		return nil, errorcode.ErrorNotImplemented
	}

	return db.GetAssetRecordsFromLocalDB(assetID, s.ServiceInfo.DB.WithContext(ctx))
}
