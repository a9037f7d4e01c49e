package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/credential"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/pkg/models/asset"
	"github.com/pkg/errors"
)

func newTestNetwork() *networkinfo.AssetNetwork {
	return &networkinfo.AssetNetwork{
		ChannelID:        "mychannel",
		ChaincodeID:      "private",
		MemberCollection: "assetCollection",
		Orgs: map[networkinfo.Org]*networkinfo.OrgProfile{
			networkinfo.Org1: {
				Org:               networkinfo.Org1,
				Name:              "Org1",
				MSPID:             "Org1MSP",
				UserID:            "appUser1",
				Affiliation:       "org1.department1",
				PrivateCollection: "Org1MSPPrivateCollection",
			},
			networkinfo.Org2: {
				Org:               networkinfo.Org2,
				Name:              "Org2",
				MSPID:             "Org2MSP",
				UserID:            "appUser2",
				Affiliation:       "org2.department1",
				PrivateCollection: "Org2MSPPrivateCollection",
			},
		},
	}
}

type fakeCredentials struct{}

func (fakeCredentials) Get(ctx context.Context, profile *networkinfo.OrgProfile) (*credential.Credential, error) {
	return &credential.Credential{OrgName: profile.Name, MSPID: profile.MSPID, UserID: profile.UserID}, nil
}

// fakeLedger behaves like the private asset transfer chaincode of both organizations and records every call.
type fakeLedger struct {
	mu         sync.Mutex
	calls      []string
	public     map[string]*asset.Asset
	private    map[string]map[string]*asset.AssetPrivateDetails // Collection -> asset ID -> details
	agreements map[string]string                                // Asset ID -> buyer client ID
	submitted  map[string]*bcao.SubmitRequest                   // Fcn -> the latest request
	numTx      int

	connectErrs map[string]error // Org name -> error from connecting
	submitErrs  map[string]error // Fcn -> error from submitting
	numOpen     map[string]int   // Org name -> sessions currently open
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		public:      make(map[string]*asset.Asset),
		private:     make(map[string]map[string]*asset.AssetPrivateDetails),
		agreements:  make(map[string]string),
		submitted:   make(map[string]*bcao.SubmitRequest),
		connectErrs: make(map[string]error),
		submitErrs:  make(map[string]error),
		numOpen:     make(map[string]int),
	}
}

func (l *fakeLedger) record(format string, args ...interface{}) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *fakeLedger) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.calls...)
}

func (l *fakeLedger) NumOpen(orgName string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.numOpen[orgName]
}

func (l *fakeLedger) NumConnects() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, call := range l.calls {
		if len(call) > 8 && call[:8] == "connect " {
			n++
		}
	}
	return n
}

func (l *fakeLedger) Connect(ctx context.Context, profile *networkinfo.OrgProfile, cred *credential.Credential) (bcao.ISession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record("connect %v", profile.Name)
	if err := l.connectErrs[profile.Name]; err != nil {
		return nil, err
	}
	l.numOpen[profile.Name]++

	return &fakeSession{ledger: l, profile: profile}, nil
}

func clientID(profile *networkinfo.OrgProfile) string {
	return fmt.Sprintf("x509::CN=%v,OU=client::CN=ca.%v.example.com", profile.UserID, profile.Name)
}

type fakeSession struct {
	ledger  *fakeLedger
	profile *networkinfo.OrgProfile
}

func (s *fakeSession) Evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record("%v evaluate %v", s.profile.Name, fcn)
	switch fcn {
	case bcao.FcnReadAssetPrivateDetails:
		details := l.private[args[0]][args[1]]
		if details == nil {
			return nil, nil
		}
		return json.Marshal(details)
	case bcao.FcnReadAsset:
		a := l.public[args[0]]
		if a == nil {
			return nil, fmt.Errorf("%v does not exist", args[0])
		}
		return json.Marshal(a)
	case bcao.FcnReadTransferAgreement:
		buyerID, ok := l.agreements[args[0]]
		if !ok {
			return nil, nil
		}
		return json.Marshal(&asset.TransferAgreement{AssetID: args[0], BuyerID: buyerID})
	default:
		return nil, fmt.Errorf("unknown function %v", fcn)
	}
}

func (s *fakeSession) Submit(ctx context.Context, req *bcao.SubmitRequest) (*bcao.TransactionCreationInfo, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record("%v submit %v", s.profile.Name, req.Fcn)
	l.submitted[req.Fcn] = req
	if err := l.submitErrs[req.Fcn]; err != nil {
		return nil, err
	}

	switch req.Fcn {
	case bcao.FcnCreateAsset:
		var props asset.AssetProperties
		if err := json.Unmarshal(req.TransientMap[bcao.TransientKeyAssetProperties], &props); err != nil {
			return nil, err
		}
		l.public[props.AssetID] = &asset.Asset{
			ObjectType: props.ObjectType,
			AssetID:    props.AssetID,
			Hash:       props.Hash,
			Time:       props.Time,
			Owner:      clientID(s.profile),
		}
		l.putPrivate(s.profile.PrivateCollection, &asset.AssetPrivateDetails{AssetID: props.AssetID, SBOM: props.SBOM})
	case bcao.FcnAgreeToTransfer:
		var value asset.AssetValue
		if err := json.Unmarshal(req.TransientMap[bcao.TransientKeyAssetValue], &value); err != nil {
			return nil, err
		}
		if l.public[value.AssetID] == nil {
			return nil, fmt.Errorf("%v does not exist", value.AssetID)
		}
		l.agreements[value.AssetID] = clientID(s.profile)
		l.putPrivate(s.profile.PrivateCollection, &asset.AssetPrivateDetails{AssetID: value.AssetID, SBOM: value.SBOM})
	case bcao.FcnTransferAsset:
		var owner asset.AssetOwner
		if err := json.Unmarshal(req.TransientMap[bcao.TransientKeyAssetOwner], &owner); err != nil {
			return nil, err
		}
		a := l.public[owner.AssetID]
		if a == nil {
			return nil, fmt.Errorf("%v does not exist", owner.AssetID)
		}
		if a.Owner != clientID(s.profile) {
			return nil, errors.New("submitting client is not the owner of the asset")
		}
		buyerID, ok := l.agreements[owner.AssetID]
		if !ok {
			return nil, errors.New("no agreement for the asset")
		}
		a.Owner = buyerID
		delete(l.agreements, owner.AssetID)
		delete(l.private[s.profile.PrivateCollection], owner.AssetID)
	default:
		return nil, fmt.Errorf("unknown function %v", req.Fcn)
	}

	l.numTx++
	return &bcao.TransactionCreationInfo{TransactionID: fmt.Sprintf("tx%d", l.numTx)}, nil
}

func (l *fakeLedger) putPrivate(collection string, details *asset.AssetPrivateDetails) {
	if l.private[collection] == nil {
		l.private[collection] = make(map[string]*asset.AssetPrivateDetails)
	}
	l.private[collection][details.AssetID] = details
}

func (s *fakeSession) QueryBlockID(ctx context.Context, txID string) (string, error) {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record("%v query block %v", s.profile.Name, txID)
	return "block-of-" + txID, nil
}

func (s *fakeSession) Close() error {
	l := s.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	l.record("close %v", s.profile.Name)
	l.numOpen[s.profile.Name]--
	return nil
}
