package fabricbcao

import (
	"context"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/credential"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/channel"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/ledger"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FabricConnector opens sessions against the asset network with fabric-sdk-go.
type FabricConnector struct {
	network *networkinfo.AssetNetwork
}

func NewFabricConnector(network *networkinfo.AssetNetwork) *FabricConnector {
	return &FabricConnector{
		network: network,
	}
}

// Connect implements `bcao.IConnector`. The session owns an SDK instance created from the connection profile of the organization.
func (c *FabricConnector) Connect(ctx context.Context, profile *networkinfo.OrgProfile, cred *credential.Credential) (bcao.ISession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sdk, err := fabsdk.New(config.FromFile(profile.ProfilePath))
	if err != nil {
		return nil, errors.Wrapf(err, "failed initializing Fabric SDK for '%v'", profile.Name)
	}

	channelProvider := sdk.ChannelContext(c.network.ChannelID, fabsdk.WithUser(cred.UserID), fabsdk.WithOrg(profile.Name))

	channelClient, err := channel.New(channelProvider)
	if err != nil {
		sdk.Close()
		return nil, errors.Wrapf(err, "cannot create a channel client for %v@%v", cred.UserID, profile.Name)
	}

	ledgerClient, err := ledger.New(channelProvider)
	if err != nil {
		sdk.Close()
		return nil, errors.Wrapf(err, "cannot create a ledger client for %v@%v", cred.UserID, profile.Name)
	}

	log.WithField("org", profile.Name).Debugf("Connected to channel '%v' as '%v'", c.network.ChannelID, cred.UserID)

	return &FabricSession{
		sdk:           sdk,
		channelClient: channelClient,
		ledgerClient:  ledgerClient,
		chaincodeID:   c.network.ChaincodeID,
		invocationChain: []*fab.ChaincodeCall{{
			ID:          c.network.ChaincodeID,
			Collections: c.network.DiscoveryCollections(profile),
		}},
	}, nil
}

// FabricSession is a connection bound to one identity of one organization.
type FabricSession struct {
	sdk             *fabsdk.FabricSDK
	channelClient   *channel.Client
	ledgerClient    *ledger.Client
	chaincodeID     string
	invocationChain []*fab.ChaincodeCall
}

// Evaluate implements `bcao.ISession`.
func (s *FabricSession) Evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error) {
	channelReq := channel.Request{
		ChaincodeID:     s.chaincodeID,
		Fcn:             fcn,
		Args:            toChaincodeArgs(args),
		InvocationChain: s.invocationChain,
	}

	resp, err := s.channelClient.Query(channelReq, channel.WithParentContext(ctx))
	if err != nil {
		return nil, err
	}

	return resp.Payload, nil
}

// Submit implements `bcao.ISession`. It returns once the transaction is committed.
func (s *FabricSession) Submit(ctx context.Context, req *bcao.SubmitRequest) (*bcao.TransactionCreationInfo, error) {
	channelReq := channel.Request{
		ChaincodeID:     s.chaincodeID,
		Fcn:             req.Fcn,
		Args:            toChaincodeArgs(req.Args),
		TransientMap:    req.TransientMap,
		InvocationChain: s.invocationChain,
	}

	resp, err := s.channelClient.Execute(channelReq, channel.WithParentContext(ctx))
	if err != nil {
		return nil, err
	}

	return &bcao.TransactionCreationInfo{
		TransactionID: string(resp.TransactionID),
	}, nil
}

// QueryBlockID implements `bcao.ISession`. The block ID is the hex of the data hash of the block containing the transaction.
func (s *FabricSession) QueryBlockID(ctx context.Context, txID string) (string, error) {
	blockID, err := getBlockHashFromTxID(ctx, s.ledgerClient, fab.TransactionID(txID))
	if err != nil {
		return "", errors.Wrapf(err, "cannot query the block of transaction '%v'", txID)
	}

	return blockID, nil
}

// Close implements `bcao.ISession`.
func (s *FabricSession) Close() error {
	s.sdk.Close()
	return nil
}
