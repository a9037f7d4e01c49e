package bcao

import (
	"context"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/credential"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
)

// SubmitRequest describes a transaction to be endorsed and ordered.
type SubmitRequest struct {
	Fcn          string
	Args         []string
	TransientMap map[string][]byte // Private data passed alongside the proposal. It doesn't go into the ledger in full.
}

// ISession is a connection to the network bound to one credential. A session must be closed by whoever opened it.
type ISession interface {
	// Evaluate queries the chaincode on one peer without touching the ledger.
	Evaluate(ctx context.Context, fcn string, args ...string) ([]byte, error)

	// Submit invokes the chaincode and waits for the transaction to be committed.
	//
	// Returns:
	//   the ID of the transaction
	Submit(ctx context.Context, request *SubmitRequest) (*TransactionCreationInfo, error)

	// QueryBlockID finds the block containing the transaction.
	//
	// Returns:
	//   the data hash of the block in hex
	QueryBlockID(ctx context.Context, txID string) (string, error)

	// Close releases the connection.
	Close() error
}

// IConnector opens sessions.
type IConnector interface {
	Connect(ctx context.Context, profile *networkinfo.OrgProfile, cred *credential.Credential) (ISession, error)
}
