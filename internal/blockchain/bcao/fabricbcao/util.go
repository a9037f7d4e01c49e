package fabricbcao

import (
	"context"
	"encoding/hex"

	"github.com/hyperledger/fabric-sdk-go/pkg/client/ledger"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
)

func toChaincodeArgs(args []string) [][]byte {
	ret := make([][]byte, len(args))
	for i, arg := range args {
		ret[i] = []byte(arg)
	}
	return ret
}

func getBlockHashFromTxID(ctx context.Context, ledgerClient *ledger.Client, txID fab.TransactionID) (string, error) {
	block, err := ledgerClient.QueryBlockByTxID(txID, ledger.WithParentContext(ctx))
	if err != nil {
		return "", err
	}

	blockHashAsHex := hex.EncodeToString(block.GetHeader().GetDataHash())
	return blockHashAsHex, nil
}
