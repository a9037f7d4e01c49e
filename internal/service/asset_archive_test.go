package service

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	ipfs "github.com/ipfs/go-ipfs-api"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ipfsNode answers `/api/v0/add` with a fixed CID and keeps the uploaded bodies.
type ipfsNode struct {
	mu     sync.Mutex
	bodies []string
}

func (n *ipfsNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v0/add" {
		http.NotFound(w, r)
		return
	}

	body, _ := ioutil.ReadAll(r.Body)
	n.mu.Lock()
	n.bodies = append(n.bodies, string(body))
	n.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"Name":"","Hash":"QmArchivedPayload","Size":"43"}`))
}

func (n *ipfsNode) numAdds() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.bodies)
}

func archivedCIDs(hook *test.Hook) []string {
	var cids []string
	for _, entry := range hook.AllEntries() {
		if cid, ok := entry.Data["cid"]; ok {
			cids = append(cids, cid.(string))
		}
	}
	return cids
}

func TestPayloadIsArchivedWithoutDB(t *testing.T) {
	node := &ipfsNode{}
	server := httptest.NewServer(node)
	defer server.Close()

	hook := test.NewGlobal()
	defer hook.Reset()
	log.SetLevel(log.InfoLevel)

	ledger := newFakeLedger()
	s := newTestAssetService(ledger, VerificationStrict)
	s.ServiceInfo.IPFSSh = ipfs.NewShell(server.URL)
	path := writePayloadFile(t, scenarioPayload)

	assetID, err := s.CreateAsset(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, node.numAdds())
	assert.Contains(t, node.bodies[0], scenarioPayload)
	assert.Equal(t, []string{"QmArchivedPayload"}, archivedCIDs(hook))

	_, err = s.TransferAsset(context.Background(), assetID, "Org2", path)
	require.NoError(t, err)
	assert.Equal(t, 2, node.numAdds())
	assert.Equal(t, []string{"QmArchivedPayload", "QmArchivedPayload"}, archivedCIDs(hook))
}

func TestArchiveFailureDoesNotFailTheFlow(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	ledger := newFakeLedger()
	s := newTestAssetService(ledger, VerificationStrict)
	s.ServiceInfo.IPFSSh = ipfs.NewShell(server.URL)

	assetID, err := s.CreateAsset(context.Background(), writePayloadFile(t, scenarioPayload))
	require.NoError(t, err)
	assert.Regexp(t, assetIDPattern, assetID)
}
