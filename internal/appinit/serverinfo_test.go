package appinit

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadServerInfoAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
orgs:
  Org1:
    connectionProfile: connection-org1.yaml
  Org2:
    connectionProfile: connection-org2.yaml
`)

	serverInfo, err := LoadServerInfo(path)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, 3000, serverInfo.Port)
	assert.Equal(t, "mychannel", serverInfo.Channel)
	assert.Equal(t, "private", serverInfo.Chaincode)
	assert.Equal(t, "assetCollection", serverInfo.MemberCollection)
	assert.Equal(t, networkinfo.Org1, serverInfo.SellerOrgEnum())
	assert.Equal(t, 30*time.Second, serverInfo.Timeouts.Call)

	network := serverInfo.ToAssetNetwork()
	org2, err := network.Profile(networkinfo.Org2)
	require.NoError(t, err)
	assert.Equal(t, &networkinfo.OrgProfile{
		Org:               networkinfo.Org2,
		Name:              "Org2",
		MSPID:             "Org2MSP",
		ProfilePath:       "connection-org2.yaml",
		CAName:            "ca.org2.example.com",
		AdminID:           "admin",
		AdminSecret:       "adminpw",
		UserID:            "appUser2",
		Affiliation:       "org2.department1",
		PrivateCollection: "Org2MSPPrivateCollection",
	}, org2)

	opts := serverInfo.AssetServiceOptions()
	assert.Equal(t, service.VerificationStrict, opts.VerificationPolicy)
	assert.Equal(t, service.DigestMD5, opts.DigestAlgorithm)
	assert.Equal(t, 8, opts.MaxConcurrentFlows)
}

func TestLoadServerInfoOverrides(t *testing.T) {
	path := writeConfig(t, `
port: 8080
verification: lax
digestAlgorithm: sm3
timeouts:
  call: 10s
  shutdown: 1m
maxConcurrentFlows: 2
orgs:
  org1:
    connectionProfile: connection-org1.yaml
    userID: alice
`)

	serverInfo, err := LoadServerInfo(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, serverInfo.Port)
	assert.Equal(t, 10*time.Second, serverInfo.Timeouts.Call)
	assert.Equal(t, time.Minute, serverInfo.Timeouts.Shutdown)

	opts := serverInfo.AssetServiceOptions()
	assert.Equal(t, service.VerificationLax, opts.VerificationPolicy)
	assert.Equal(t, service.DigestSM3, opts.DigestAlgorithm)
	assert.Equal(t, 2, opts.MaxConcurrentFlows)

	org1, err := serverInfo.ToAssetNetwork().Profile(networkinfo.Org1)
	require.NoError(t, err)
	assert.Equal(t, "alice", org1.UserID)

	_, err = serverInfo.ToAssetNetwork().Profile(networkinfo.Org2)
	assert.True(t, networkinfo.IsUnsupportedOrg(err))
}

func TestLoadServerInfoRejectsBadConfigs(t *testing.T) {
	for _, contents := range []string{
		"orgs: {}",
		"orgs:\n  Org3:\n    connectionProfile: c.yaml\n",
		"orgs:\n  Org1: {}\n",
		"verification: sometimes\norgs:\n  Org1:\n    connectionProfile: c.yaml\n",
		"digestAlgorithm: crc32\norgs:\n  Org1:\n    connectionProfile: c.yaml\n",
		"sellerOrg: Org2\norgs:\n  Org1:\n    connectionProfile: c.yaml\n",
		"port: [",
	} {
		_, err := LoadServerInfo(writeConfig(t, contents))
		assert.Error(t, err, contents)
	}

	_, err := LoadServerInfo(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetupOptionalCollaboratorsWhenUnconfigured(t *testing.T) {
	gormDB, err := SetupDB(nil)
	assert.NoError(t, err)
	assert.Nil(t, gormDB)

	assert.Nil(t, SetupIPFS(&IPFSInfo{}))
}
