package appinit

import (
	"context"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao/fabricbcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/credential"
	"gitee.com/czyczk/sbom-asset-transfer/internal/db"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	ipfs "github.com/ipfs/go-ipfs-api"
	errors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// VerifyConnectionProfiles checks that every configured organization appears in its connection profile with the configured MSP ID and CA.
func VerifyConnectionProfiles(network *networkinfo.AssetNetwork) error {
	for _, profile := range network.Orgs {
		networkConfig, err := networkinfo.LoadFabricNetworkConfig(profile.ProfilePath)
		if err != nil {
			return err
		}

		if err = networkinfo.VerifyOrgProfile(profile, networkConfig); err != nil {
			return err
		}
	}

	return nil
}

// SetupEnrollers creates a Fabric enroller for every configured organization. The returned function releases them.
func SetupEnrollers(network *networkinfo.AssetNetwork) (map[string]credential.Enroller, func(), error) {
	ret := make(map[string]credential.Enroller)
	var created []*credential.FabricEnroller
	closeAll := func() {
		for _, e := range created {
			e.Close()
		}
	}

	for _, profile := range network.Orgs {
		enroller, err := credential.NewFabricEnroller(profile)
		if err != nil {
			closeAll()
			return nil, nil, err
		}

		created = append(created, enroller)
		ret[profile.Name] = enroller
	}

	return ret, closeAll, nil
}

// SetupDB connects to the MySQL database of the local records and migrates the tables. A nil DB is returned if no database is configured.
func SetupDB(info *DatabaseInfo) (*gorm.DB, error) {
	if info == nil || info.DSN == "" {
		log.Info("No database is configured. Local records are disabled.")
		return nil, nil
	}

	gormDB, err := gorm.Open(mysql.Open(info.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to the database")
	}

	if err = db.MigrateLocalDB(gormDB); err != nil {
		return nil, err
	}

	return gormDB, nil
}

// SetupIPFS creates a shell to the IPFS API. A nil shell is returned if no IPFS node is configured or the node is unreachable.
func SetupIPFS(info *IPFSInfo) *ipfs.Shell {
	if info == nil || info.URL == "" {
		log.Info("No IPFS node is configured. Payloads will not be archived.")
		return nil
	}

	sh := ipfs.NewShell(info.URL)
	if !sh.IsUp() {
		log.Warnf("IPFS node at '%v' is not reachable. Payloads will not be archived.", info.URL)
		return nil
	}

	return sh
}

// App holds everything built from the config. `Close` must be called when the app stops.
type App struct {
	ServerInfo  *ServerInfo
	Network     *networkinfo.AssetNetwork
	Credentials *credential.Provider
	AssetSvc    *service.AssetService

	closeEnrollers func()
}

// SetupApp wires the collaborators of the services out of the config.
func SetupApp(serverInfo *ServerInfo) (*App, error) {
	network := serverInfo.ToAssetNetwork()
	if err := VerifyConnectionProfiles(network); err != nil {
		return nil, err
	}

	enrollers, closeEnrollers, err := SetupEnrollers(network)
	if err != nil {
		return nil, err
	}

	gormDB, err := SetupDB(serverInfo.Database)
	if err != nil {
		closeEnrollers()
		return nil, err
	}

	credentials := credential.NewProvider(enrollers, serverInfo.Timeouts.Call)
	serviceInfo := &service.Info{
		Network:     network,
		SellerOrg:   serverInfo.SellerOrgEnum(),
		Credentials: credentials,
		Connector:   fabricbcao.NewFabricConnector(network),
		CallTimeout: serverInfo.Timeouts.Call,
		DB:          gormDB,
		IPFSSh:      SetupIPFS(serverInfo.IPFS),
	}

	return &App{
		ServerInfo:     serverInfo,
		Network:        network,
		Credentials:    credentials,
		AssetSvc:       service.NewAssetService(serviceInfo, serverInfo.AssetServiceOptions()),
		closeEnrollers: closeEnrollers,
	}, nil
}

// EnrollAll makes sure the credentials of every configured organization are available.
func (a *App) EnrollAll(ctx context.Context) error {
	for _, profile := range a.Network.Orgs {
		cred, err := a.Credentials.Get(ctx, profile)
		if err != nil {
			return err
		}
		log.WithField("org", profile.Name).Infof("Credential of %v@%v (%v) is ready", cred.UserID, cred.OrgName, cred.MSPID)
	}

	return nil
}

// Close releases the SDK instances of the enrollers.
func (a *App) Close() {
	a.closeEnrollers()
}
