package appinit

import (
	"fmt"
	"io/ioutil"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"gitee.com/czyczk/sbom-asset-transfer/internal/service"
	errors "github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// ServerInfo is the Go struct for contents in server.yaml.
type ServerInfo struct {
	Port               int                 `yaml:"port"`
	UploadDir          string              `yaml:"uploadDir"`          // Where the uploaded SBOM files are kept
	Channel            string              `yaml:"channel"`            // The channel of the chaincode
	Chaincode          string              `yaml:"chaincode"`          // The ID of the private asset transfer chaincode
	MemberCollection   string              `yaml:"memberCollection"`   // The collection shared by all members
	SellerOrg          string              `yaml:"sellerOrg"`          // The organization that creates and sells assets
	Orgs               map[string]*OrgInfo `yaml:"orgs"`               // Organization name -> the info needed to act for it
	Verification       string              `yaml:"verification"`       // "strict" or "lax"
	DigestAlgorithm    string              `yaml:"digestAlgorithm"`    // "md5", "sha256" or "sm3"
	Timeouts           *TimeoutInfo        `yaml:"timeouts"`           // Timeouts. Defaults are applied to the missing ones.
	MaxConcurrentFlows int                 `yaml:"maxConcurrentFlows"` // The number of flows allowed to run at the same time
	Database           *DatabaseInfo       `yaml:"database"`           // Optional local record store
	IPFS               *IPFSInfo           `yaml:"ipfs"`               // Optional payload archive
}

// OrgInfo describes an organization and the application user acting for it.
type OrgInfo struct {
	MSPID             string `yaml:"mspID"`
	ConnectionProfile string `yaml:"connectionProfile"` // The path to the SDK connection profile
	CAName            string `yaml:"caName"`            // The CA as named in the connection profile
	AdminID           string `yaml:"adminID"`
	AdminSecret       string `yaml:"adminSecret"`
	UserID            string `yaml:"userID"`
	Affiliation       string `yaml:"affiliation"`
	PrivateCollection string `yaml:"privateCollection"`
}

// TimeoutInfo contains the timeouts of the server.
type TimeoutInfo struct {
	Call     time.Duration `yaml:"call"`     // Bound of every remote call
	Shutdown time.Duration `yaml:"shutdown"` // How long the HTTP server waits for the requests in flight when stopping
}

// DatabaseInfo locates the MySQL database of the local records.
type DatabaseInfo struct {
	DSN string `yaml:"dsn"`
}

// IPFSInfo locates the IPFS API of the payload archive.
type IPFSInfo struct {
	URL string `yaml:"url"`
}

const (
	defaultPort               = 3000
	defaultUploadDir          = "uploads"
	defaultChannel            = "mychannel"
	defaultChaincode          = "private"
	defaultMemberCollection   = "assetCollection"
	defaultCallTimeout        = 30 * time.Second
	defaultShutdownTimeout    = 5 * time.Second
	defaultMaxConcurrentFlows = 8
)

// defaultOrgInfo returns the organization info of the Fabric test network.
func defaultOrgInfo(org networkinfo.Org) *OrgInfo {
	switch org {
	case networkinfo.Org1:
		return &OrgInfo{
			MSPID:             "Org1MSP",
			CAName:            "ca.org1.example.com",
			AdminID:           "admin",
			AdminSecret:       "adminpw",
			UserID:            "appUser1",
			Affiliation:       "org1.department1",
			PrivateCollection: "Org1MSPPrivateCollection",
		}
	case networkinfo.Org2:
		return &OrgInfo{
			MSPID:             "Org2MSP",
			CAName:            "ca.org2.example.com",
			AdminID:           "admin",
			AdminSecret:       "adminpw",
			UserID:            "appUser2",
			Affiliation:       "org2.department1",
			PrivateCollection: "Org2MSPPrivateCollection",
		}
	default:
		return &OrgInfo{}
	}
}

func fillDefault(s *string, def string) {
	if *s == "" {
		*s = def
	}
}

// LoadServerInfo loads the server config file (in YAML) which contains info needed to start a server. Defaults are applied and the result is validated.
//
// Parameters:
//   the path to the config file
//
// Returns:
//   the `ServerInfo` struct containing the info needed to start a server
func LoadServerInfo(configFilePath string) (ret ServerInfo, err error) {
	yamlStr, err := ioutil.ReadFile(configFilePath)
	if err != nil {
		err = errors.Wrap(err, "cannot read the server config file")
		return
	}

	err = yaml.Unmarshal(yamlStr, &ret)
	if err != nil {
		err = errors.Wrap(err, "cannot parse the server config file")
		return
	}

	err = ret.Validate()
	return
}

// Validate fills the missing fields with the defaults of the Fabric test network and checks the rest.
func (s *ServerInfo) Validate() error {
	if s.Port == 0 {
		s.Port = defaultPort
	}
	fillDefault(&s.UploadDir, defaultUploadDir)
	fillDefault(&s.Channel, defaultChannel)
	fillDefault(&s.Chaincode, defaultChaincode)
	fillDefault(&s.MemberCollection, defaultMemberCollection)
	fillDefault(&s.SellerOrg, networkinfo.Org1.String())

	if s.Timeouts == nil {
		s.Timeouts = &TimeoutInfo{}
	}
	if s.Timeouts.Call == 0 {
		s.Timeouts.Call = defaultCallTimeout
	}
	if s.Timeouts.Shutdown == 0 {
		s.Timeouts.Shutdown = defaultShutdownTimeout
	}
	if s.MaxConcurrentFlows == 0 {
		s.MaxConcurrentFlows = defaultMaxConcurrentFlows
	}

	if _, err := service.ParseVerificationPolicy(s.Verification); err != nil {
		return err
	}
	if _, err := service.ParseDigestAlgorithm(s.DigestAlgorithm); err != nil {
		return err
	}

	if _, err := networkinfo.NewOrgFromString(s.SellerOrg); err != nil {
		return errors.Wrap(err, "invalid seller organization")
	}
	if len(s.Orgs) == 0 {
		return fmt.Errorf("no organization is configured")
	}

	for name, info := range s.Orgs {
		org, err := networkinfo.NewOrgFromString(name)
		if err != nil {
			return errors.Wrap(err, "invalid organization in the config")
		}
		if info == nil {
			info = &OrgInfo{}
			s.Orgs[name] = info
		}

		def := defaultOrgInfo(org)
		fillDefault(&info.MSPID, def.MSPID)
		fillDefault(&info.CAName, def.CAName)
		fillDefault(&info.AdminID, def.AdminID)
		fillDefault(&info.AdminSecret, def.AdminSecret)
		fillDefault(&info.UserID, def.UserID)
		fillDefault(&info.Affiliation, def.Affiliation)
		fillDefault(&info.PrivateCollection, def.PrivateCollection)

		if info.ConnectionProfile == "" {
			return fmt.Errorf("the connection profile of '%v' is not specified", name)
		}
	}

	if _, err := s.ToAssetNetwork().Profile(s.SellerOrgEnum()); err != nil {
		return errors.Wrap(err, "the seller organization is not configured")
	}

	return nil
}

// SellerOrgEnum returns the seller organization. It must only be called on a validated `ServerInfo`.
func (s *ServerInfo) SellerOrgEnum() networkinfo.Org {
	org, _ := networkinfo.NewOrgFromString(s.SellerOrg)
	return org
}

// ToAssetNetwork builds the network description out of the config. Organizations with unsupported names are skipped.
func (s *ServerInfo) ToAssetNetwork() *networkinfo.AssetNetwork {
	ret := &networkinfo.AssetNetwork{
		ChannelID:        s.Channel,
		ChaincodeID:      s.Chaincode,
		MemberCollection: s.MemberCollection,
		Orgs:             make(map[networkinfo.Org]*networkinfo.OrgProfile),
	}

	for name, info := range s.Orgs {
		org, err := networkinfo.NewOrgFromString(name)
		if err != nil || info == nil {
			continue
		}

		ret.Orgs[org] = &networkinfo.OrgProfile{
			Org:               org,
			Name:              org.String(),
			MSPID:             info.MSPID,
			ProfilePath:       info.ConnectionProfile,
			CAName:            info.CAName,
			AdminID:           info.AdminID,
			AdminSecret:       info.AdminSecret,
			UserID:            info.UserID,
			Affiliation:       info.Affiliation,
			PrivateCollection: info.PrivateCollection,
		}
	}

	return ret
}

// AssetServiceOptions extracts the options of the asset service out of the config.
func (s *ServerInfo) AssetServiceOptions() service.AssetServiceOptions {
	policy, _ := service.ParseVerificationPolicy(s.Verification)
	algorithm, _ := service.ParseDigestAlgorithm(s.DigestAlgorithm)

	return service.AssetServiceOptions{
		DigestAlgorithm:    algorithm,
		VerificationPolicy: policy,
		MaxConcurrentFlows: s.MaxConcurrentFlows,
	}
}
