package networkinfo

import (
	"github.com/pkg/errors"
)

// OrgProfile contains everything needed to act as the application user of one organization.
type OrgProfile struct {
	Org               Org
	Name              string // The organization name as in the connection profile (e.g. "Org1")
	MSPID             string // The MSP ID of the organization (e.g. "Org1MSP")
	ProfilePath       string // The path to the SDK connection profile of the organization
	CAName            string // The CA of the organization (e.g. "ca.org1.example.com")
	AdminID           string // The enrollment ID of the CA registrar
	AdminSecret       string // The enrollment secret of the CA registrar
	UserID            string // The application user that submits and evaluates transactions
	Affiliation       string // The affiliation used to register the application user
	PrivateCollection string // The implicit private data collection of the organization
}

// AssetNetwork describes the channel, the chaincode and the participating organizations. It is built once from the configuration and handed to the services.
type AssetNetwork struct {
	ChannelID        string
	ChaincodeID      string
	MemberCollection string // The collection shared by all members (e.g. "assetCollection")
	Orgs             map[Org]*OrgProfile
}

// Profile returns the profile of the organization. An organization without a profile is unsupported.
func (n *AssetNetwork) Profile(org Org) (*OrgProfile, error) {
	profile, ok := n.Orgs[org]
	if !ok || profile == nil {
		return nil, errors.Wrapf(ErrUnsupportedOrg, "'%v' is not configured", org)
	}

	return profile, nil
}

// ProfileByName resolves a symbolic organization name and returns its profile.
func (n *AssetNetwork) ProfileByName(orgName string) (*OrgProfile, error) {
	org, err := NewOrgFromString(orgName)
	if err != nil {
		return nil, err
	}

	return n.Profile(org)
}

// DiscoveryCollections returns the collections whose endorsement policies are of interest when the organization invokes the chaincode.
func (n *AssetNetwork) DiscoveryCollections(profile *OrgProfile) []string {
	return []string{n.MemberCollection, profile.PrivateCollection}
}
