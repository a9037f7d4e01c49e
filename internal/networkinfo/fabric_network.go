package networkinfo

import (
	"fmt"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/core"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// FabricNetworkConfig contains config info about the network which is needed by a client.
type FabricNetworkConfig struct {
	Organizations          map[string]FabricOrganization
	Peers                  map[string]FabricPeer
	CertificateAuthorities map[string]FabricCertificateAuthority
}

// FabricOrganization contains info about an organization which is needed by a client.
type FabricOrganization struct {
	Name                   string
	MSPID                  string   `mapstructure:"mspid"`
	CryptoPath             string   `mapstructure:"cryptoPath"`
	Peers                  []string `mapstructure:"peers"`
	CertificateAuthorities []string `mapstructure:"certificateAuthorities"`
}

// FabricPeer contains info about a peer which is needed by a client.
type FabricPeer struct {
	Name string
	URL  string `mapstructure:"url"`
}

// FabricCertificateAuthority contains info about a CA which is needed by a client.
type FabricCertificateAuthority struct {
	Name   string
	URL    string `mapstructure:"url"`
	CAName string `mapstructure:"caName"`
}

// Decodes a section of the config backend into `result`.
func decodeSection(configBackend core.ConfigBackend, section string, result interface{}) error {
	raw, ok := configBackend.Lookup(section)
	if !ok {
		return fmt.Errorf("error parsing %v", section)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}

	if err = decoder.Decode(raw); err != nil {
		return errors.Wrapf(err, "error parsing %v", section)
	}

	return nil
}

// ParseFabricOrganizations parses the "organizations" section of the config from the config backend instance provided and returns a map of FabricOrganization instances.
func ParseFabricOrganizations(configBackend core.ConfigBackend) (result map[string]FabricOrganization, err error) {
	organizationsMap := make(map[string]FabricOrganization)
	if err = decodeSection(configBackend, "organizations", &organizationsMap); err != nil {
		return
	}

	result = make(map[string]FabricOrganization)
	for k, v := range organizationsMap {
		v.Name = k
		result[k] = v
	}

	return
}

// ParseFabricPeers parses the "peers" section of the config from the config backend instance provided and returns a map of FabricPeer instances.
func ParseFabricPeers(configBackend core.ConfigBackend) (result map[string]FabricPeer, err error) {
	peersMap := make(map[string]FabricPeer)
	if err = decodeSection(configBackend, "peers", &peersMap); err != nil {
		return
	}

	result = make(map[string]FabricPeer)
	for k, v := range peersMap {
		v.Name = k
		result[k] = v
	}

	return
}

// ParseFabricCertificateAuthorities parses the "certificateAuthorities" section of the config from the config backend instance provided.
func ParseFabricCertificateAuthorities(configBackend core.ConfigBackend) (result map[string]FabricCertificateAuthority, err error) {
	caMap := make(map[string]FabricCertificateAuthority)
	if err = decodeSection(configBackend, "certificateAuthorities", &caMap); err != nil {
		return
	}

	result = make(map[string]FabricCertificateAuthority)
	for k, v := range caMap {
		v.Name = k
		result[k] = v
	}

	return
}

// ParseFabricNetworkConfig parses multiple sections of the SDK config from the config backend instance provided.
func ParseFabricNetworkConfig(configBackend core.ConfigBackend) (result FabricNetworkConfig, err error) {
	organizations, err := ParseFabricOrganizations(configBackend)
	if err != nil {
		return
	}

	peers, err := ParseFabricPeers(configBackend)
	if err != nil {
		return
	}

	cas, err := ParseFabricCertificateAuthorities(configBackend)
	if err != nil {
		return
	}

	result = FabricNetworkConfig{Organizations: organizations, Peers: peers, CertificateAuthorities: cas}
	return
}

// LoadFabricNetworkConfig reads a connection profile from disk and parses it.
func LoadFabricNetworkConfig(profilePath string) (result FabricNetworkConfig, err error) {
	backends, err := config.FromFile(profilePath)()
	if err != nil {
		err = errors.Wrapf(err, "cannot read connection profile '%v'", profilePath)
		return
	}

	if len(backends) == 0 {
		err = fmt.Errorf("connection profile '%v' is empty", profilePath)
		return
	}

	return ParseFabricNetworkConfig(backends[0])
}

// VerifyOrgProfile checks that the organization described by the profile is present in the parsed connection profile with the same MSP ID and CA.
func VerifyOrgProfile(profile *OrgProfile, networkConfig FabricNetworkConfig) error {
	var org *FabricOrganization
	for name, o := range networkConfig.Organizations {
		if name == profile.Name || (o.MSPID == profile.MSPID && o.MSPID != "") {
			o := o
			org = &o
			break
		}
	}

	if org == nil {
		return fmt.Errorf("organization '%v' is not found in '%v'", profile.Name, profile.ProfilePath)
	}

	if org.MSPID != profile.MSPID {
		return fmt.Errorf("organization '%v' has MSP ID '%v' in the connection profile, but '%v' is configured", profile.Name, org.MSPID, profile.MSPID)
	}

	if profile.CAName != "" {
		if _, ok := networkConfig.CertificateAuthorities[profile.CAName]; !ok {
			return fmt.Errorf("certificate authority '%v' of organization '%v' is not found in '%v'", profile.CAName, profile.Name, profile.ProfilePath)
		}
	}

	return nil
}
