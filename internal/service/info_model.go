package service

import (
	"context"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/bcao"
	"gitee.com/czyczk/sbom-asset-transfer/internal/blockchain/credential"
	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	ipfs "github.com/ipfs/go-ipfs-api"
	"gorm.io/gorm"
)

// CredentialProvider hands out the credential of the application user of an organization.
type CredentialProvider interface {
	Get(ctx context.Context, profile *networkinfo.OrgProfile) (*credential.Credential, error)
}

// Info contains the collaborators of the services. `DB` and `IPFSSh` are optional.
type Info struct {
	Network     *networkinfo.AssetNetwork
	SellerOrg   networkinfo.Org // The organization that creates and sells assets
	Credentials CredentialProvider
	Connector   bcao.IConnector
	CallTimeout time.Duration // Bound of every remote call. Zero for no bound.
	DB          *gorm.DB
	IPFSSh      *ipfs.Shell
}
