package credential

import (
	"context"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
)

// Credential is the enrollment material of a user of an organization. It is never mutated after creation.
type Credential struct {
	OrgName     string
	MSPID       string
	UserID      string
	Certificate []byte // The enrollment certificate in PEM
}

// Enroller talks to the certificate authority of an organization. Both operations must be idempotent.
type Enroller interface {
	// EnrollAdmin enrolls the CA registrar of the organization if it hasn't been enrolled.
	EnrollAdmin(ctx context.Context, profile *networkinfo.OrgProfile) error

	// RegisterAndEnrollUser registers and enrolls the user if it doesn't exist in the local credential store yet.
	//
	// Returns:
	//   the credential of the user
	RegisterAndEnrollUser(ctx context.Context, profile *networkinfo.OrgProfile, userID, affiliation string) (*Credential, error)
}

// Key identifies a credential in the cache.
type Key struct {
	OrgName string
	UserID  string
}

func (k Key) String() string {
	return k.UserID + "@" + k.OrgName
}
