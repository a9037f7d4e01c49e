package networkinfo

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedOrg is returned when an organization name has no session-opening logic behind it.
var ErrUnsupportedOrg = errors.New("unsupported organization")

// Org enumerates the organizations this client knows how to act for.
type Org int

const (
	// Org1 is the organization that creates assets and sells them.
	Org1 Org = iota + 1
	// Org2 is the organization that buys assets.
	Org2
)

func (o Org) String() string {
	switch o {
	case Org1:
		return "Org1"
	case Org2:
		return "Org2"
	default:
		return fmt.Sprintf("Org(%d)", int(o))
	}
}

// NewOrgFromString gets the Org enum from its symbolic name. The match is case-insensitive. Any other name yields `ErrUnsupportedOrg`.
func NewOrgFromString(name string) (Org, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "org1":
		return Org1, nil
	case "org2":
		return Org2, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedOrg, "'%v'", name)
	}
}

// IsUnsupportedOrg reports whether the cause of err is `ErrUnsupportedOrg`.
func IsUnsupportedOrg(err error) bool {
	return errors.Cause(err) == ErrUnsupportedOrg
}
