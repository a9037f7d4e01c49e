package credential

import (
	"context"
	"sync"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"github.com/hyperledger/fabric-sdk-go/pkg/client/msp"
	mspctx "github.com/hyperledger/fabric-sdk-go/pkg/common/providers/msp"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FabricEnroller enrolls identities with the Fabric CA of one organization. Enrolled identities are kept in the credential store configured in the connection profile, which acts as the local wallet.
//
// The connection profile must declare the registrar of the CA (`certificateAuthorities.<ca>.registrar`) with the same enrollment ID as the configured admin.
type FabricEnroller struct {
	sdk       *fabsdk.FabricSDK
	mspClient *msp.Client
	mu        sync.Mutex
}

// NewFabricEnroller creates an SDK instance from the connection profile of the organization and an MSP client on top of it.
func NewFabricEnroller(profile *networkinfo.OrgProfile) (*FabricEnroller, error) {
	sdk, err := fabsdk.New(config.FromFile(profile.ProfilePath))
	if err != nil {
		return nil, errors.Wrapf(err, "failed initializing Fabric SDK for '%v'", profile.Name)
	}

	opts := []msp.ClientOption{msp.WithOrg(profile.Name)}
	if profile.CAName != "" {
		opts = append(opts, msp.WithCAInstance(profile.CAName))
	}

	mspClient, err := msp.New(sdk.Context(), opts...)
	if err != nil {
		sdk.Close()
		return nil, errors.Wrapf(err, "cannot create an MSP client for '%v'", profile.Name)
	}

	return &FabricEnroller{sdk: sdk, mspClient: mspClient}, nil
}

// EnrollAdmin implements `Enroller`.
func (e *FabricEnroller) EnrollAdmin(ctx context.Context, profile *networkinfo.OrgProfile) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := e.mspClient.GetSigningIdentity(profile.AdminID)
	if err == nil {
		log.Debugf("An identity for the admin user '%v' already exists in the wallet", profile.AdminID)
		return nil
	} else if err != msp.ErrUserNotFound {
		return errors.Wrapf(err, "cannot look up %v@%v", profile.AdminID, profile.Name)
	}

	if err = e.mspClient.Enroll(profile.AdminID, msp.WithSecret(profile.AdminSecret)); err != nil {
		return errors.Wrapf(err, "cannot enroll %v@%v", profile.AdminID, profile.Name)
	}

	log.Infof("Successfully enrolled admin user '%v' of '%v' and imported it into the wallet", profile.AdminID, profile.Name)

	return nil
}

// RegisterAndEnrollUser implements `Enroller`.
func (e *FabricEnroller) RegisterAndEnrollUser(ctx context.Context, profile *networkinfo.OrgProfile, userID, affiliation string) (*Credential, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	identity, err := e.mspClient.GetSigningIdentity(userID)
	if err == nil {
		log.Debugf("An identity for the user '%v' already exists in the wallet", userID)
		return newCredential(profile, identity), nil
	} else if err != msp.ErrUserNotFound {
		return nil, errors.Wrapf(err, "cannot look up %v@%v", userID, profile.Name)
	}

	secret, err := e.mspClient.Register(&msp.RegistrationRequest{
		Name:        userID,
		Type:        "client",
		Affiliation: affiliation,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot register %v@%v", userID, profile.Name)
	}

	if err = e.mspClient.Enroll(userID, msp.WithSecret(secret)); err != nil {
		return nil, errors.Wrapf(err, "cannot enroll %v@%v", userID, profile.Name)
	}

	identity, err = e.mspClient.GetSigningIdentity(userID)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read the enrolled identity of %v@%v", userID, profile.Name)
	}

	log.Infof("Successfully registered and enrolled user '%v' of '%v' and imported it into the wallet", userID, profile.Name)

	return newCredential(profile, identity), nil
}

// Close releases the SDK instance.
func (e *FabricEnroller) Close() {
	e.sdk.Close()
}

func newCredential(profile *networkinfo.OrgProfile, identity mspctx.SigningIdentity) *Credential {
	return &Credential{
		OrgName:     profile.Name,
		MSPID:       identity.Identifier().MSPID,
		UserID:      identity.Identifier().ID,
		Certificate: identity.EnrollmentCertificate(),
	}
}
