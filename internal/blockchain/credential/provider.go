package credential

import (
	"context"
	"sync"
	"time"

	"gitee.com/czyczk/sbom-asset-transfer/internal/networkinfo"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Provider hands out credentials for the application users of the organizations. Credentials are enrolled on first use and cached afterwards.
type Provider struct {
	enrollers     map[string]Enroller // Org name -> the enroller talking to the CA of the org
	enrollTimeout time.Duration

	mu    sync.RWMutex
	cache map[Key]*Credential
	group singleflight.Group
}

// NewProvider creates a provider. `enrollers` takes an organization name to perform a lookup. An enrollment is bounded by `enrollTimeout` instead of by the context of any caller. Zero for no bound.
func NewProvider(enrollers map[string]Enroller, enrollTimeout time.Duration) *Provider {
	return &Provider{
		enrollers:     enrollers,
		enrollTimeout: enrollTimeout,
		cache:         make(map[Key]*Credential),
	}
}

// GetCached returns the cached credential of the user or nil.
func (p *Provider) GetCached(orgName, userID string) *Credential {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.cache[Key{OrgName: orgName, UserID: userID}]
}

// Get returns the credential of the application user of the organization. Concurrent callers asking for an uncached credential share a single enrollment.
func (p *Provider) Get(ctx context.Context, profile *networkinfo.OrgProfile) (*Credential, error) {
	if cred := p.GetCached(profile.Name, profile.UserID); cred != nil {
		return cred, nil
	}

	key := Key{OrgName: profile.Name, UserID: profile.UserID}
	ch := p.group.DoChan(key.String(), func() (interface{}, error) {
		// Another flight may have populated the cache between the read and now
		if cred := p.GetCached(profile.Name, profile.UserID); cred != nil {
			return cred, nil
		}

		// Not bound to any one caller
		flightCtx, cancel := p.flightContext()
		defer cancel()

		cred, err := p.enroll(flightCtx, profile)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.cache[key] = cred
		p.mu.Unlock()

		return cred, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Credential), nil
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "cannot get the credential of %v", key)
	}
}

func (p *Provider) flightContext() (context.Context, context.CancelFunc) {
	if p.enrollTimeout <= 0 {
		return context.WithCancel(context.Background())
	}

	return context.WithTimeout(context.Background(), p.enrollTimeout)
}

func (p *Provider) enroll(ctx context.Context, profile *networkinfo.OrgProfile) (*Credential, error) {
	enroller, ok := p.enrollers[profile.Name]
	if !ok {
		return nil, errors.Wrapf(networkinfo.ErrUnsupportedOrg, "no enroller for '%v'", profile.Name)
	}

	log.WithField("org", profile.Name).Infof("Enrolling %v@%v...", profile.UserID, profile.Name)

	if err := enroller.EnrollAdmin(ctx, profile); err != nil {
		return nil, errors.Wrapf(err, "cannot enroll the admin of '%v'", profile.Name)
	}

	cred, err := enroller.RegisterAndEnrollUser(ctx, profile, profile.UserID, profile.Affiliation)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot register and enroll %v@%v", profile.UserID, profile.Name)
	}

	return cred, nil
}
