package service

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const maxAssetNumber = 1000

// ErrAssetIDsExhausted is returned when every asset ID has been handed out in this process.
var ErrAssetIDsExhausted = errors.New("all asset IDs have been used")

// assetIDGenerator hands out IDs of the form "asset<n>" with n random in [1, 1000]. An ID is not handed out twice in the same process unless it is released.
type assetIDGenerator struct {
	mu     sync.Mutex
	rnd    *rand.Rand
	issued map[int]bool
}

func newAssetIDGenerator(seed int64) *assetIDGenerator {
	return &assetIDGenerator{
		rnd:    rand.New(rand.NewSource(seed)),
		issued: make(map[int]bool),
	}
}

func newTimeSeededAssetIDGenerator() *assetIDGenerator {
	return newAssetIDGenerator(time.Now().UnixNano())
}

func (g *assetIDGenerator) next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.issued) >= maxAssetNumber {
		return "", ErrAssetIDsExhausted
	}

	n := g.rnd.Intn(maxAssetNumber) + 1
	for g.issued[n] {
		n = n%maxAssetNumber + 1
	}
	g.issued[n] = true

	return fmt.Sprintf("asset%d", n), nil
}

// release makes an ID available again, e.g. when its creation failed.
func (g *assetIDGenerator) release(assetID string) {
	var n int
	if _, err := fmt.Sscanf(assetID, "asset%d", &n); err != nil {
		return
	}

	g.mu.Lock()
	delete(g.issued, n)
	g.mu.Unlock()
}
