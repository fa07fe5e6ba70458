package matcher

import (
	"sync"

	"go.uber.org/zap"

	"github.com/stueygo/recon-cli/internal/model"
)

// Engine owns the two input lists and derives match results on demand.
// All session state lives here: the courier registry snapshot, the
// currently installed partner ledger, and an upload generation counter
// that keeps a slow stale upload from overwriting a newer one.
type Engine struct {
	mu     sync.Mutex
	policy Policy

	couriers []model.Courier
	partners []model.PartnerRecord

	// nextGen hands out upload tokens; installedGen records the token of
	// the ledger currently installed. An install with a token at or below
	// installedGen is stale and discarded.
	nextGen      uint64
	installedGen uint64
}

// NewEngine creates an Engine with the given match policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// SetCouriers replaces the courier registry snapshot.
func (e *Engine) SetCouriers(couriers []model.Courier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.couriers = couriers
}

// BeginUpload reserves a generation token for an upload about to start.
// Call before the (possibly slow) file read, then pass the token to
// InstallLedger once the records are parsed.
func (e *Engine) BeginUpload() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextGen++
	return e.nextGen
}

// InstallLedger replaces the partner list if the token is still current.
// Returns false when a newer upload (or a clear) landed first; the caller
// should drop its records without side effects.
func (e *Engine) InstallLedger(token uint64, records []model.PartnerRecord) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if token <= e.installedGen {
		zap.L().Warn("discarding stale ledger upload",
			zap.Uint64("token", token),
			zap.Uint64("installed", e.installedGen),
		)
		return false
	}
	e.installedGen = token
	e.partners = records
	return true
}

// ClearLedger drops the partner list. The generation advances so that any
// upload still in flight cannot resurrect the cleared data.
func (e *Engine) ClearLedger() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextGen++
	e.installedGen = e.nextGen
	e.partners = nil
}

// Couriers returns the current courier registry snapshot.
func (e *Engine) Couriers() []model.Courier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.couriers
}

// PartnerCount reports the size of the installed ledger.
func (e *Engine) PartnerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.partners)
}

// Reconcile recomputes the full result list from the current inputs.
func (e *Engine) Reconcile() []model.MatchResult {
	e.mu.Lock()
	couriers := e.couriers
	partners := e.partners
	policy := e.policy
	e.mu.Unlock()

	return Reconcile(couriers, partners, policy)
}
