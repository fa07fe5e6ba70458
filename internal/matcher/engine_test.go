package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stueygo/recon-cli/internal/model"
)

func TestEngine_InstallAndReconcile(t *testing.T) {
	e := NewEngine(Policy{})
	e.SetCouriers([]model.Courier{courier("Иванов Иван", "Москва", "79991234567")})

	token := e.BeginUpload()
	ok := e.InstallLedger(token, []model.PartnerRecord{
		partner("Иванов Иван", "Москва", "79991234567", 1500, 42),
	})
	require.True(t, ok)
	assert.Equal(t, 1, e.PartnerCount())

	results := e.Reconcile()
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
}

func TestEngine_StaleUploadDiscarded(t *testing.T) {
	e := NewEngine(Policy{})

	slow := e.BeginUpload()
	fast := e.BeginUpload()

	require.True(t, e.InstallLedger(fast, []model.PartnerRecord{
		partner("Новый", "", "", 1, 1),
	}))

	// The slower read resolves after the newer one: it must not win.
	assert.False(t, e.InstallLedger(slow, []model.PartnerRecord{
		partner("Старый", "", "", 2, 2),
	}))
	assert.Equal(t, 1, e.PartnerCount())
}

func TestEngine_ClearBlocksInFlightUpload(t *testing.T) {
	e := NewEngine(Policy{})

	token := e.BeginUpload()
	e.ClearLedger()

	assert.False(t, e.InstallLedger(token, []model.PartnerRecord{
		partner("Иванов Иван", "", "", 1, 1),
	}))
	assert.Equal(t, 0, e.PartnerCount())
}

func TestEngine_ClearDropsPartners(t *testing.T) {
	e := NewEngine(Policy{})
	token := e.BeginUpload()
	require.True(t, e.InstallLedger(token, []model.PartnerRecord{
		partner("Иванов Иван", "", "", 1, 1),
	}))

	e.ClearLedger()
	assert.Equal(t, 0, e.PartnerCount())

	e.SetCouriers([]model.Courier{courier("Иванов Иван", "", "")})
	results := e.Reconcile()
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
}
