package budgetcontrol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farxc/budget_engine/internal/apperrors"
	"github.com/farxc/budget_engine/internal/store"
)

type fakeTransferRepo struct {
	rows   map[int64]*store.Transfer
	nextID int64
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{rows: make(map[int64]*store.Transfer), nextID: 1}
}

func (r *fakeTransferRepo) Insert(ctx context.Context, t *store.Transfer) error {
	t.ID = r.nextID
	r.nextID++
	clone := *t
	r.rows[t.ID] = &clone
	return nil
}

func (r *fakeTransferRepo) GetByID(ctx context.Context, id int64) (*store.Transfer, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTransferRepo) Update(ctx context.Context, t *store.Transfer) error {
	if _, ok := r.rows[t.ID]; !ok {
		return apperrors.ErrNotFound
	}
	clone := *t
	r.rows[t.ID] = &clone
	return nil
}

func (r *fakeTransferRepo) List(ctx context.Context, ano int, status string) ([]store.Transfer, error) {
	var out []store.Transfer
	for _, t := range r.rows {
		if t.Ano != ano {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTransferRepo) NetAdjustments(ctx context.Context, ano int, mes string) ([]store.CenterAdjustment, error) {
	net := map[string]float64{}
	for _, t := range r.rows {
		if t.Ano != ano || t.Status != store.TransferAprovado {
			continue
		}
		if mes != "" && t.MesCompetencia != mes {
			continue
		}
		net[t.CentroDestinoCodigo] += t.Valor
		net[t.CentroOrigemCodigo] -= t.Valor
	}
	var out []store.CenterAdjustment
	for codigo, valor := range net {
		out = append(out, store.CenterAdjustment{CentroGastoCodigo: codigo, Valor: valor})
	}
	return out, nil
}

func validTransfer() store.Transfer {
	return store.Transfer{
		Ano:                 2026,
		CentroOrigemCodigo:  "01020504001",
		CentroDestinoCodigo: "01020501001",
		Ativo:               "GASCOM",
		ContaContabilCodigo: "3010101",
		Valor:               2500,
		MesCompetencia:      "ABR",
		Justificativa:       "Reforço de manutenção no gasoduto",
		UsuarioSolicitante:  "bruno",
	}
}

func TestRequestStampsStatus(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	tr := validTransfer()
	require.NoError(t, svc.Request(context.Background(), &tr))

	assert.Equal(t, store.TransferSolicitado, tr.Status)
	assert.Equal(t, now, tr.DataSolicitacao)
	assert.Nil(t, tr.DataDecisao)
}

func TestRequestValidation(t *testing.T) {
	svc := NewService(newFakeTransferRepo(), nil)

	tr := validTransfer()
	tr.Valor = 0
	assert.Error(t, svc.Request(context.Background(), &tr))

	tr = validTransfer()
	tr.CentroDestinoCodigo = tr.CentroOrigemCodigo
	assert.Error(t, svc.Request(context.Background(), &tr))

	tr = validTransfer()
	tr.MesCompetencia = "XYZ"
	assert.Error(t, svc.Request(context.Background(), &tr))
}

func TestApproveFlow(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil)

	tr := validTransfer()
	require.NoError(t, svc.Request(context.Background(), &tr))

	approved, err := svc.Approve(context.Background(), tr.ID, "carla")
	require.NoError(t, err)
	assert.Equal(t, store.TransferAprovado, approved.Status)
	assert.Equal(t, "carla", approved.UsuarioDecisor)
	require.NotNil(t, approved.DataDecisao)

	// Deciding twice is an invalid transition.
	_, err = svc.Approve(context.Background(), tr.ID, "carla")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestRejectKeepsAuditNote(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil)

	tr := validTransfer()
	require.NoError(t, svc.Request(context.Background(), &tr))

	rejected, err := svc.Reject(context.Background(), tr.ID, "carla", "sem saldo na origem")
	require.NoError(t, err)
	assert.Equal(t, store.TransferRejeitado, rejected.Status)
	assert.Equal(t, "Reforço de manutenção no gasoduto [REJEIÇÃO: sem saldo na origem]", rejected.Justificativa)

	_, err = svc.Reject(context.Background(), tr.ID, "carla", "de novo")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil)

	tr := validTransfer()
	require.NoError(t, svc.Request(context.Background(), &tr))

	_, err := svc.Reject(context.Background(), tr.ID, "carla", "")
	assert.Error(t, err)
}

func TestNetAdjustmentsOnlyCountApproved(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := NewService(repo, nil)

	approved := validTransfer()
	require.NoError(t, svc.Request(context.Background(), &approved))
	_, err := svc.Approve(context.Background(), approved.ID, "carla")
	require.NoError(t, err)

	ignored := validTransfer()
	ignored.Valor = 9000
	require.NoError(t, svc.Request(context.Background(), &ignored))

	adjustments, err := svc.NetAdjustments(context.Background(), 2026, "")
	require.NoError(t, err)

	net := map[string]float64{}
	for _, adj := range adjustments {
		net[adj.CentroGastoCodigo] = adj.Valor
	}
	assert.Equal(t, -2500.0, net["01020504001"])
	assert.Equal(t, 2500.0, net["01020501001"])
}
