// Package budgetcontrol handles budget transfer requests between cost
// centers. Approved transfers shift effective budget, which the
// reconciliation engine folds into its per-center comparison.
package budgetcontrol

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/farxc/budget_engine/internal/apperrors"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

type TransferRepo interface {
	Insert(ctx context.Context, transfer *store.Transfer) error
	GetByID(ctx context.Context, id int64) (*store.Transfer, error)
	Update(ctx context.Context, transfer *store.Transfer) error
	List(ctx context.Context, ano int, status string) ([]store.Transfer, error)
	NetAdjustments(ctx context.Context, ano int, mes string) ([]store.CenterAdjustment, error)
}

type Service struct {
	transfers TransferRepo
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(transfers TransferRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{transfers: transfers, now: time.Now, logger: logger}
}

// SetClock injects a deterministic clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Request registers a new transfer with status SOLICITADO.
func (s *Service) Request(ctx context.Context, transfer *store.Transfer) error {
	if err := validateTransfer(transfer); err != nil {
		return err
	}

	transfer.Status = store.TransferSolicitado
	transfer.DataSolicitacao = s.now()
	transfer.UsuarioDecisor = ""
	transfer.DataDecisao = nil
	if err := s.transfers.Insert(ctx, transfer); err != nil {
		return err
	}

	s.logger.Info("transfer requested",
		zap.String("op", "budgetcontrol.Request"),
		zap.Int64("id", transfer.ID),
		zap.String("origem", transfer.CentroOrigemCodigo),
		zap.String("destino", transfer.CentroDestinoCodigo),
		zap.Float64("valor", transfer.Valor))
	return nil
}

// Approve moves a SOLICITADO transfer to APROVADO.
func (s *Service) Approve(ctx context.Context, id int64, decisor string) (*store.Transfer, error) {
	transfer, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transfer.Status = store.TransferAprovado
	transfer.UsuarioDecisor = decisor
	transfer.DataDecisao = &now
	if err := s.transfers.Update(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// Reject moves a SOLICITADO transfer to REJEITADO, keeping the reason in
// the justification as an audit note.
func (s *Service) Reject(ctx context.Context, id int64, decisor, reason string) (*store.Transfer, error) {
	if reason == "" {
		return nil, fmt.Errorf("motivo da rejeição é obrigatório")
	}

	transfer, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	transfer.Status = store.TransferRejeitado
	transfer.UsuarioDecisor = decisor
	transfer.DataDecisao = &now
	transfer.Justificativa += fmt.Sprintf(" [REJEIÇÃO: %s]", reason)
	if err := s.transfers.Update(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *Service) List(ctx context.Context, ano int, status string) ([]store.Transfer, error) {
	return s.transfers.List(ctx, ano, status)
}

// NetAdjustments exposes the approved per-center budget shifts. An empty
// mes covers the whole year.
func (s *Service) NetAdjustments(ctx context.Context, ano int, mes string) ([]store.CenterAdjustment, error) {
	return s.transfers.NetAdjustments(ctx, ano, mes)
}

func (s *Service) pending(ctx context.Context, id int64) (*store.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer.Status != store.TransferSolicitado {
		return nil, fmt.Errorf("remanejamento %d em status %s: %w", id, transfer.Status, apperrors.ErrInvalidTransition)
	}
	return transfer, nil
}

func validateTransfer(t *store.Transfer) error {
	switch {
	case t.Ano == 0:
		return fmt.Errorf("ano é obrigatório")
	case t.CentroOrigemCodigo == "":
		return fmt.Errorf("centro de origem é obrigatório")
	case t.CentroDestinoCodigo == "":
		return fmt.Errorf("centro de destino é obrigatório")
	case t.CentroOrigemCodigo == t.CentroDestinoCodigo:
		return fmt.Errorf("origem e destino devem ser diferentes")
	case t.Valor <= 0:
		return fmt.Errorf("valor deve ser positivo")
	case t.MesCompetencia != "" && !reference.IsMonth(t.MesCompetencia):
		return fmt.Errorf("mês de competência inválido: %q", t.MesCompetencia)
	}
	return nil
}
