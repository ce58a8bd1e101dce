// Package provisioning drives the lifecycle of accrued commitments. Only
// PENDENTE rows are mutable; realization links a provision to the actual
// entry that settled it and cancellation keeps an audit note in the
// justification text.
package provisioning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/farxc/budget_engine/internal/apperrors"
	"github.com/farxc/budget_engine/internal/reference"
	"github.com/farxc/budget_engine/internal/store"
)

// ConflictTolerance absorbs storage timestamp rounding when comparing a
// caller's last-known update stamp against the stored one.
const ConflictTolerance = time.Second

type ProvisionRepo interface {
	Insert(ctx context.Context, provision *store.Provision) error
	GetByID(ctx context.Context, id int64) (*store.Provision, error)
	Update(ctx context.Context, provision *store.Provision) error
	ApplyUpdates(ctx context.Context, provisions []*store.Provision) error
	List(ctx context.Context, filter store.ProvisionFilter) ([]store.Provision, error)
}

type EntryRepo interface {
	GetByID(ctx context.Context, id int64) (*store.ActualEntry, error)
}

type Service struct {
	provisions ProvisionRepo
	entries    EntryRepo
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(provisions ProvisionRepo, entries EntryRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provisions: provisions,
		entries:    entries,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock injects a deterministic clock.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Create persists a new provision with status PENDENTE.
func (s *Service) Create(ctx context.Context, provision *store.Provision) error {
	if err := validateProvision(provision); err != nil {
		return err
	}

	now := s.now()
	provision.Status = store.ProvisionPendente
	provision.DataCriacao = now
	provision.DataAtualizacao = now
	if err := s.provisions.Insert(ctx, provision); err != nil {
		return err
	}

	s.logger.Info("provision created",
		zap.String("op", "provisioning.Create"),
		zap.Int64("id", provision.ID),
		zap.String("centro", provision.CentroGastoCodigo))
	return nil
}

// RowError ties a batch failure to the position of the offending row.
type RowError struct {
	Linha  int    `json:"linha"`
	Motivo string `json:"motivo"`
}

// BatchCreate attempts every row independently. One bad row never aborts
// the rest; its failure is reported by position instead.
func (s *Service) BatchCreate(ctx context.Context, rows []store.Provision) (int, []RowError) {
	created := 0
	var failures []RowError
	for i := range rows {
		if err := s.Create(ctx, &rows[i]); err != nil {
			failures = append(failures, RowError{Linha: i, Motivo: err.Error()})
			continue
		}
		created++
	}
	return created, failures
}

// UpdateItem carries one batch mutation. Nil fields are left untouched.
// LastKnownUpdate, when present, enables the optimistic concurrency check.
type UpdateItem struct {
	ID                int64      `json:"id"`
	ValorEstimado     *float64   `json:"valor_estimado,omitempty"`
	Status            *string    `json:"status,omitempty"`
	NumeroRegistro    *string    `json:"numero_registro,omitempty"`
	CadastradoSistema *bool      `json:"cadastrado_sistema,omitempty"`
	LastKnownUpdate   *time.Time `json:"last_known_update,omitempty"`
}

// Outcome classification for one batch update row.
const (
	OutcomeAtualizado = "atualizado"
	OutcomeConflito   = "conflito"
	OutcomeErro       = "erro"
)

type UpdateOutcome struct {
	ID       int64  `json:"id"`
	Situacao string `json:"situacao"`
	Motivo   string `json:"motivo,omitempty"`
}

type BatchResult struct {
	Updated    int             `json:"updated"`
	Conflicted int             `json:"conflicted"`
	Errored    int             `json:"errored"`
	Outcomes   []UpdateOutcome `json:"outcomes"`
}

// BatchUpdate validates every item, separating stale-timestamp conflicts
// from ordinary validation failures so callers know when to re-fetch. All
// accepted rows are committed together in one transaction, and only when
// at least one row was accepted.
func (s *Service) BatchUpdate(ctx context.Context, items []UpdateItem) (BatchResult, error) {
	result := BatchResult{Outcomes: make([]UpdateOutcome, 0, len(items))}
	var accepted []*store.Provision

	for _, item := range items {
		provision, err := s.provisions.GetByID(ctx, item.ID)
		if err != nil {
			result.Errored++
			result.Outcomes = append(result.Outcomes, UpdateOutcome{ID: item.ID, Situacao: OutcomeErro, Motivo: err.Error()})
			continue
		}

		if item.LastKnownUpdate != nil && staleTimestamp(provision.DataAtualizacao, *item.LastKnownUpdate) {
			result.Conflicted++
			result.Outcomes = append(result.Outcomes, UpdateOutcome{
				ID:       item.ID,
				Situacao: OutcomeConflito,
				Motivo:   "registro alterado desde a última leitura",
			})
			continue
		}

		if err := applyItem(provision, item); err != nil {
			result.Errored++
			result.Outcomes = append(result.Outcomes, UpdateOutcome{ID: item.ID, Situacao: OutcomeErro, Motivo: err.Error()})
			continue
		}

		provision.DataAtualizacao = s.now()
		accepted = append(accepted, provision)
		result.Updated++
		result.Outcomes = append(result.Outcomes, UpdateOutcome{ID: item.ID, Situacao: OutcomeAtualizado})
	}

	if len(accepted) > 0 {
		if err := s.provisions.ApplyUpdates(ctx, accepted); err != nil {
			return BatchResult{}, err
		}
	}

	s.logger.Info("provision batch update",
		zap.String("op", "provisioning.BatchUpdate"),
		zap.Int("updated", result.Updated),
		zap.Int("conflicted", result.Conflicted),
		zap.Int("errored", result.Errored))
	return result, nil
}

// Update mutates a single PENDENTE provision, failing fast on any problem.
func (s *Service) Update(ctx context.Context, item UpdateItem) (*store.Provision, error) {
	provision, err := s.provisions.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if item.LastKnownUpdate != nil && staleTimestamp(provision.DataAtualizacao, *item.LastKnownUpdate) {
		return nil, apperrors.ErrConflict
	}
	if err := applyItem(provision, item); err != nil {
		return nil, err
	}

	provision.DataAtualizacao = s.now()
	if err := s.provisions.Update(ctx, provision); err != nil {
		return nil, err
	}
	return provision, nil
}

// Reconcile realizes a provision against the actual entry that settled
// it. The entry must already exist.
func (s *Service) Reconcile(ctx context.Context, id, entryID int64) (*store.Provision, error) {
	provision, err := s.provisions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if provision.Status != store.ProvisionPendente {
		return nil, fmt.Errorf("provisão %d em status %s: %w", id, provision.Status, apperrors.ErrInvalidTransition)
	}

	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	provision.Status = store.ProvisionRealizada
	provision.LancamentoRealizadoID = &entry.ID
	if provision.NumeroRegistro == "" {
		provision.NumeroRegistro = entry.Documento
	}
	if provision.NumeroRegistro == "" {
		provision.NumeroRegistro = fmt.Sprintf("LR-%d", entry.ID)
	}
	provision.DataAtualizacao = s.now()

	if err := s.provisions.Update(ctx, provision); err != nil {
		return nil, err
	}

	s.logger.Info("provision reconciled",
		zap.String("op", "provisioning.Reconcile"),
		zap.Int64("id", id),
		zap.Int64("lancamento_id", entryID))
	return provision, nil
}

// Cancel moves a PENDENTE provision to CANCELADA, appending the reason to
// the justification. The prior justification text is never erased.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*store.Provision, error) {
	if reason == "" {
		return nil, fmt.Errorf("motivo do cancelamento é obrigatório")
	}

	provision, err := s.provisions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if provision.Status != store.ProvisionPendente {
		return nil, fmt.Errorf("provisão %d em status %s: %w", id, provision.Status, apperrors.ErrInvalidTransition)
	}

	provision.Status = store.ProvisionCancelada
	provision.JustificativaOBZ += fmt.Sprintf(" [CANCELADO: %s]", reason)
	provision.DataAtualizacao = s.now()

	if err := s.provisions.Update(ctx, provision); err != nil {
		return nil, err
	}
	return provision, nil
}

func (s *Service) List(ctx context.Context, filter store.ProvisionFilter) ([]store.Provision, error) {
	return s.provisions.List(ctx, filter)
}

func validateProvision(p *store.Provision) error {
	switch {
	case p.Ano == 0:
		return fmt.Errorf("ano é obrigatório")
	case p.CentroGastoCodigo == "":
		return fmt.Errorf("centro de gasto é obrigatório")
	case p.ContaContabilCodigo == "":
		return fmt.Errorf("conta contábil é obrigatória")
	case !reference.IsMonth(p.MesCompetencia):
		return fmt.Errorf("mês de competência inválido: %q", p.MesCompetencia)
	}
	return nil
}

func applyItem(p *store.Provision, item UpdateItem) error {
	if p.Status != store.ProvisionPendente {
		return fmt.Errorf("provisão %d em status %s: %w", p.ID, p.Status, apperrors.ErrInvalidTransition)
	}

	if item.ValorEstimado != nil {
		p.ValorEstimado = *item.ValorEstimado
	}
	if item.NumeroRegistro != nil {
		p.NumeroRegistro = *item.NumeroRegistro
	}
	if item.CadastradoSistema != nil {
		p.CadastradoSistema = *item.CadastradoSistema
	}
	if item.Status != nil {
		switch *item.Status {
		case store.ProvisionPendente:
			// no transition
		case store.ProvisionRealizada:
			if p.NumeroRegistro == "" {
				return fmt.Errorf("realização exige número de registro")
			}
			p.Status = store.ProvisionRealizada
		case store.ProvisionCancelada:
			p.Status = store.ProvisionCancelada
		default:
			return fmt.Errorf("status desconhecido %q: %w", *item.Status, apperrors.ErrInvalidTransition)
		}
	}
	return nil
}

func staleTimestamp(stored, lastKnown time.Time) bool {
	diff := stored.Sub(lastKnown)
	if diff < 0 {
		diff = -diff
	}
	return diff > ConflictTolerance
}
