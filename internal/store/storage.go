package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Entries interface {
		Insert(ctx context.Context, entry *ActualEntry) error
		GetByID(ctx context.Context, id int64) (*ActualEntry, error)
		Update(ctx context.Context, entry *ActualEntry) error
		Delete(ctx context.Context, id int64) error
		DeleteMonth(ctx context.Context, ano int, mes string) (int64, error)
		List(ctx context.Context, filter EntryFilter) ([]ActualEntry, error)
		TotalsByMonth(ctx context.Context, ano int) ([]MonthTotal, error)
		TotalsByCenter(ctx context.Context, ano int, mes string) ([]CenterTotal, error)
		TotalsByAccount(ctx context.Context, ano int, mes string) ([]AccountTotal, error)
		TotalsByAtivo(ctx context.Context, ano int, mes string) ([]AtivoTotal, error)
		Stats(ctx context.Context, ano int) (*EntryStats, error)
		MonthlySeriesByAccount(ctx context.Context, anoInicial, anoFinal int) ([]AccountMonthTotal, error)
	}

	Provisions interface {
		Insert(ctx context.Context, provision *Provision) error
		GetByID(ctx context.Context, id int64) (*Provision, error)
		Update(ctx context.Context, provision *Provision) error
		ApplyUpdates(ctx context.Context, provisions []*Provision) error
		List(ctx context.Context, filter ProvisionFilter) ([]Provision, error)
		PendingTotalsByMonth(ctx context.Context, ano int) ([]MonthTotal, error)
		PendingTotalsByCenter(ctx context.Context, ano int, mes string) ([]CenterTotal, error)
	}

	Transfers interface {
		Insert(ctx context.Context, transfer *Transfer) error
		GetByID(ctx context.Context, id int64) (*Transfer, error)
		Update(ctx context.Context, transfer *Transfer) error
		List(ctx context.Context, ano int, status string) ([]Transfer, error)
		NetAdjustments(ctx context.Context, ano int, mes string) ([]CenterAdjustment, error)
	}

	Forecasts interface {
		InsertScenario(ctx context.Context, scenario *ForecastScenario) error
		GetScenario(ctx context.Context, id int64) (*ForecastScenario, error)
		ListScenarios(ctx context.Context, ano int) ([]ForecastScenario, error)
		DeleteScenario(ctx context.Context, id int64) error
		InsertEntries(ctx context.Context, entries []ForecastEntry) error
		ListEntries(ctx context.Context, cenarioID int64) ([]ForecastEntry, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Entries:    &EntriesStore{db: db},
		Provisions: &ProvisionsStore{db: db},
		Transfers:  &TransfersStore{db: db},
		Forecasts:  &ForecastsStore{db: db},
	}
}
