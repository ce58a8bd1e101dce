package store

import (
	"time"
)

// Provision status lifecycle. Only PENDENTE rows accept edits.
const (
	ProvisionPendente  = "PENDENTE"
	ProvisionRealizada = "REALIZADA"
	ProvisionCancelada = "CANCELADA"
)

// Transfer status lifecycle.
const (
	TransferSolicitado = "SOLICITADO"
	TransferAprovado   = "APROVADO"
	TransferRejeitado  = "REJEITADO"
)

// ActualEntry represents the 'lancamentos_realizados' table. Hierarchy
// fields are denormalized at ingestion time so aggregation queries never
// join against the reference datasets.
type ActualEntry struct {
	ID                  int64     `db:"id" json:"id"`
	Ano                 int       `db:"ano" json:"ano"`
	Mes                 string    `db:"mes" json:"mes"`
	CentroGastoCodigo   string    `db:"centro_gasto_codigo" json:"centro_gasto_codigo"`
	CentroDescricao     string    `db:"centro_descricao" json:"centro_descricao"`
	CodigoPai           string    `db:"codigo_pai" json:"codigo_pai"`
	Classe              string    `db:"classe" json:"classe"`
	Ativo               string    `db:"ativo" json:"ativo"`
	Regional            string    `db:"regional" json:"regional"`
	Base                string    `db:"base" json:"base"`
	ContaContabilCodigo string    `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	ContaDescricao      string    `db:"conta_descricao" json:"conta_descricao"`
	Valor               float64   `db:"valor" json:"valor"`
	Fornecedor          string    `db:"fornecedor" json:"fornecedor"`
	Documento           string    `db:"documento" json:"documento"`
	Usuario             string    `db:"usuario" json:"usuario"`
	DataCriacao         time.Time `db:"data_criacao" json:"data_criacao"`
	DataAtualizacao     time.Time `db:"data_atualizacao" json:"data_atualizacao"`
}

// Provision represents the 'provisoes' table.
type Provision struct {
	ID                    int64     `db:"id" json:"id"`
	Ano                   int       `db:"ano" json:"ano"`
	MesCompetencia        string    `db:"mes_competencia" json:"mes_competencia"`
	CentroGastoCodigo     string    `db:"centro_gasto_codigo" json:"centro_gasto_codigo"`
	Ativo                 string    `db:"ativo" json:"ativo"`
	ContaContabilCodigo   string    `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	ValorEstimado         float64   `db:"valor_estimado" json:"valor_estimado"`
	Status                string    `db:"status" json:"status"`
	JustificativaOBZ      string    `db:"justificativa_obz" json:"justificativa_obz"`
	TipoDespesa           string    `db:"tipo_despesa" json:"tipo_despesa"`
	NumeroContrato        string    `db:"numero_contrato" json:"numero_contrato"`
	CadastradoSistema     bool      `db:"cadastrado_sistema" json:"cadastrado_sistema"`
	NumeroRegistro        string    `db:"numero_registro" json:"numero_registro"`
	Regional              string    `db:"regional" json:"regional"`
	Base                  string    `db:"base" json:"base"`
	Usuario               string    `db:"usuario" json:"usuario"`
	LancamentoRealizadoID *int64    `db:"lancamento_realizado_id" json:"lancamento_realizado_id,omitempty"`
	DataCriacao           time.Time `db:"data_criacao" json:"data_criacao"`
	DataAtualizacao       time.Time `db:"data_atualizacao" json:"data_atualizacao"`
}

// Transfer represents the 'remanejamentos' table, a budget amount moved
// between two cost centers inside the same year.
type Transfer struct {
	ID                  int64      `db:"id" json:"id"`
	Ano                 int        `db:"ano" json:"ano"`
	CentroOrigemCodigo  string     `db:"centro_origem_codigo" json:"centro_origem_codigo"`
	CentroDestinoCodigo string     `db:"centro_destino_codigo" json:"centro_destino_codigo"`
	Ativo               string     `db:"ativo" json:"ativo"`
	ContaContabilCodigo string     `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	Valor               float64    `db:"valor" json:"valor"`
	MesCompetencia      string     `db:"mes_competencia" json:"mes_competencia"`
	Justificativa       string     `db:"justificativa" json:"justificativa"`
	Status              string     `db:"status" json:"status"`
	UsuarioSolicitante  string     `db:"usuario_solicitante" json:"usuario_solicitante"`
	UsuarioDecisor      string     `db:"usuario_decisor" json:"usuario_decisor"`
	DataSolicitacao     time.Time  `db:"data_solicitacao" json:"data_solicitacao"`
	DataDecisao         *time.Time `db:"data_decisao" json:"data_decisao,omitempty"`
}

// ForecastScenario represents the 'forecast_cenarios' table.
type ForecastScenario struct {
	ID          int64     `db:"id" json:"id"`
	Nome        string    `db:"nome" json:"nome"`
	Descricao   string    `db:"descricao" json:"descricao"`
	Ano         int       `db:"ano" json:"ano"`
	Metodo      string    `db:"metodo" json:"metodo"`
	CriadoPor   string    `db:"criado_por" json:"criado_por"`
	DataCriacao time.Time `db:"data_criacao" json:"data_criacao"`
}

// ForecastEntry represents the 'forecast_lancamentos' table, one predicted
// month for one account inside a scenario.
type ForecastEntry struct {
	ID                  int64   `db:"id" json:"id"`
	CenarioID           int64   `db:"cenario_id" json:"cenario_id"`
	ContaContabilCodigo string  `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	Ano                 int     `db:"ano" json:"ano"`
	Mes                 string  `db:"mes" json:"mes"`
	ValorPrevisto       float64 `db:"valor_previsto" json:"valor_previsto"`
	LimiteInferior      float64 `db:"limite_inferior" json:"limite_inferior"`
	LimiteSuperior      float64 `db:"limite_superior" json:"limite_superior"`
}

// MonthTotal is a GROUP BY mes aggregation row.
type MonthTotal struct {
	Mes   string  `db:"mes" json:"mes"`
	Total float64 `db:"total" json:"total"`
}

// CenterTotal is a GROUP BY centro_gasto_codigo aggregation row.
type CenterTotal struct {
	CentroGastoCodigo string  `db:"centro_gasto_codigo" json:"centro_gasto_codigo"`
	Ativo             string  `db:"ativo" json:"ativo"`
	Total             float64 `db:"total" json:"total"`
}

// AccountTotal is a GROUP BY conta_contabil_codigo aggregation row.
type AccountTotal struct {
	ContaContabilCodigo string  `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	Descricao           string  `db:"descricao" json:"descricao"`
	Total               float64 `db:"total" json:"total"`
}

// AtivoTotal is a GROUP BY ativo aggregation row.
type AtivoTotal struct {
	Ativo string  `db:"ativo" json:"ativo"`
	Total float64 `db:"total" json:"total"`
}

// EntryStats summarizes a year of ledger activity.
type EntryStats struct {
	TotalLancamentos int64   `db:"total_lancamentos" json:"total_lancamentos"`
	ValorTotal       float64 `db:"valor_total" json:"valor_total"`
	MesesComDados    int     `db:"meses_com_dados" json:"meses_com_dados"`
	CentrosDistintos int     `db:"centros_distintos" json:"centros_distintos"`
	ContasDistintas  int     `db:"contas_distintas" json:"contas_distintas"`
}

// AccountMonthTotal is one historical point of an account series, used as
// forecasting input.
type AccountMonthTotal struct {
	ContaContabilCodigo string  `db:"conta_contabil_codigo" json:"conta_contabil_codigo"`
	Ano                 int     `db:"ano" json:"ano"`
	Mes                 string  `db:"mes" json:"mes"`
	Total               float64 `db:"total" json:"total"`
}

// CenterAdjustment is the net approved transfer amount for one cost center.
// Positive means the center received budget, negative means it gave some up.
type CenterAdjustment struct {
	CentroGastoCodigo string  `db:"centro_gasto_codigo" json:"centro_gasto_codigo"`
	Valor             float64 `db:"valor" json:"valor"`
}

// EntryFilter narrows ledger listings. Ano is required, everything else is
// optional and matched exactly when non-empty. ApenasCOS is tri-state: nil
// keeps every row, true keeps only administrative costs (the COS group)
// and false excludes them.
type EntryFilter struct {
	Ano                 int
	Mes                 string
	CentroGastoCodigo   string
	Ativo               string
	ContaContabilCodigo string
	ApenasCOS           *bool
}

// ProvisionFilter narrows provision listings. Every field is optional;
// a zero Ano matches every year, which lets callers follow a provision
// lifecycle across year boundaries.
type ProvisionFilter struct {
	Ano               int
	Mes               string
	Status            string
	CentroGastoCodigo string
	Ativo             string
	Regional          string
}
