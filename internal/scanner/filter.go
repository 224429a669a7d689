package scanner

import (
	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// FilterConfig contiene los parámetros configurables de filtrado.
type FilterConfig struct {
	// MinProfitPct descarta arbitrajes con un beneficio menor (0 = todos).
	MinProfitPct float64
	// MaxProfitPct descarta arbitrajes con un beneficio sospechosamente alto,
	// casi siempre una cuota mal extraída (0 = sin límite).
	MaxProfitPct float64
}

// DefaultFilterConfig no descarta nada.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{}
}

// Filter aplica los filtros configurados sobre una lista de oportunidades.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply devuelve las oportunidades que pasan todos los filtros.
func (f *Filter) Apply(opps []domain.Opportunity) []domain.Opportunity {
	result := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if f.passes(opp) {
			result = append(result, opp)
		}
	}
	return result
}

// passes devuelve true si la oportunidad supera todos los criterios.
func (f *Filter) passes(opp domain.Opportunity) bool {
	if f.cfg.MinProfitPct > 0 && opp.Result.ProfitPct < f.cfg.MinProfitPct {
		return false
	}
	if f.cfg.MaxProfitPct > 0 && opp.Result.ProfitPct > f.cfg.MaxProfitPct {
		return false
	}
	return true
}
