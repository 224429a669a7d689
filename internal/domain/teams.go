package domain

// nhlTeamAliases: nombre completo → nombres alternativos que usan los feeds
// (ciudad, apodo, abreviatura). Las ciudades con dos equipos (New York) no
// tienen alias de ciudad.
var nhlTeamAliases = map[string][]string{
	"Anaheim Ducks":         {"Anaheim", "Ducks", "ANA"},
	"Boston Bruins":         {"Boston", "Bruins", "BOS"},
	"Buffalo Sabres":        {"Buffalo", "Sabres", "BUF"},
	"Calgary Flames":        {"Calgary", "Flames", "CGY"},
	"Carolina Hurricanes":   {"Carolina", "Hurricanes", "CAR"},
	"Chicago Blackhawks":    {"Chicago", "Blackhawks", "CHI"},
	"Colorado Avalanche":    {"Colorado", "Avalanche", "COL"},
	"Columbus Blue Jackets": {"Columbus", "Blue Jackets", "CBJ"},
	"Dallas Stars":          {"Dallas", "Stars", "DAL"},
	"Detroit Red Wings":     {"Detroit", "Red Wings", "DET"},
	"Edmonton Oilers":       {"Edmonton", "Oilers", "EDM"},
	"Florida Panthers":      {"Florida", "Panthers", "FLA"},
	"Los Angeles Kings":     {"Los Angeles", "LA Kings", "Kings", "LAK"},
	"Minnesota Wild":        {"Minnesota", "Wild", "MIN"},
	"Montreal Canadiens":    {"Montreal", "Montréal", "Montréal Canadiens", "Canadiens", "MTL"},
	"Nashville Predators":   {"Nashville", "Predators", "NSH"},
	"New Jersey Devils":     {"New Jersey", "Devils", "NJD"},
	"New York Islanders":    {"NY Islanders", "Islanders", "NYI"},
	"New York Rangers":      {"NY Rangers", "Rangers", "NYR"},
	"Ottawa Senators":       {"Ottawa", "Senators", "OTT"},
	"Philadelphia Flyers":   {"Philadelphia", "Flyers", "PHI"},
	"Pittsburgh Penguins":   {"Pittsburgh", "Penguins", "PIT"},
	"San Jose Sharks":       {"San Jose", "Sharks", "SJS"},
	"Seattle Kraken":        {"Seattle", "Kraken", "SEA"},
	"St. Louis Blues":       {"St Louis", "Saint Louis", "Blues", "STL"},
	"Tampa Bay Lightning":   {"Tampa Bay", "Tampa", "Lightning", "TBL"},
	"Toronto Maple Leafs":   {"Toronto", "Maple Leafs", "Leafs", "TOR"},
	"Utah Mammoth":          {"Utah", "Utah Hockey Club", "Mammoth", "UTA"},
	"Vancouver Canucks":     {"Vancouver", "Canucks", "VAN"},
	"Vegas Golden Knights":  {"Vegas", "Golden Knights", "VGK"},
	"Washington Capitals":   {"Washington", "Capitals", "WSH"},
	"Winnipeg Jets":         {"Winnipeg", "Jets", "WPG"},
}

// TeamAliases mapea identificadores normalizados a su identificador canónico.
type TeamAliases map[string]string

// DefaultTeamAliases devuelve la tabla NHL incorporada.
func DefaultTeamAliases() TeamAliases {
	aliases := make(TeamAliases, len(nhlTeamAliases)*4)
	for full, alts := range nhlTeamAliases {
		canonical := NormalizeTeam(full)
		aliases[canonical] = canonical
		for _, alt := range alts {
			aliases[NormalizeTeam(alt)] = canonical
		}
	}
	return aliases
}

// Merge añade alias extra (alias → nombre canónico, ambos en texto libre).
// Sobreescriben a los existentes; el destino puede ser a su vez un alias conocido.
func (a TeamAliases) Merge(extra map[string]string) TeamAliases {
	for alias, full := range extra {
		key := NormalizeTeam(alias)
		if key == "" {
			continue
		}
		a[key] = a.Resolve(NormalizeTeam(full))
	}
	return a
}

// Resolve devuelve el identificador canónico, o el mismo si no hay alias.
// Un TeamAliases nil no resuelve nada.
func (a TeamAliases) Resolve(normalized string) string {
	if canonical, ok := a[normalized]; ok {
		return canonical
	}
	return normalized
}
