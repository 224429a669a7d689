package feed

// DTOs del formato JSON de los feeds. Solo se usan dentro de este paquete;
// la conversión a domain.GameRecord se hace en mapping.go.

// gamesResponse es el documento que publica cada feed (HTTP o fichero).
type gamesResponse struct {
	Source string    `json:"source,omitempty"`
	Games  []gameDTO `json:"games"`
}

// gameDTO es un partido con las cuotas crudas tal y como las muestra la casa.
// Un campo ausente o vacío significa que esa cuota no está publicada.
type gameDTO struct {
	Team1 string `json:"team1"`
	Team2 string `json:"team2"`

	MoneylineTeam1 string `json:"moneyline_team1"`
	MoneylineTeam2 string `json:"moneyline_team2"`
	SpreadTeam1    string `json:"spread_team1"`
	SpreadTeam2    string `json:"spread_team2"`
	TotalTeam1     string `json:"total_team1"`
	TotalTeam2     string `json:"total_team2"`
}
