package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTeam canonicaliza el nombre de un equipo para usarlo como clave de matching.
//
//	"TOR Maple Leafs" → "mapleleafs"
//	"St. Louis Blues" → "stlouisblues"
//
// Es total y determinista: cualquier entrada produce un string, posiblemente vacío.
func NormalizeTeam(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(DisplayTeam(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DisplayTeam devuelve el nombre sin espacios sobrantes y sin el prefijo de
// abreviatura de ciudad que algunos feeds anteponen ("BOS Bruins" → "Bruins").
func DisplayTeam(name string) string {
	parts := strings.Fields(name)
	if len(parts) > 1 && isAbbreviation(parts[0]) {
		parts = parts[1:]
	}
	return strings.Join(parts, " ")
}

// isAbbreviation: exactamente 3 letras, todas mayúsculas.
func isAbbreviation(token string) bool {
	if utf8.RuneCountInString(token) != 3 {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) || !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// GameKey es el par no ordenado de identificadores de equipo normalizados.
// NewGameKey ordena los lados, así que GameKey(A,B) == GameKey(B,A) y el
// struct es comparable y sirve como clave de map.
type GameKey struct {
	A string
	B string
}

// NewGameKey construye la clave a partir de dos identificadores ya normalizados.
func NewGameKey(team1, team2 string) GameKey {
	if team2 < team1 {
		team1, team2 = team2, team1
	}
	return GameKey{A: team1, B: team2}
}

// String devuelve la forma "a|b", estable entre scans.
func (k GameKey) String() string {
	return k.A + "|" + k.B
}

// ParseGameKey es la inversa de String.
func ParseGameKey(s string) GameKey {
	a, b, _ := strings.Cut(s, "|")
	return NewGameKey(a, b)
}
