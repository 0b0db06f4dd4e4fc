package models

// GameType identifies a supported lottery game.
type GameType string

const (
	GamePowerball    GameType = "powerball"
	GameMegaMillions GameType = "mega_millions"
)

// SupportedGames lists every game the reconciliation engine knows how to process.
var SupportedGames = []GameType{GamePowerball, GameMegaMillions}

// Valid reports whether g is one of the supported games.
func (g GameType) Valid() bool {
	for _, s := range SupportedGames {
		if g == s {
			return true
		}
	}
	return false
}
