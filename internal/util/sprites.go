package util

import (
	"math/rand"
	"strings"
)

// ShinyOdds is the one-in-N chance of showing the shiny sprite.
const ShinyOdds = 8192

// SanitizeName maps a Pokémon name to its sprite file stem.
func SanitizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// SpritePath returns the server path of a Pokémon's animated sprite.
func SpritePath(name string, shiny bool) string {
	folder := "gifs"
	if shiny {
		folder = "shiny_gifs"
	}
	return "/static/" + folder + "/" + SanitizeName(name) + ".gif"
}

// RollShiny reports whether this draw lands on the shiny sprite.
func RollShiny(r *rand.Rand) bool {
	if r == nil {
		return rand.Intn(ShinyOdds) == 0
	}
	return r.Intn(ShinyOdds) == 0
}
