package testutil

import (
	"fmt"

	"pokedex-api/internal/models"
)

var elementalTypes = []string{"grass", "fire", "water", "electric", "psychic"}

// NewPokemon builds an entity with both sprite kinds and the given types in slot order.
func NewPokemon(id int, name string, types ...string) models.Pokemon {
	front := fmt.Sprintf("https://img.example/sprites/%d.png", id)
	artwork := fmt.Sprintf("https://img.example/artwork/%d.png", id)

	p := models.Pokemon{
		ID:        id,
		Name:      name,
		Height:    id % 20,
		Weight:    id * 10,
		Order:     id,
		IsDefault: true,
		Sprites: models.Sprites{
			FrontDefault: &front,
			Other: &models.OtherSprites{
				OfficialArtwork: models.ArtworkSprites{FrontDefault: &artwork},
			},
		},
		Species: models.NamedResource{Name: name, URL: fmt.Sprintf("https://pokeapi.example/pokemon-species/%d/", id)},
	}
	for i, t := range types {
		p.Types = append(p.Types, models.PokemonType{
			Slot: i + 1,
			Type: models.NamedResource{Name: t, URL: "https://pokeapi.example/type/" + t + "/"},
		})
	}
	return p
}

// Dex returns total synthetic entities with IDs 1..total. A few well-known
// names replace the generated ones: 1 bulbasaur, 4 charmander, 7 squirtle,
// 25 pikachu, 26 raichu.
func Dex(total int) []models.Pokemon {
	known := map[int]models.Pokemon{
		1:  NewPokemon(1, "bulbasaur", "grass", "poison"),
		4:  NewPokemon(4, "charmander", "fire"),
		7:  NewPokemon(7, "squirtle", "water"),
		25: NewPokemon(25, "pikachu", "electric"),
		26: NewPokemon(26, "raichu", "electric"),
	}

	dex := make([]models.Pokemon, 0, total)
	for id := 1; id <= total; id++ {
		if p, ok := known[id]; ok {
			dex = append(dex, p)
			continue
		}
		dex = append(dex, NewPokemon(id, fmt.Sprintf("mon-%04d", id), elementalTypes[id%len(elementalTypes)]))
	}
	return dex
}
