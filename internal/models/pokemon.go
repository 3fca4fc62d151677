package models

// NamedResource is the {name, url} reference PokeAPI uses everywhere.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Pokemon is the upstream entity, cached and returned as-is.
type Pokemon struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	Height         int              `json:"height"`
	Weight         int              `json:"weight"`
	BaseExperience int              `json:"base_experience"`
	Order          int              `json:"order"`
	IsDefault      bool             `json:"is_default"`
	Sprites        Sprites          `json:"sprites"`
	Types          []PokemonType    `json:"types"`
	Abilities      []PokemonAbility `json:"abilities"`
	Stats          []PokemonStat    `json:"stats"`
	Species        NamedResource    `json:"species"`
}

type Sprites struct {
	FrontDefault *string       `json:"front_default"`
	FrontShiny   *string       `json:"front_shiny"`
	BackDefault  *string       `json:"back_default"`
	BackShiny    *string       `json:"back_shiny"`
	Other        *OtherSprites `json:"other,omitempty"`
}

type OtherSprites struct {
	OfficialArtwork ArtworkSprites `json:"official-artwork"`
	Home            ArtworkSprites `json:"home"`
}

type ArtworkSprites struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
}

type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type PokemonAbility struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// Summary is the display projection of a Pokemon.
type Summary struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Image string   `json:"image"`
	Types []string `json:"types"`
}

// Summary projects the entity. Image prefers the official artwork, then the
// default front sprite, then "". Types keep upstream slot order.
func (p *Pokemon) Summary() Summary {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, t.Type.Name)
	}
	return Summary{
		ID:    p.ID,
		Name:  p.Name,
		Image: p.bestImage(),
		Types: types,
	}
}

func (p *Pokemon) bestImage() string {
	if other := p.Sprites.Other; other != nil {
		if art := other.OfficialArtwork.FrontDefault; art != nil && *art != "" {
			return *art
		}
	}
	if front := p.Sprites.FrontDefault; front != nil {
		return *front
	}
	return ""
}

// ResourceList is the payload of GET /pokemon?limit&offset.
type ResourceList struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// TypeResource is the subset of GET /type/{name} the service consumes.
type TypeResource struct {
	ID      int          `json:"id"`
	Name    string       `json:"name"`
	Pokemon []TypeMember `json:"pokemon"`
}

type TypeMember struct {
	Slot    int           `json:"slot"`
	Pokemon NamedResource `json:"pokemon"`
}

// SearchQuery carries name/type search input. A zero Limit means "use the default".
type SearchQuery struct {
	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
	Limit int    `json:"limit,omitempty"`
}
