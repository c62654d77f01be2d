// Package football declares the football entities served by touchline and
// their table schemas.
package football

import (
	"github.com/pitabwire/touchline/internal/table"
)

// Player is a rated player from the paginated players API.
type Player struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Nationality string  `json:"nationality"`
	Attack      float64 `json:"attack"`
	Defense     float64 `json:"defense"`
	Midfield    float64 `json:"midfield"`
	Position    string  `json:"position"`
}

// Team is a team summary.
type Team struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	League string `json:"league"`
}

// Club is a club with the league it plays in.
type Club struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	League string `json:"league"`
}

// League is a football league.
type League struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SquadPlayer is a squad member listed by club.
type SquadPlayer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
	Club string `json:"club"`
}

// Positions are the playing positions reported by the players API.
var Positions = []string{"Goalkeeper", "Defender", "Midfielder", "Forward"}

// Nationalities offered by the player nationality dropdown.
var Nationalities = []string{
	"Argentina", "Belgium", "Brazil", "Croatia", "England", "France",
	"Germany", "Italy", "Netherlands", "Norway", "Portugal", "Spain",
}

var PlayerSchema = table.MustSchema("id",
	[]table.Column[Player]{
		table.NumberColumn("id", "ID", func(p Player) float64 { return float64(p.ID) }),
		table.StringColumn("name", "Name", func(p Player) string { return p.Name }),
		table.StringColumn("nationality", "Nationality", func(p Player) string { return p.Nationality }),
		table.NumberColumn("attack", "Attack", func(p Player) float64 { return p.Attack }),
		table.NumberColumn("defense", "Defense", func(p Player) float64 { return p.Defense }),
		table.NumberColumn("midfield", "Midfield", func(p Player) float64 { return p.Midfield }),
		table.StringColumn("position", "Position", func(p Player) string { return p.Position }),
	},
	[]table.Filter{
		table.TextFilter("name", "Name", "Filter by name"),
		table.DropdownFilter("nationality", "Nationality", Nationalities...),
		table.DropdownFilter("position", "Position", Positions...),
	},
)

var TeamSchema = table.MustSchema("id",
	[]table.Column[Team]{
		table.NumberColumn("id", "ID", func(t Team) float64 { return float64(t.ID) }),
		table.StringColumn("name", "Name", func(t Team) string { return t.Name }),
		table.StringColumn("league", "League", func(t Team) string { return t.League }),
	},
	[]table.Filter{
		table.TextFilter("name", "Name", "Filter by name"),
		table.DropdownFilter("league", "League"),
	},
)

var ClubSchema = table.MustSchema("id",
	[]table.Column[Club]{
		table.NumberColumn("id", "ID", func(c Club) float64 { return float64(c.ID) }),
		table.StringColumn("name", "Name", func(c Club) string { return c.Name }),
		table.StringColumn("league", "League", func(c Club) string { return c.League }),
	},
	[]table.Filter{
		table.TextFilter("name", "Name", "Search clubs"),
		table.DropdownFilter("league", "League"),
	},
)

var LeagueSchema = table.MustSchema("id",
	[]table.Column[League]{
		table.NumberColumn("id", "ID", func(l League) float64 { return float64(l.ID) }),
		table.StringColumn("name", "Name", func(l League) string { return l.Name }),
	},
	[]table.Filter{
		table.TextFilter("name", "Name", "Search leagues"),
	},
)

var SquadPlayerSchema = table.MustSchema("id",
	[]table.Column[SquadPlayer]{
		table.NumberColumn("id", "ID", func(p SquadPlayer) float64 { return float64(p.ID) }),
		table.StringColumn("name", "Name", func(p SquadPlayer) string { return p.Name }),
		table.NumberColumn("age", "Age", func(p SquadPlayer) float64 { return float64(p.Age) }),
		table.StringColumn("club", "Club", func(p SquadPlayer) string { return p.Club }),
	},
	[]table.Filter{
		table.TextFilter("name", "Name", "Search players"),
		table.DropdownFilter("club", "Club"),
	},
)
