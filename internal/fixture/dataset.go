// Package fixture provides a deterministic football dataset and an HTTP
// handler that serves it the way the remote APIs do: a Spring-style paged
// players endpoint and bare-array collection endpoints.
package fixture

import (
	"github.com/pitabwire/touchline/internal/football"
)

// Dataset is the data served by the fixture handler.
type Dataset struct {
	Players      []football.Player
	Teams        []football.Team
	Clubs        []football.Club
	Leagues      []football.League
	SquadPlayers []football.SquadPlayer
}

// Default returns the built-in dataset. Each call returns fresh slices.
func Default() *Dataset {
	leagues := []football.League{
		{ID: 1, Name: "Premier League"},
		{ID: 2, Name: "La Liga"},
		{ID: 3, Name: "Bundesliga"},
		{ID: 4, Name: "Serie A"},
		{ID: 5, Name: "Ligue 1"},
		{ID: 6, Name: "Eredivisie"},
	}

	clubs := []football.Club{
		{ID: 1, Name: "Arsenal", League: "Premier League"},
		{ID: 2, Name: "Liverpool", League: "Premier League"},
		{ID: 3, Name: "Manchester City", League: "Premier League"},
		{ID: 4, Name: "Real Madrid", League: "La Liga"},
		{ID: 5, Name: "Barcelona", League: "La Liga"},
		{ID: 6, Name: "Atlético Madrid", League: "La Liga"},
		{ID: 7, Name: "Bayern Munich", League: "Bundesliga"},
		{ID: 8, Name: "Borussia Dortmund", League: "Bundesliga"},
		{ID: 9, Name: "Inter", League: "Serie A"},
		{ID: 10, Name: "Juventus", League: "Serie A"},
		{ID: 11, Name: "Paris Saint-Germain", League: "Ligue 1"},
		{ID: 12, Name: "Ajax", League: "Eredivisie"},
	}

	teams := make([]football.Team, len(clubs))
	for i, c := range clubs {
		teams[i] = football.Team{ID: c.ID, Name: c.Name, League: c.League}
	}

	players := []football.Player{
		{ID: 1, Name: "Lionel Messi", Nationality: "Argentina", Attack: 92, Defense: 34, Midfield: 90, Position: "Forward"},
		{ID: 2, Name: "Cristiano Ronaldo", Nationality: "Portugal", Attack: 91, Defense: 35, Midfield: 80, Position: "Forward"},
		{ID: 3, Name: "Kylian Mbappé", Nationality: "France", Attack: 94, Defense: 36, Midfield: 82, Position: "Forward"},
		{ID: 4, Name: "Erling Haaland", Nationality: "Norway", Attack: 93, Defense: 45, Midfield: 70, Position: "Forward"},
		{ID: 5, Name: "Kevin De Bruyne", Nationality: "Belgium", Attack: 86, Defense: 64, Midfield: 93, Position: "Midfielder"},
		{ID: 6, Name: "Luka Modrić", Nationality: "Croatia", Attack: 78, Defense: 72, Midfield: 90, Position: "Midfielder"},
		{ID: 7, Name: "Virgil van Dijk", Nationality: "Netherlands", Attack: 60, Defense: 91, Midfield: 72, Position: "Defender"},
		{ID: 8, Name: "Rúben Dias", Nationality: "Portugal", Attack: 55, Defense: 89, Midfield: 68, Position: "Defender"},
		{ID: 9, Name: "Thibaut Courtois", Nationality: "Belgium", Attack: 20, Defense: 60, Midfield: 40, Position: "Goalkeeper"},
		{ID: 10, Name: "Alisson Becker", Nationality: "Brazil", Attack: 22, Defense: 62, Midfield: 45, Position: "Goalkeeper"},
		{ID: 11, Name: "Vinícius Júnior", Nationality: "Brazil", Attack: 90, Defense: 30, Midfield: 81, Position: "Forward"},
		{ID: 12, Name: "Jude Bellingham", Nationality: "England", Attack: 86, Defense: 76, Midfield: 89, Position: "Midfielder"},
		{ID: 13, Name: "Harry Kane", Nationality: "England", Attack: 91, Defense: 47, Midfield: 83, Position: "Forward"},
		{ID: 14, Name: "Rodri", Nationality: "Spain", Attack: 74, Defense: 85, Midfield: 91, Position: "Midfielder"},
		{ID: 15, Name: "Pedri", Nationality: "Spain", Attack: 80, Defense: 65, Midfield: 88, Position: "Midfielder"},
		{ID: 16, Name: "Antoine Griezmann", Nationality: "France", Attack: 87, Defense: 55, Midfield: 85, Position: "Forward"},
		{ID: 17, Name: "Joshua Kimmich", Nationality: "Germany", Attack: 72, Defense: 82, Midfield: 87, Position: "Defender"},
		{ID: 18, Name: "Manuel Neuer", Nationality: "Germany", Attack: 25, Defense: 58, Midfield: 48, Position: "Goalkeeper"},
		{ID: 19, Name: "Nicolò Barella", Nationality: "Italy", Attack: 79, Defense: 74, Midfield: 87, Position: "Midfielder"},
		{ID: 20, Name: "Gianluigi Donnarumma", Nationality: "Italy", Attack: 18, Defense: 59, Midfield: 42, Position: "Goalkeeper"},
		{ID: 21, Name: "Lautaro Martínez", Nationality: "Argentina", Attack: 89, Defense: 42, Midfield: 75, Position: "Forward"},
		{ID: 22, Name: "Bernardo Silva", Nationality: "Portugal", Attack: 83, Defense: 60, Midfield: 89, Position: "Midfielder"},
		{ID: 23, Name: "William Saliba", Nationality: "France", Attack: 50, Defense: 87, Midfield: 65, Position: "Defender"},
		{ID: 24, Name: "Martin Ødegaard", Nationality: "Norway", Attack: 84, Defense: 58, Midfield: 89, Position: "Midfielder"},
		{ID: 25, Name: "Frenkie de Jong", Nationality: "Netherlands", Attack: 76, Defense: 77, Midfield: 88, Position: "Midfielder"},
		{ID: 26, Name: "Jamal Musiala", Nationality: "Germany", Attack: 87, Defense: 40, Midfield: 86, Position: "Midfielder"},
		{ID: 27, Name: "Bukayo Saka", Nationality: "England", Attack: 86, Defense: 55, Midfield: 82, Position: "Forward"},
		{ID: 28, Name: "Alessandro Bastoni", Nationality: "Italy", Attack: 58, Defense: 86, Midfield: 73, Position: "Defender"},
		{ID: 29, Name: "Josko Gvardiol", Nationality: "Croatia", Attack: 62, Defense: 86, Midfield: 70, Position: "Defender"},
		{ID: 30, Name: "Marquinhos", Nationality: "Brazil", Attack: 54, Defense: 88, Midfield: 69, Position: "Defender"},
	}

	squad := []football.SquadPlayer{
		{ID: 1, Name: "Bukayo Saka", Age: 23, Club: "Arsenal"},
		{ID: 2, Name: "Martin Ødegaard", Age: 26, Club: "Arsenal"},
		{ID: 3, Name: "William Saliba", Age: 24, Club: "Arsenal"},
		{ID: 4, Name: "Virgil van Dijk", Age: 33, Club: "Liverpool"},
		{ID: 5, Name: "Alisson Becker", Age: 32, Club: "Liverpool"},
		{ID: 6, Name: "Erling Haaland", Age: 24, Club: "Manchester City"},
		{ID: 7, Name: "Rodri", Age: 28, Club: "Manchester City"},
		{ID: 8, Name: "Rúben Dias", Age: 27, Club: "Manchester City"},
		{ID: 9, Name: "Jude Bellingham", Age: 21, Club: "Real Madrid"},
		{ID: 10, Name: "Vinícius Júnior", Age: 24, Club: "Real Madrid"},
		{ID: 11, Name: "Thibaut Courtois", Age: 32, Club: "Real Madrid"},
		{ID: 12, Name: "Pedri", Age: 22, Club: "Barcelona"},
		{ID: 13, Name: "Frenkie de Jong", Age: 27, Club: "Barcelona"},
		{ID: 14, Name: "Antoine Griezmann", Age: 33, Club: "Atlético Madrid"},
		{ID: 15, Name: "Harry Kane", Age: 31, Club: "Bayern Munich"},
		{ID: 16, Name: "Jamal Musiala", Age: 21, Club: "Bayern Munich"},
		{ID: 17, Name: "Joshua Kimmich", Age: 29, Club: "Bayern Munich"},
		{ID: 18, Name: "Lautaro Martínez", Age: 27, Club: "Inter"},
		{ID: 19, Name: "Nicolò Barella", Age: 27, Club: "Inter"},
		{ID: 20, Name: "Alessandro Bastoni", Age: 25, Club: "Inter"},
		{ID: 21, Name: "Marquinhos", Age: 30, Club: "Paris Saint-Germain"},
		{ID: 22, Name: "Gianluigi Donnarumma", Age: 25, Club: "Paris Saint-Germain"},
	}

	return &Dataset{
		Players:      players,
		Teams:        teams,
		Clubs:        clubs,
		Leagues:      leagues,
		SquadPlayers: squad,
	}
}
