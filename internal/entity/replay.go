package entity

// Replay is the static description of a match plus its full turn history.
type Replay struct {
	ID      string       `json:"id,omitempty"`
	Players []string     `json:"players"`
	Plateau PlateauInfo  `json:"plateau"`
	History []TurnRecord `json:"history"`
	Scores  []Score      `json:"scores,omitempty"`
}

type PlateauInfo struct {
	Width        int   `json:"width"`
	Height       int   `json:"height"`
	Player1Start Point `json:"player1_start"`
	Player2Start Point `json:"player2_start"`
}

// Score is the final tally of one seat.
type Score struct {
	Player     Player `json:"player"`
	Name       string `json:"name"`
	Placements int    `json:"placements"`
	Territory  int    `json:"territory"`
}
