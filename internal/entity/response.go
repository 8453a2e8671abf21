package entity

// PlayerResponse is the outcome of one turn: what was offered, what came back and
// whether it was accepted.
type PlayerResponse struct {
	Player      Player
	Piece       Piece
	RawResponse string
	Placement   *Point
	Err         error
}

func (that PlayerResponse) Failed() bool {
	return that.Err != nil
}

// Record converts the response into its serializable replay form.
func (that PlayerResponse) Record() TurnRecord {
	record := TurnRecord{
		Player:      that.Player,
		Piece:       that.Piece,
		RawResponse: that.RawResponse,
		Placement:   that.Placement,
	}

	if that.Err != nil {
		record.Error = that.Err.Error()
	}

	return record
}

// TurnRecord is one entry of a replay history.
type TurnRecord struct {
	Player      Player `json:"player"`
	Piece       Piece  `json:"piece"`
	RawResponse string `json:"raw_response,omitempty"`
	Placement   *Point `json:"placement,omitempty"`
	Error       string `json:"error,omitempty"`
}
