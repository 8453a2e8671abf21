package engine

import (
	"fmt"
	"io"

	"github.com/rocketscienceinc/filler-arbiter/internal/entity"
)

// Observer is called synchronously after every turn. It may read the match but must not
// mutate the plateau.
type Observer interface {
	OnMove(match *Engine, response entity.PlayerResponse)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(match *Engine, response entity.PlayerResponse)

func (that ObserverFunc) OnMove(match *Engine, response entity.PlayerResponse) {
	that(match, response)
}

// Silent ignores every turn.
type Silent struct{}

func (Silent) OnMove(*Engine, entity.PlayerResponse) {}

// Verbose prints the answer, the piece and the plateau after each successful turn and
// the error after each failed one.
type Verbose struct {
	out io.Writer
}

func NewVerbose(out io.Writer) *Verbose {
	return &Verbose{out: out}
}

func (that *Verbose) OnMove(match *Engine, response entity.PlayerResponse) {
	if response.Err != nil {
		fmt.Fprintf(that.out, "%s: %s\n", response.Player, response.Err)
		return
	}

	fmt.Fprintf(that.out, "<got (%s): %s\n", response.Player, response.RawResponse)
	fmt.Fprint(that.out, response.Piece.String())
	fmt.Fprint(that.out, match.Plateau().String())
}

// Multi fans a turn out to several observers in order.
type Multi []Observer

func (that Multi) OnMove(match *Engine, response entity.PlayerResponse) {
	for _, observer := range that {
		observer.OnMove(match, response)
	}
}
