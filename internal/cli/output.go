package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

func newCmdOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == OutputJSON {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printPlayer(v.Player)
		o.printf("Token: %s\n", v.SessionToken)
	case response.Game:
		o.printGame(v)
	case response.GameList:
		o.printGameList(v)
	case response.PlaceResponse:
		o.printPlace(v)
	case response.AIMoveResponse:
		o.printMove("AI", v.AIMove)
		o.printGame(v.Game)
	case response.Hint:
		o.printf("Suggested move: %d,%d\n", v.Row, v.Col)
	case response.ScoreResponse:
		o.printScore(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

// HealthResult is the /health response
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.out, format, args...)
}

func (o *Output) printPlayer(p response.Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	o.printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	o.printf("Guest: %s\n", guestStr)
}

func (o *Output) printGame(g response.Game) {
	o.printf("Game: %s\n", g.ID)
	o.printf("State: %s\n", g.State)
	o.printf("Board: %dx%d, %s opponent\n", g.BoardSize, g.BoardSize, g.Strategy)
	o.printf("You: %s  AI: %s  Moves: %d\n", g.HumanStone, g.AIStone, g.MoveCount)
	if g.LastMove != nil {
		o.printf("Last move: %s at %d,%d\n", g.LastMove.Stone, g.LastMove.Row, g.LastMove.Col)
	}
	if g.Winner != "" {
		o.printf("Winner: %s\n", g.Winner)
	}
	if g.Board != nil {
		o.printf("\n")
		o.printBoard(g.Board)
	}
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		o.printf("No games\n")
		return
	}
	for _, g := range l.Games {
		o.printf("%s  %-11s %2dx%-2d %-9s moves=%d\n", g.ID, g.State, g.BoardSize, g.BoardSize, g.Strategy, g.MoveCount)
	}
}

func (o *Output) printPlace(p response.PlaceResponse) {
	o.printMove("You", p.HumanMove)
	o.printMove("AI", p.AIMove)
	if p.AIPending && p.AIMove == nil {
		o.printf("The AI is thinking\n")
	}
	o.printGame(p.Game)
}

func (o *Output) printMove(who string, m *response.Move) {
	if m == nil {
		return
	}
	o.printf("%s placed %s at %d,%d\n", who, m.Stone, m.Row, m.Col)
}

func (o *Output) printScore(s response.ScoreResponse) {
	o.printf("Cell %d,%d\n", s.Position.Row, s.Position.Col)
	for _, side := range []struct {
		label string
		score response.CellScore
	}{{"Human", s.Human}, {"AI", s.AI}} {
		parts := make([]string, len(side.score.Directions))
		for i, d := range side.score.Directions {
			parts[i] = fmt.Sprint(d)
		}
		o.printf("  %-5s (%s): combined=%d directions=[%s]\n",
			side.label, side.score.Stone, side.score.Combined, strings.Join(parts, " "))
	}
}

func (o *Output) printBoard(b *response.Board) {
	if b == nil || len(b.Rows) == 0 {
		return
	}

	border := "   +" + strings.Repeat("---", b.Size) + "+\n"

	var header strings.Builder
	header.WriteString("    ")
	for col := 0; col < b.Size; col++ {
		fmt.Fprintf(&header, "%2d ", col)
	}
	o.printf("%s\n", strings.TrimRight(header.String(), " "))
	o.printf("%s", border)

	for row, line := range b.Rows {
		var sb strings.Builder
		for _, cell := range line {
			fmt.Fprintf(&sb, " %c ", cell)
		}
		o.printf("%2d |%s|\n", row, sb.String())
	}
	o.printf("%s", border)
}
