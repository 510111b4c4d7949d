package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-go/internal/api/request"
	"github.com/mcoot/gomoku-go/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGamePlaceCmd())
	cmd.AddCommand(newGameAICmd())
	cmd.AddCommand(newGameHintCmd())
	cmd.AddCommand(newGameScoreCmd())
	cmd.AddCommand(newGameResignCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	var req request.CreateGameRequest

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a game against the AI",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := client.Post(cmd.Context(), "/api/v1/games", req, &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.BoardSize, "size", 0, "Board size (server default when 0)")
	cmd.Flags().StringVar(&req.Strategy, "strategy", "", "AI strategy: heuristic, random")
	cmd.Flags().BoolVar(&req.AIFirst, "ai-first", false, "Let the AI play black and move first")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameList
			if err := client.Get(cmd.Context(), "/api/v1/games", &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game-id>",
		Short: "Show a game and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := client.Get(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGamePlaceCmd() *cobra.Command {
	var noWait bool

	cmd := &cobra.Command{
		Use:   "place <game-id> <row> <col>",
		Short: "Place your stone",
		Long: `Place your stone at row, col (zero-based). By default the command waits
for the AI's reply; pass --no-wait to return as soon as your stone is down.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}

			path := gamePath(args[0]) + "/moves"
			if !noWait {
				path += "?wait=true"
			}

			var result response.PlaceResponse
			if err := client.Post(cmd.Context(), path, request.PlaceRequest{Row: &row, Col: &col}, &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return without waiting for the AI move")

	return cmd
}

func newGameAICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ai <game-id>",
		Short: "Ask the AI to take a pending turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.AIMoveResponse
			if err := client.Post(cmd.Context(), gamePath(args[0])+"/ai-move", nil, &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGameHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint <game-id>",
		Short: "Suggest a move for you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Hint
			if err := client.Get(cmd.Context(), gamePath(args[0])+"/hint", &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGameScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <game-id> <row> <col>",
		Short: "Show how the AI rates a cell for both colours",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("row", strconv.Itoa(row))
			q.Set("col", strconv.Itoa(col))

			var result response.ScoreResponse
			if err := client.Get(cmd.Context(), gamePath(args[0])+"/score?"+q.Encode(), &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func newGameResignCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "resign <game-id>",
		Aliases: []string{"abandon"},
		Short:   "Abandon a game",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Game
			if err := client.Delete(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}

			newCmdOutput(cmd).Print(result)
			return nil
		},
	}
}

func gamePath(id string) string {
	return "/api/v1/games/" + url.PathEscape(id)
}

func parsePosition(rowArg, colArg string) (int, int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(rowArg))
	if err != nil {
		return 0, 0, fmt.Errorf("row must be a number, got %q", rowArg)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colArg))
	if err != nil {
		return 0, 0, fmt.Errorf("col must be a number, got %q", colArg)
	}
	return row, col, nil
}
