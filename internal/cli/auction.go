package cli

import (
	"errors"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
)

var errConfirmRequired = errors.New("refusing to reset without --yes")

func newAuctionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auction",
		Short: "Live auction commands",
	}

	cmd.AddCommand(newAuctionNextCmd())
	cmd.AddCommand(newAuctionCursorCmd())
	cmd.AddCommand(newAuctionCheckCmd())
	cmd.AddCommand(newAuctionAdvanceCmd())
	cmd.AddCommand(newAuctionSoldCmd())
	cmd.AddCommand(newAuctionFinishCmd())
	cmd.AddCommand(newAuctionResetCmd())

	return cmd
}

func newAuctionNextCmd() *cobra.Command {
	var req request.NextPlayerRequest

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Put a player on the block",
		Long:  "Present the given player, or a random unsold one. Reports completion once the pool is empty.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.NextResponse
			if err := client.Post(cmd.Context(), "/api/v1/auction/next", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PlayerID, "player", "", "Player id to present")

	return cmd
}

func newAuctionCursorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cursor",
		Short: "Show the current auction cursor",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CursorResponse
			if err := client.Get(cmd.Context(), "/api/v1/auction/cursor", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newAuctionCheckCmd() *cobra.Command {
	var id, from string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ask where a screen showing a player should go",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{"id": {id}}
			if from != "" {
				params.Set("from", from)
			}

			var result response.CheckResponse
			if err := client.Get(cmd.Context(), "/api/v1/auction/check?"+params.Encode(), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "player", "", "Player the screen is showing")
	cmd.Flags().StringVar(&from, "from", "", "Page the screen is on")

	return cmd
}

func newAuctionAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Move every display screen on to the next player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/v1/auction/advance", nil, nil); err != nil {
				return err
			}

			output(cmd).PrintMessage("Advanced")
			return nil
		},
	}
}

func newAuctionSoldCmd() *cobra.Command {
	var team string

	cmd := &cobra.Command{
		Use:   "sold <player-id>",
		Short: "Show a completed sale with every roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{"player_id": {args[0]}}
			if team != "" {
				params.Set("team_id", team)
			}

			var result response.SoldResponse
			if err := client.Get(cmd.Context(), "/api/v1/auction/sold?"+params.Encode(), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team the sale was announced for")

	return cmd
}

func newAuctionFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Show the final rosters once the pool is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.FinishResponse
			if err := client.Get(cmd.Context(), "/api/v1/auction/finish", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newAuctionResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Return every purchased player to the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errConfirmRequired
			}

			var result response.ResetResponse
			if err := client.Post(cmd.Context(), "/api/v1/auction/reset", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")

	return cmd
}
