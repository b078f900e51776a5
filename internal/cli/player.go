package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerRandomCmd())
	cmd.AddCommand(newPlayerRegisterCmd())
	cmd.AddCommand(newPlayerPaidCmd())
	cmd.AddCommand(newPlayerSellCmd())

	return cmd
}

func newPlayerListCmd() *cobra.Command {
	var query, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List players, optionally searching by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if query != "" {
				params.Set("q", query)
			}
			if status != "" {
				params.Set("status", status)
			}
			path := "/api/v1/players"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var result []response.Player
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Fuzzy name search")
	cmd.Flags().StringVar(&status, "status", "", "Filter: sold, unsold or unpaid")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Draw a random unsold player without presenting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get(cmd.Context(), "/api/v1/players/random", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerRegisterCmd() *cobra.Command {
	var req request.RegisterPlayerRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Post(cmd.Context(), "/api/v1/players", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "Full name (required)")
	f.StringVar(&req.Email, "email", "", "Email address (required)")
	f.StringVar(&req.Phone, "phone", "", "10-digit phone number (required)")
	f.StringVar(&req.Mandal, "mandal", "", "Home mandal")
	f.StringVar(&req.ImageURL, "image-url", "", "Photo URL")
	f.IntVar(&req.Ratings.Batting, "batting", 0, "Batting rating 0-10")
	f.IntVar(&req.Ratings.Bowling, "bowling", 0, "Bowling rating 0-10")
	f.IntVar(&req.Ratings.Fielding, "fielding", 0, "Fielding rating 0-10")
	f.IntVar(&req.Stats.Matches, "matches", 0, "Matches played")
	f.IntVar(&req.Stats.Runs, "runs", 0, "Career runs")
	f.Float64Var(&req.Stats.StrikeRate, "strike-rate", 0, "Batting strike rate")
	f.IntVar(&req.Stats.Wickets, "wickets", 0, "Career wickets")
	f.IntVar(&req.Stats.Dismissals, "dismissals", 0, "Career dismissals")
	f.IntVar(&req.Stats.Catches, "catches", 0, "Career catches")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newPlayerPaidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Record a player's registration payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Post(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0])+"/paid", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerSellCmd() *cobra.Command {
	var team string
	var amount float64

	cmd := &cobra.Command{
		Use:   "sell <id>",
		Short: "Sell a player to a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount < 0 {
				return fmt.Errorf("--amount cannot be negative")
			}
			req := request.SellPlayerRequest{TeamID: team, Amount: &amount}

			var result response.Player
			if err := client.Put(cmd.Context(), "/api/v1/players/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Buying team id (required)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Sale amount (required)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
