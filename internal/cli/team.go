package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/apl-auction/internal/api/request"
	"github.com/mcoot/apl-auction/internal/api/response"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team management commands",
	}

	cmd.AddCommand(newTeamListCmd())
	cmd.AddCommand(newTeamGetCmd())
	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamLeaderCmd())

	return cmd
}

func newTeamListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Team
			if err := client.Get(cmd.Context(), "/api/v1/teams", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a team and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.TeamDetail
			if err := client.Get(cmd.Context(), "/api/v1/teams/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTeamCreateCmd() *cobra.Command {
	var req request.CreateTeamRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Team
			if err := client.Post(cmd.Context(), "/api/v1/teams", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Team name (required)")
	cmd.Flags().StringVar(&req.ImageURL, "image-url", "", "Logo URL")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTeamLeaderCmd() *cobra.Command {
	var req request.AssignLeaderRequest

	cmd := &cobra.Command{
		Use:   "leader <team-id>",
		Short: "Make a player the captain or vice-captain of a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Post(cmd.Context(), "/api/v1/teams/"+url.PathEscape(args[0])+"/leader", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PlayerID, "player", "", "Player id (required)")
	cmd.Flags().StringVar(&req.Role, "role", "captain", "captain or vice-captain")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}
