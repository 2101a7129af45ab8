package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/draftrpc"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type clientFlags struct {
	url      string
	draftID  string
	userID   string
	teamID   string
	playerID string
}

func (f *clientFlags) client(cfg *Config) *draftrpc.Client {
	url := f.url
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	return draftrpc.NewClient(&http.Client{Timeout: engineClientTimeout}, url)
}

type commissionerOp func(*draftrpc.Client, context.Context, uuid.UUID, uuid.UUID) (models.DraftStatus, error)

func parseID(name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newDraftCmd groups the client subcommands that drive a running engine.
func newDraftCmd(a *app) *cobra.Command {
	f := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Drive drafts on a running engine",
	}
	cmd.PersistentFlags().StringVar(&f.url, "url", "", "engine base URL (default http://localhost:<server.port>)")
	cmd.PersistentFlags().StringVar(&f.draftID, "draft", "", "draft ID")

	commissioner := func(use, short string, op commissionerOp) *cobra.Command {
		c := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				draftID, err := parseID("draft", f.draftID)
				if err != nil {
					return err
				}
				userID, err := parseID("user", f.userID)
				if err != nil {
					return err
				}
				status, err := op(f.client(a.cfg), cmd.Context(), draftID, userID)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"draft_id": draftID, "status": status})
			},
		}
		c.Flags().StringVar(&f.userID, "user", "", "commissioner user ID")
		return c
	}

	cmd.AddCommand(
		commissioner("start", "Start a scheduled draft", (*draftrpc.Client).StartDraft),
		commissioner("pause", "Pause a draft in progress", (*draftrpc.Client).PauseDraft),
		commissioner("resume", "Resume a paused draft", (*draftrpc.Client).ResumeDraft),
		commissioner("complete", "Complete a draft early", (*draftrpc.Client).CompleteDraft),
		commissioner("reset", "Discard all picks and return to scheduled", (*draftrpc.Client).ResetDraft),
		newUndoCmd(a, f),
		newPickCmd(a, f),
		newAutopickCmd(a, f),
		newSnapshotCmd(a, f),
		newAvailableCmd(a, f),
		newActiveCmd(a, f),
		newActivateCmd(a, f),
	)
	return cmd
}

func newUndoCmd(a *app, f *clientFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent pick",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			userID, err := parseID("user", f.userID)
			if err != nil {
				return err
			}
			snap, err := f.client(a.cfg).UndoLastPick(cmd.Context(), draftID, userID)
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
	c.Flags().StringVar(&f.userID, "user", "", "commissioner user ID")
	return c
}

func newPickCmd(a *app, f *clientFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "pick",
		Short: "Submit a pick for the team on the clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			teamID, err := parseID("team", f.teamID)
			if err != nil {
				return err
			}
			playerID, err := parseID("player", f.playerID)
			if err != nil {
				return err
			}
			pick, err := f.client(a.cfg).SubmitPick(cmd.Context(), draftID, teamID, playerID)
			if err != nil {
				return err
			}
			return printJSON(pick)
		},
	}
	c.Flags().StringVar(&f.teamID, "team", "", "picking team ID")
	c.Flags().StringVar(&f.playerID, "player", "", "player ID")
	return c
}

func newAutopickCmd(a *app, f *clientFlags) *cobra.Command {
	var enabled bool
	c := &cobra.Command{
		Use:   "autopick",
		Short: "Turn voluntary autopick on or off for a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			teamID, err := parseID("team", f.teamID)
			if err != nil {
				return err
			}
			snap, err := f.client(a.cfg).SetAutopick(cmd.Context(), draftID, teamID, enabled)
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
	c.Flags().StringVar(&f.teamID, "team", "", "team ID")
	c.Flags().BoolVar(&enabled, "enabled", true, "autopick on or off")
	return c
}

func newSnapshotCmd(a *app, f *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current draft snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			snap, err := f.client(a.cfg).GetSnapshot(cmd.Context(), draftID)
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
}

func newAvailableCmd(a *app, f *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List undrafted players in rank order",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			players, err := f.client(a.cfg).ListAvailablePlayers(cmd.Context(), draftID)
			if err != nil {
				return err
			}
			return printJSON(players)
		},
	}
}

func newActiveCmd(a *app, f *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List drafts loaded in the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := f.client(a.cfg).ListActiveDrafts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(ids)
		},
	}
}

func newActivateCmd(a *app, f *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Load a draft into the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			draftID, err := parseID("draft", f.draftID)
			if err != nil {
				return err
			}
			snap, err := f.client(a.cfg).ActivateDraft(cmd.Context(), draftID)
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
}
