package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"acecast/cmd/acecast/ui"
	"acecast/internal/event"
	"acecast/internal/infra/docker"

	"github.com/spf13/cobra"
)

func createCmd(cf *commonFlags) *cobra.Command {
	var (
		rec     event.Record
		noEvict bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new event record",
		Long: "Create a new event record in the store. Missing fields are prompted\n" +
			"for interactively; defaults apply to port, tracker, bitrate and token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := cf.load()
			if err != nil {
				return err
			}

			if err := fillRecord(&rec, cfg.DefaultTracker, cfg.DefaultToken, cfg.DefaultPort, cfg.DefaultBitrate); err != nil {
				return err
			}

			if violations := rec.Validate(); len(violations) > 0 {
				for _, v := range violations {
					fmt.Println(ui.ErrorMsg("%s", v))
				}
				return fmt.Errorf("record %q is invalid", rec.Name)
			}

			existing, err := st.Rows()
			if err != nil {
				return err
			}
			for _, row := range existing {
				if row[event.NameColumn] == rec.Name {
					return fmt.Errorf("record %q already exists", rec.Name)
				}
			}

			// A container may already run under this name from earlier
			// experiments; clear it so the first provision starts clean.
			if !noEvict {
				if err := evictExisting(cmd.Context(), rec.Name); err != nil {
					return err
				}
			}

			if err := st.Append(rec); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("event %q saved to %s", rec.Name, st.Path()))
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.Name, "name", "", "Unique event name (letters, digits, - and _)")
	cmd.Flags().StringVar(&rec.Title, "title", "", "Channel title")
	cmd.Flags().IntVar(&rec.Port, "port", 0, "Unique port to publish (tcp+udp)")
	cmd.Flags().StringVar(&rec.Tracker, "tracker", "", "Tracker URL")
	cmd.Flags().StringVar(&rec.Source, "source", "", "Stream source")
	cmd.Flags().StringVar(&rec.Host, "host", "", "Public IP or domain")
	cmd.Flags().IntVar(&rec.Bitrate, "bitrate", 0, "Stream bitrate")
	cmd.Flags().StringVar(&rec.AccessToken, "token", "", "Service access token")
	cmd.Flags().BoolVar(&noEvict, "no-evict", false, "Skip removing an existing container with this name")
	return cmd
}

// fillRecord prompts for required fields that were not passed as flags
// and applies defaults to the optional ones.
func fillRecord(rec *event.Record, tracker, token string, port, bitrate int) error {
	var err error
	if rec.Name == "" {
		rec.Name, err = ui.Prompt("Event name", "my-event", "use --name <value>")
		if err != nil {
			return err
		}
	}
	if rec.Title == "" {
		rec.Title, err = ui.Prompt("Channel title", "", "use --title <value>")
		if err != nil {
			return err
		}
	}
	if rec.Source == "" {
		rec.Source, err = ui.Prompt("Stream source", "", "use --source <value>")
		if err != nil {
			return err
		}
	}
	if rec.Host == "" {
		rec.Host, err = ui.Prompt("Public IP or domain", "", "use --host <value>")
		if err != nil {
			return err
		}
	}
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Source = strings.TrimSpace(rec.Source)
	rec.Host = strings.TrimSpace(rec.Host)

	if rec.Port == 0 {
		rec.Port = port
	}
	if rec.Tracker == "" {
		rec.Tracker = tracker
	}
	if rec.Bitrate == 0 {
		rec.Bitrate = bitrate
	}
	if rec.AccessToken == "" {
		rec.AccessToken = token
	}
	return nil
}

// evictExisting stops and removes a container already running under the
// record's name, asking first when one is found.
func evictExisting(ctx context.Context, name string) error {
	rt, err := docker.NewRuntime()
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	id, found, err := rt.FindByName(opCtx, name)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	ok, err := ui.Confirm(
		fmt.Sprintf("A container named %q already exists. Stop and remove it?", name),
		"use --no-evict to keep it",
	)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return err
		}
		// Non-interactive: keep the container, the first `event up` will
		// evict it anyway.
		fmt.Println(ui.WarnMsg("container %q left in place", name))
		return nil
	}
	if !ok {
		return nil
	}

	if err := rt.Stop(opCtx, id); err != nil {
		return err
	}
	if err := rt.Remove(opCtx, id); err != nil {
		return err
	}
	fmt.Println(ui.InfoMsg("removed existing container %q", name))
	return nil
}
