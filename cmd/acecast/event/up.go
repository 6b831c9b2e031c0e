package event

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"acecast/cmd/acecast/ui"
	"acecast/internal/infra/docker"
	"acecast/internal/journal"
	"acecast/internal/monitor"
	"acecast/internal/provision"
	"acecast/internal/volume"

	"github.com/spf13/cobra"
)

func upCmd(cf *commonFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up <indices>",
		Short: "Provision containers for the selected records",
		Long: "Provision containers for the records selected by 1-based index, as\n" +
			"shown by `acecast event list`. Indices are comma-separated, e.g. 1,3,4.\n" +
			"Records are processed one at a time; a failing record is reported and\n" +
			"the rest of the batch continues.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := parseIndices(args[0])
			if err != nil {
				return err
			}

			cfg, st, err := cf.load()
			if err != nil {
				return err
			}

			rt, err := docker.NewRuntime()
			if err != nil {
				return err
			}

			engine := &provision.Engine{
				Store:    st,
				Runtime:  rt,
				Sanitize: volume.Sanitize,
				Poller:   &monitor.Poller{Policy: cfg.PollPolicy()},
				Image:    cfg.Image,
			}

			// The journal is best-effort observability; provisioning does
			// not depend on it.
			if j, err := journal.Open(cfg.JournalPath); err != nil {
				slog.Warn("journal unavailable", "path", cfg.JournalPath, "err", err)
			} else {
				defer j.Close()
				engine.Journal = j
			}

			report, err := engine.Run(cmd.Context(), indices)
			if err != nil {
				return err
			}

			for _, res := range report.Results {
				switch {
				case len(res.Violations) > 0:
					fmt.Println(ui.ErrorMsg("%s: invalid record", res.Name))
					for _, v := range res.Violations {
						fmt.Println("  " + ui.Muted(v))
					}
				case res.Err != nil:
					fmt.Println(ui.ErrorMsg("%s: %v", res.Name, res.Err))
				default:
					fmt.Println(ui.SuccessMsg("%s: content id %s", res.Name, ui.Bold(res.ContentID)))
				}
			}

			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d records failed", failed, len(report.Results))
			}
			fmt.Println(ui.SuccessMsg("%d records provisioned", len(report.Results)))
			return nil
		},
	}
	return cmd
}

// parseIndices converts the user's comma-separated 1-based selection to
// zero-based indices. Range checking happens in the engine, where the
// record count is known.
func parseIndices(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	indices := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("index %d out of range: indices are 1-based", n)
		}
		indices = append(indices, n-1)
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no indices given")
	}
	return indices, nil
}
