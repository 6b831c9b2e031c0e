package event

import (
	"fmt"

	"acecast/cmd/acecast/ui"
	"acecast/internal/journal"

	"github.com/spf13/cobra"
)

func historyCmd(cf *commonFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent provisioning outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cf.load()
			if err != nil {
				return err
			}

			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(ui.Muted("no provisioning history"))
				return nil
			}

			rows := make([][]string, len(entries))
			for i, e := range entries {
				contentID := e.ContentID
				if contentID == "" {
					contentID = "-"
				}
				detail := e.Detail
				if detail == "" {
					detail = "-"
				}
				rows[i] = []string{e.CreatedAt, e.Name, e.Outcome, contentID, detail}
			}

			fmt.Println(ui.Table(
				[]string{"When", "Name", "Outcome", "Content ID", "Detail"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}
