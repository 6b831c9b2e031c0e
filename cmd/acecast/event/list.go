package event

import (
	"fmt"
	"strconv"

	"acecast/cmd/acecast/ui"
	"acecast/internal/event"

	"github.com/spf13/cobra"
)

func listCmd(cf *commonFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List event records",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := cf.load()
			if err != nil {
				return err
			}

			rows, err := st.Rows()
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println(ui.Muted("no events saved"))
				return nil
			}

			// Row numbers are 1-based and match `event up` selection.
			out := make([][]string, len(rows))
			for i, row := range rows {
				contentID := row[event.ContentIDColumn]
				if contentID == "" {
					contentID = "-"
				}
				out[i] = []string{
					strconv.Itoa(i + 1),
					row[0], // name
					row[1], // title
					row[2], // port
					row[6], // host
					contentID,
				}
			}

			fmt.Println(ui.Table(
				[]string{"#", "Name", "Title", "Port", "Host", "Content ID"},
				out,
			))
			return nil
		},
	}
}
