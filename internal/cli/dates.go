package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List days with available data",
	RunE:  runDates,
}

func init() {
	rootCmd.AddCommand(datesCmd)
}

func runDates(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	dates, err := d.store.Dates()
	if err != nil {
		return err
	}
	for _, date := range dates {
		fmt.Fprintln(os.Stdout, date)
	}
	return nil
}
