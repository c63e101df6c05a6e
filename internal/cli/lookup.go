package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	lookupSlot   string
	lookupEntity string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [path]",
	Short: "Print the Mentions of an entity or a slot",
	Long: `Reads the input into memory and prints the Mentions of --entity,
of --slot, or of the entity restricted to the slot. Without either flag it
lists the slots with their Mention counts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		path, err := s.inputPath(args)
		if err != nil {
			return err
		}

		n, err := s.pipeline.Lookup(path, lookupSlot, lookupEntity)
		if err != nil {
			return s.close(err)
		}
		if lookupSlot != "" || lookupEntity != "" {
			fmt.Fprintf(os.Stderr, "%d mentions found\n", n)
		}
		return s.close(nil)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupSlot, "slot", "", "slot name, e.g. per:title")
	lookupCmd.Flags().StringVar(&lookupEntity, "entity", "", "entity name")
	rootCmd.AddCommand(lookupCmd)
}
