package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/websnip/internal/shard"
)

var splitCmd = &cobra.Command{
	Use:   "split <file> <shards>",
	Short: "Split a snippet file into shards at entity boundaries",
	Long: `Writes <file>.1 ... <file>.N holding about the same number of snippet
lines each. All blocks of an entity up to a break stay in one shard.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		shards, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid number of shards %q: %w", args[1], err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		plan, err := shard.PlanFile(args[0], shards, cfg.Format.Version == 1)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Found %d unique entities and %d snippets, %d per shard\n",
			plan.Entities, plan.Snippets, plan.PerShard)

		names, err := shard.Split(args[0], plan)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
