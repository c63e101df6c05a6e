package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [path]",
	Short: "Count relations, Mentions and snippets per file, concurrently",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("workers") {
			workers, _ := cmd.Flags().GetInt("workers")
			viper.Set("summarize.workers", workers)
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		path, err := s.inputPath(args)
		if err != nil {
			return err
		}
		return s.close(s.pipeline.Summarize(cmd.Context(), path))
	},
}

func init() {
	summarizeCmd.Flags().Int("workers", 0, "files processed at once (default summarize.workers)")
	rootCmd.AddCommand(summarizeCmd)
}
