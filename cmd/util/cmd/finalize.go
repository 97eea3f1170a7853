package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module/irrecoverable"
	"github.com/shardchain/dscommittee/module/rotation"
	"github.com/shardchain/dscommittee/state"
	"github.com/shardchain/dscommittee/state/committee"
)

var (
	flagBlockFiles       []string
	flagEvictionFraction float64
	flagMaxRemovals      uint
)

func init() {
	rootCmd.AddCommand(finalizeCmd)

	finalizeCmd.Flags().StringSliceVar(&flagBlockFiles, "block", nil,
		"json files holding finalized DS blocks, applied in the given order")
	finalizeCmd.Flags().Float64Var(&flagEvictionFraction, "eviction-fraction", 0,
		"derive a removal list for blocks without one, removing members rewarded in less than this fraction of blocks")
	finalizeCmd.Flags().UintVar(&flagMaxRemovals, "max-removals", 0, "maximum number of under-performers a derived removal list evicts ahead of the tail")
	_ = finalizeCmd.MarkFlagRequired("block")
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "apply a finalized DS block to the stored committee state",
	Run: func(cmd *cobra.Command, args []string) {
		blocks := make([]ds.FinalizedBlock, len(flagBlockFiles))
		for i, path := range flagBlockFiles {
			readJSON(path, &blocks[i])
		}

		c := initComponents()
		defer c.close()

		var opts []committee.Option
		if flagEvictionFraction > 0 {
			opts = append(opts, committee.WithEvictionPolicy(flagEvictionFraction, flagMaxRemovals))
		}
		st := c.openState(opts...)

		var bar *progressbar.ProgressBar
		if len(blocks) > 1 {
			bar = progressbar.Default(int64(len(blocks)), "finalizing:")
		}
		for i, block := range blocks {
			_, err := st.Finalize(block)
			switch {
			case state.IsOutdatedBlockError(err):
				log.Warn().Err(err).Str("file", flagBlockFiles[i]).Msg("block already applied, skipping")
			case rotation.IsInvalidCompositionError(err):
				log.Fatal().Err(err).Str("file", flagBlockFiles[i]).Msg("block produces an invalid committee")
			case irrecoverable.IsException(err):
				log.Fatal().Err(err).Str("file", flagBlockFiles[i]).Msg("unexpected failure while applying block")
			case err != nil:
				log.Fatal().Err(err).Str("file", flagBlockFiles[i]).Msg("could not apply block")
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		printJSON(newStateView(st.Final().EpochState()))
	},
}
