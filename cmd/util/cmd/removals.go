package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module/eviction"
)

var (
	flagProposalFile string
	flagFraction     float64
	flagMax          uint
)

func init() {
	rootCmd.AddCommand(removalsCmd)

	removalsCmd.Flags().StringVar(&flagProposalFile, "block", "", "json file holding the DS block being proposed")
	removalsCmd.Flags().Float64Var(&flagFraction, "fraction", 0.5, "minimum fraction of rewarded blocks a member needs to stay")
	removalsCmd.Flags().UintVar(&flagMax, "max", 1, "maximum number of under-performers removed ahead of the tail")
	_ = removalsCmd.MarkFlagRequired("block")
}

var removalsCmd = &cobra.Command{
	Use:   "removals",
	Short: "suggest the removal list for a DS block being proposed on top of the stored state",
	Run: func(cmd *cobra.Command, args []string) {
		var block ds.FinalizedBlock
		readJSON(flagProposalFile, &block)

		c := initComponents()
		defer c.close()

		latest, err := c.states.Latest()
		if err != nil {
			log.Fatal().Err(err).Msg("could not read latest committee")
		}

		var ledger ds.PerformanceLedger
		err = c.accountant.Recompute(block.Rewardees, &ledger, latest.Committee, block.Epoch, block.BlocksInEpoch, block.BlockReward)
		if err != nil {
			log.Fatal().Err(err).Msg("could not recompute performance ledger")
		}

		removals := eviction.DetermineRemovals(latest.Committee, ledger, eviction.Policy{
			Threshold:   eviction.ThresholdFromFraction(block.BlocksInEpoch, flagFraction),
			MaxRemovals: flagMax,
			NumWinners:  uint(block.Election.NumWinners()),
		})
		printJSON(removals)
	},
}
