package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shardchain/dscommittee/model/ds"
)

var (
	flagEpoch      uint64
	flagListEpochs bool
)

func init() {
	rootCmd.AddCommand(readCommitteeCmd)

	readCommitteeCmd.Flags().Uint64Var(&flagEpoch, "epoch", 0, "epoch to read, the latest one if not set")
	readCommitteeCmd.Flags().BoolVar(&flagListEpochs, "list", false, "list the stored epochs instead")
}

var readCommitteeCmd = &cobra.Command{
	Use:   "read-committee",
	Short: "print a stored committee and its performance ledger",
	Run: func(cmd *cobra.Command, args []string) {
		c := initComponents()
		defer c.close()

		if flagListEpochs {
			epochs, err := c.states.Epochs()
			if err != nil {
				log.Fatal().Err(err).Msg("could not list epochs")
			}
			printJSON(epochs)
			return
		}

		var state *ds.EpochState
		var err error
		if cmd.Flags().Changed("epoch") {
			log.Info().Msgf("reading committee of epoch %d", flagEpoch)
			state, err = c.states.ByEpoch(flagEpoch)
		} else {
			log.Info().Msg("reading latest committee")
			state, err = c.states.Latest()
		}
		if err != nil {
			log.Fatal().Err(err).Msg("could not read committee")
		}

		printJSON(newStateView(state))
	},
}
