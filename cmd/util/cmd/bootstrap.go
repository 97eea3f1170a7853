package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/state/committee"
)

var (
	flagCommitteeFile string
	flagRootEpoch     uint64
)

func init() {
	rootCmd.AddCommand(bootstrapCmd)

	bootstrapCmd.Flags().StringVar(&flagCommitteeFile, "committee", "", "json file holding the ordered list of root committee members")
	bootstrapCmd.Flags().Uint64Var(&flagRootEpoch, "epoch", 0, "epoch served by the root committee")
	_ = bootstrapCmd.MarkFlagRequired("committee")
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "store the root committee in an empty database",
	Run: func(cmd *cobra.Command, args []string) {
		var members ds.Committee
		readJSON(flagCommitteeFile, &members)

		c := initComponents()
		defer c.close()

		root := &ds.EpochState{
			Epoch:     flagRootEpoch,
			Committee: members,
			Ledger:    make(ds.PerformanceLedger),
		}
		st, err := committee.Bootstrap(log.Logger, c.collector, c.rotator, c.accountant, c.self, c.states, root)
		if err != nil {
			log.Fatal().Err(err).Msg("could not bootstrap committee state")
		}

		log.Info().
			Uint64("epoch", st.Final().Epoch()).
			Int("size", st.Final().Size()).
			Msg("committee state bootstrapped")
	},
}
