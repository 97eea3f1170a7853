package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/module/metrics"
	"github.com/shardchain/dscommittee/module/performance"
	"github.com/shardchain/dscommittee/module/rotation"
	"github.com/shardchain/dscommittee/state/committee"
	bstorage "github.com/shardchain/dscommittee/storage/badger"
)

// components bundles what the subcommands operate on.
type components struct {
	db         *badger.DB
	states     *bstorage.EpochStates
	rotator    *rotation.Rotator
	accountant *performance.Accountant
	collector  *metrics.CommitteeCollector
	self       ds.PubKey
}

func initComponents() *components {
	dir := viper.GetString("datadir")
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		log.Fatal().Err(err).Str("datadir", dir).Msg("could not open badger database")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCommitteeCollector(registry)
	cache := metrics.NewCacheCollector(registry)

	self := ds.ZeroPubKey
	if hex := viper.GetString("self"); hex != "" {
		self, err = ds.HexStringToPubKey(hex)
		if err != nil {
			log.Fatal().Err(err).Msg("malformed --self public key")
		}
	}

	return &components{
		db:         db,
		states:     bstorage.NewEpochStates(cache, db, viper.GetUint("cache-size")),
		rotator:    rotation.NewRotator(log.Logger, collector, rotation.WithTargetSize(viper.GetUint("target-size"))),
		accountant: performance.NewAccountant(log.Logger, collector),
		collector:  collector,
		self:       self,
	}
}

func (c *components) close() {
	err := c.db.Close()
	if err != nil {
		log.Error().Err(err).Msg("could not close database")
	}
}

func (c *components) openState(opts ...committee.Option) *committee.State {
	st, err := committee.OpenState(log.Logger, c.collector, c.rotator, c.accountant, c.self, c.states, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open committee state, was the database bootstrapped?")
	}
	return st
}

func readJSON(path string, target interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("cannot read json")
	}
	err = json.Unmarshal(data, target)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("cannot unmarshal json in file")
	}
}

func printJSON(data interface{}) {
	bz, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot marshal json")
	}
	fmt.Println(string(bz))
}

// stateView is the printable form of a committee state.
type stateView struct {
	Epoch       uint64           `json:"epoch"`
	Fingerprint string           `json:"fingerprint"`
	Committee   []memberView     `json:"committee"`
	Ledger      []ds.LedgerEntry `json:"ledger"`
	Scores      *scoreSummary    `json:"scores,omitempty"`
}

// scoreSummary aggregates the ledger scores. It is omitted for an empty ledger.
type scoreSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

func summarizeScores(ledger ds.PerformanceLedger) *scoreSummary {
	if len(ledger) == 0 {
		return nil
	}
	data := make(stats.Float64Data, 0, len(ledger))
	for _, score := range ledger {
		data = append(data, float64(score))
	}
	// errors are only returned for empty input
	lowest, _ := data.Min()
	highest, _ := data.Max()
	mean, _ := data.Mean()
	median, _ := data.Median()
	return &scoreSummary{Min: lowest, Max: highest, Mean: mean, Median: median}
}

type memberView struct {
	Index    int         `json:"index"`
	PubKey   ds.PubKey   `json:"pub_key"`
	Endpoint ds.Endpoint `json:"endpoint"`
}

func newStateView(state *ds.EpochState) stateView {
	members := make([]memberView, 0, len(state.Committee))
	for i, member := range state.Committee {
		members = append(members, memberView{Index: i, PubKey: member.PubKey, Endpoint: member.Endpoint})
	}
	fingerprint := state.Committee.Fingerprint()
	return stateView{
		Epoch:       state.Epoch,
		Fingerprint: fmt.Sprintf("%x", fingerprint[:]),
		Committee:   members,
		Ledger:      state.Ledger.Entries(),
		Scores:      summarizeScores(state.Ledger),
	}
}
