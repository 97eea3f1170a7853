package ds

// FinalizedBlock bundles the decoded content of a finalized DS block that
// drives one round of performance accounting followed by a committee rotation.
type FinalizedBlock struct {
	// Number is the DS block number.
	Number uint64 `json:"number"`
	// Epoch is the epoch being closed by this block.
	Epoch         uint64         `json:"epoch"`
	BlocksInEpoch uint64         `json:"blocks_in_epoch"`
	BlockReward   int64          `json:"block_reward"`
	Election      ElectionResult `json:"election"`
	Rewardees     RewardeeTable  `json:"rewardees"`
}
