package main

import (
	"github.com/shardchain/dscommittee/cmd/util/cmd"
)

func main() {
	cmd.Execute()
}
