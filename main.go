package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mezonai/token/cmd"
	"github.com/mezonai/token/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("%s\n%s", crashMessage(r), debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}

func crashMessage(r interface{}) string {
	return fmt.Sprintf("TOKEN NODE %s CRASHED: %v", cmd.Version, r)
}
