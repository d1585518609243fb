package main

import (
	"context"
	"fmt"
	"time"
)

// closeTargets marks in-progress targets whose window has elapsed as not
// achieved. Meant to run from a cron entry at period boundaries.
func (cli *commandLine) closeTargets() error {
	count, err := cli.tgtSvc.CloseOutExpired(context.Background(), time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("%d target(s) closed out\n", count)
	return nil
}
