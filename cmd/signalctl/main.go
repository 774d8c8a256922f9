// Package main запускает операторский CLI недельного сигнала.
//
//	go run ./cmd/signalctl run
//	go run ./cmd/signalctl recompute --week 2024-03-11
//	go run ./cmd/signalctl evaluate --type gas --current 3.80 --previous 3.50
package main

import (
	"os"

	"example.com/cost-signal/backend/cmd/signalctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
