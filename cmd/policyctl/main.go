// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for policyctl.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"policyportal/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New(cli.OpenDatabase).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
