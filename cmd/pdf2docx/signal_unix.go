// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyContext returns a context cancelled on interrupt or termination, so
// a running soffice or container child is killed with the process.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
