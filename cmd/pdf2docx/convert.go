// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2docx/internal/convert"
	"github.com/pdiddy/pdf2docx/internal/history"
	"github.com/pdiddy/pdf2docx/pkg/types"
)

// runConvert converts args[0] into args[1] with the configured backend and
// records the run when history is enabled.
func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]
	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	r := convert.PageRange{Start: start, End: end}

	cfg := a.config()
	began := time.Now()

	res, err := a.convert(cmd.Context(), cfg.Conversion, input, output, r)

	rec := types.ConversionRecord{
		InputPath:  input,
		OutputPath: output,
		Backend:    cfg.Conversion.Backend,
		StartPage:  start,
		EndPage:    end,
		Status:     types.ConversionDone,
		StartedAt:  began.UTC(),
		Duration:   time.Since(began),
	}
	if err != nil {
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
	}
	a.record(cmd.Context(), cfg.History, rec)

	if err != nil {
		return err
	}
	a.debugf("converted pages %d-%d of %d in %s", res.First, res.Last, res.PageCount, rec.Duration.Round(time.Millisecond))
	fmt.Fprintln(a.stdout, successMsg)
	return nil
}

func (a *app) convert(ctx context.Context, cfg types.ConversionConfig, input, output string, r convert.PageRange) (convert.Result, error) {
	conv, err := convert.New(cfg)
	if err != nil {
		return convert.Result{}, err
	}
	a.debugf("backend: %s", conv.Name())
	if lo, ok := conv.(*convert.LibreOfficeConverter); ok {
		a.debugf("soffice: %s", lo.Binary())
	}
	return convert.ConvertFile(ctx, conv, input, output, r)
}

// record appends rec to the history database. History is best effort: a
// failure is reported on stderr and does not change the exit code.
func (a *app) record(ctx context.Context, cfg types.HistoryConfig, rec types.ConversionRecord) {
	store, err := history.NewStore(cfg)
	if errors.Is(err, history.ErrDisabled) {
		return
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: conversion history: %v\n", err)
		return
	}
	defer store.Close()

	// Record even when the conversion was interrupted.
	id, err := store.Record(context.WithoutCancel(ctx), rec)
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: conversion history: %v\n", err)
		return
	}
	a.debugf("recorded conversion #%d in %s", id, cfg.DBPath)
}
