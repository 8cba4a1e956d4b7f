// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2docx/pkg/types"
)

// Config keys, as written in pdf2docx.yaml. Environment variables use the
// PDF2DOCX_ prefix and upper case (PDF2DOCX_BACKEND, PDF2DOCX_HISTORY_DB).
const (
	keyBackend           = "backend"
	keySofficePath       = "soffice_path"
	keyContainerImage    = "container_image"
	keyHistoryDB         = "history_db"
	keyHistoryMaxResults = "history_max_results"
	keyVerbose           = "verbose"
)

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"backend":    keyBackend,
	"history-db": keyHistoryDB,
	"verbose":    keyVerbose,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyBackend, string(types.BackendNative))
	v.SetDefault(keyHistoryMaxResults, 20)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// config assembles the effective configuration from a.v.
func (a *app) config() types.Config {
	return types.Config{
		Conversion: types.ConversionConfig{
			Backend:        types.ConversionBackend(a.v.GetString(keyBackend)),
			SofficePath:    a.v.GetString(keySofficePath),
			ContainerImage: a.v.GetString(keyContainerImage),
		},
		History: types.HistoryConfig{
			DBPath:     a.v.GetString(keyHistoryDB),
			MaxResults: a.v.GetInt(keyHistoryMaxResults),
		},
	}
}

func (a *app) verbose() bool { return a.v.GetBool(keyVerbose) }

// debugf prints a diagnostic line to stderr when --verbose is set.
func (a *app) debugf(format string, args ...any) {
	if a.verbose() {
		fmt.Fprintf(a.stderr, format+"\n", args...)
	}
}
