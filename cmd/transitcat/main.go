// Command transitcat is the outer CLI driver: it selects between the two
// operational modes (compile a base artifact, or serve queries against one)
// and wires the request decoder, builder, router, and persistence layer
// together. Specified only at its boundary — this is mechanical glue, not
// algorithmic content.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/antigravity/transitcatalog/catalog"
	"github.com/antigravity/transitcatalog/itinerary"
	"github.com/antigravity/transitcatalog/persist"
	"github.com/antigravity/transitcatalog/protocol"
	"github.com/antigravity/transitcatalog/router"
	"github.com/antigravity/transitcatalog/transitbuild"
)

var logger = logrus.New()

func main() {
	root := &cobra.Command{
		Use:           "transitcat",
		Short:         "Offline transport-catalog query engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(makeBaseCommand())
	root.AddCommand(processRequestsCommand())

	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("transitcat: command failed")
		os.Exit(1)
	}
}

func makeBaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "make_base",
		Short: "Build a catalog and router from stdin and persist it",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := protocol.Decode(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("make_base: %w", err)
			}

			c := catalog.New()
			if err := protocol.ApplyBaseRequests(c, env.BaseRequests); err != nil {
				return fmt.Errorf("make_base: %w", err)
			}

			settings := protocol.RoutingSettings(env.RoutingSettings)
			g, err := transitbuild.Build(c, settings)
			if err != nil {
				return fmt.Errorf("make_base: %w", err)
			}

			tbl, err := router.New(g)
			if err != nil {
				return fmt.Errorf("make_base: %w", err)
			}

			renderSettings := protocol.RenderSettings(env.RenderSettings)

			if env.SerializationSettings == nil {
				logger.Info("transitcat: no serialization_settings, base not written")
				return nil
			}
			if err := persist.Save(env.SerializationSettings.File, c, renderSettings, g, tbl); err != nil {
				return fmt.Errorf("make_base: %w", err)
			}

			logger.WithField("file", env.SerializationSettings.File).Info("transitcat: base written")
			return nil
		},
	}
}

func processRequestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process_requests",
		Short: "Answer stat-requests from stdin against a persisted base",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := protocol.Decode(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("process_requests: %w", err)
			}
			var bundle *persist.Bundle
			if env.SerializationSettings != nil {
				bundle = persist.LoadLenient(env.SerializationSettings.File, logger)
			}

			c := catalog.New()
			var facade *itinerary.Facade
			var mapSettings = protocol.RenderSettings(env.RenderSettings)
			if bundle != nil {
				c = bundle.Catalog
				facade = itinerary.NewFacade(bundle.Catalog, bundle.Router, busWaitTimeOf(env))
				mapSettings = bundle.Render
			} else {
				facade = itinerary.NewFacade(c, emptyTable(c), busWaitTimeOf(env))
			}

			var responses []protocol.Response
			for _, req := range env.StatRequests {
				responses = append(responses, protocol.Answer(req, c, mapSettings, facade))
			}

			return protocol.Encode(cmd.OutOrStdout(), responses)
		},
	}
}

func busWaitTimeOf(env protocol.Envelope) float64 {
	if env.RoutingSettings == nil {
		return 0
	}
	return env.RoutingSettings.BusWaitTime
}

// emptyTable builds a degenerate, all-unreachable router table for the case
// where no base artifact could be loaded: every query still answers
// deterministically ("not found") rather than panicking on a nil table.
func emptyTable(c *catalog.Catalog) *router.Table {
	g, _ := transitbuild.Build(c, transitbuild.Settings{})
	tbl, _ := router.New(g)
	return tbl
}
