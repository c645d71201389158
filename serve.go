package main

import (
	"github.com/spf13/cobra"

	"github.com/drummonds/goFlattenPDF/config"
	"github.com/drummonds/goFlattenPDF/engine"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web upload service",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, logger := config.SetupServer()
			injectGlobals(logger)

			serverHandler := engine.NewServerHandler(serverConfig)
			serverHandler.InitializeSchedules()
			return serverHandler.Start()
		},
	}
}
