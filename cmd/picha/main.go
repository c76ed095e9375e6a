package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/picha-labs/picha/service/apiserver"
	"github.com/picha-labs/picha/service/evolver"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "picha",
		Short: "picha evolving nft platform",
	}

	var apiConfig string
	apiCmd := &cobra.Command{
		Use:   "apiserver",
		Short: "Run the REST and websocket api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return apiserver.Run(apiConfig)
		},
	}
	apiCmd.Flags().StringVarP(&apiConfig, "config", "f", "etc/apiserver.yaml", "the config file")

	var evolverConfig string
	evolverCmd := &cobra.Command{
		Use:   "evolver",
		Short: "Run the background evolution and canister retry service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return evolver.Run(evolverConfig)
		},
	}
	evolverCmd.Flags().StringVarP(&evolverConfig, "config", "f", "etc/evolver.yaml", "the config file")

	rootCmd.AddCommand(apiCmd, evolverCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
