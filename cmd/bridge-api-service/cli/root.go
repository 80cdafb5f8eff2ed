package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName = "config.yml"
	defaultRoutesFileName = "routes.yml"
)

var (
	cfgPath    string
	routesPath string
	replayFlag bool
	rootCmd    = &cobra.Command{
		Use: "start-server",
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigFile(homePath, defaultConfigFileName)
	defaultRoutesPath := getDefaultConfigFile(homePath, defaultRoutesFileName)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	rootCmd.PersistentFlags().StringVar(&routesPath, "routes", defaultRoutesPath, fmt.Sprintf("supported routes file (default %s)", defaultRoutesPath))
	rootCmd.PersistentFlags().BoolVar(&replayFlag, "replay", false, "replay unprocessable messages and exit")
	if err := rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

func GetRoutesPath() string {
	return routesPath
}

func GetReplayFlag() bool {
	return replayFlag
}
