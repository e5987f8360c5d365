// Conveyor CLI — инструмент командной строки для публикации
// и просмотра task'ов через HTTP API координатора.
//
// Использование:
//
//	conveyor [--api-url URL] [--json] task <subcommand> [flags]
//
// Команды:
//
//	task publish <kind>   Публикация task'а
//	task get <task-id>    Просмотр task'а
//	task wait <task-id>   Ожидание завершения task'а
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/conveyor/internal/cli"
	"github.com/shaiso/conveyor/internal/publisher"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "conveyor",
		Short:         "Conveyor CLI — task queue client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:3000", "Coordinator API URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *publisher.Client {
		return publisher.New(publisher.Config{CoordinatorURL: apiURL})
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewTaskCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
