package main

import (
	"context"
	"fmt"

	sheetscli "github.com/sammcj/mcp-sheets/internal/cli"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const cliTransport = "cli"

// toolsCommand runs tools in-process without an MCP client.
func toolsCommand(logger *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "List, describe and call tools directly",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   string(sheetscli.OutputText),
				Usage:   "Output format (text or json)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List enabled tools",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					runner, err := describeRunner(cmd, logger)
					if err != nil {
						return err
					}
					return runner.ListTools()
				},
			},
			{
				Name:      "help",
				Usage:     "Show the parameters of a tool",
				ArgsUsage: "<tool>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("usage: mcp-sheets tools help <tool>")
					}
					runner, err := describeRunner(cmd, logger)
					if err != nil {
						return err
					}
					return runner.HelpTool(cmd.Args().First())
				},
			},
			{
				Name:            "call",
				Usage:           "Call a tool with a JSON object or --key=value arguments",
				ArgsUsage:       "<tool> [json | --key=value ...]",
				SkipFlagParsing: true,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return fmt.Errorf("usage: mcp-sheets tools call <tool> [json | --key=value ...]")
					}
					output, err := sheetscli.ParseOutputFormat(cmd.String("output"))
					if err != nil {
						return err
					}

					configureLogging(logger, cliTransport)
					svc, err := newServices(ctx, cmd, logger, cliTransport)
					if err != nil {
						return err
					}

					runner := sheetscli.NewRunner(svc.registry, svc.dispatcher, output, nil)
					return runner.RunTool(ctx, cmd.Args().First(), cmd.Args().Tail())
				},
			},
		},
	}
}

// describeRunner builds a runner for list and help, which need no
// credentials.
func describeRunner(cmd *cli.Command, logger *logrus.Logger) (*sheetscli.Runner, error) {
	output, err := sheetscli.ParseOutputFormat(cmd.String("output"))
	if err != nil {
		return nil, err
	}
	configureLogging(logger, cliTransport)

	reg, err := newRegistry(cmd, logger)
	if err != nil {
		return nil, err
	}
	return sheetscli.NewRunner(reg, nil, output, nil), nil
}
