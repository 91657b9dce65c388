package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcptest/mcptest/pkg/config"
	"github.com/mcptest/mcptest/pkg/mcp"
)

var sendCmd = &cobra.Command{
	Use:   "send <descriptor> <raw-json-file>",
	Short: "Send one ad hoc JSON-RPC message to a server and print the reply",
	Long: `A thin escape hatch for exploring a server's behavior outside a
suite: connects, performs the handshake, sends the request read from
raw-json-file, and prints whatever comes back.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendRaw(args[0], args[1])
	},
}

func sendRaw(descriptorPath, rawRequestPath string) error {
	desc, err := config.LoadDescriptor(descriptorPath)
	if err != nil {
		return fmt.Errorf("loading descriptor: %w", err)
	}

	data, err := os.ReadFile(rawRequestPath)
	if err != nil {
		return fmt.Errorf("reading raw request: %w", err)
	}

	var raw config.RawRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing raw request: %w", err)
	}

	client, err := mcp.NewClient(*desc, mcp.WithLogger(newCLILogger()))
	if err != nil {
		return fmt.Errorf("constructing client: %w", err)
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer client.Disconnect()

	resp, err := client.SendMessage(ctx, raw.Method, raw.Params, true, mcp.DefaultRequestTimeout)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
