package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/itchyny/gojq"
	"github.com/slavik-pastushenko/blockchain-go/client"
	"github.com/urfave/cli/v2"
)

// newAPIClient builds an HTTP client for the service named by the global
// --server-url flag. Only errors are logged, so command output stays clean.
func newAPIClient(c *cli.Context) *client.Client {
	httpClient := &http.Client{
		// Mining requests block until proof-of-work completes, so leave
		// plenty of room beyond the usual request time.
		Timeout: 10 * time.Minute,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	return client.NewClient(c.String("server-url"), httpClient, logger)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printFiltered runs a jq expression over v and prints every result.
// An empty expression falls back to plain indented JSON.
func printFiltered(v any, filter string) error {
	if filter == "" {
		return printJSON(v)
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	// gojq operates on the generic JSON representation, so round-trip
	// the value through encoding/json first.
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for filtering: %w", err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return fmt.Errorf("failed to unmarshal value for filtering: %w", err)
	}

	iter := code.Run(generic)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			return fmt.Errorf("jq filter failed: %w", err)
		}
		if err := printJSON(result); err != nil {
			return err
		}
	}

	return nil
}
