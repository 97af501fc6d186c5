package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/finpipe/statement-ledger/internal/adapter/http/dto"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "finpipe",
		Short:         "Statement ledger CLI tool",
		Long:          `A command line interface for loading bank statements and asking questions about them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:5000", "Base URL of the statement ledger API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")

	root.AddCommand(ingestCmd(), transformCmd(), askCmd())
	return root
}

func ingestCmd() *cobra.Command {
	var skipTransform bool

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Upload .xls or .xlsx statements into the raw table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, path := range args {
				// Classify once, after the last file.
				skip := skipTransform || i < len(args)-1

				var resp dto.IngestResponse
				if err := uploadStatement(path, skip, &resp); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printJSON(resp)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTransform, "skip-transform", false, "Do not run the classification after ingesting")
	return cmd
}

func transformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Classify every raw movement into the classified table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransformResponse
			if err := doJSON(http.MethodPost, "/api/v1/transform", nil, "", &resp); err != nil {
				return err
			}
			printJSON(resp)
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the classified movements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(dto.AskRequest{Question: args[0]})
			if err != nil {
				return err
			}

			var resp dto.AskResponse
			if err := doJSON(http.MethodPost, "/api/v1/ask", bytes.NewReader(body), "application/json", &resp); err != nil {
				return err
			}

			if summary {
				printSummary(resp)
				return nil
			}
			printJSON(resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print a short summary instead of the full response")
	return cmd
}

func uploadStatement(path string, skipTransform bool, out *dto.IngestResponse) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	endpoint := "/api/v1/statements"
	if skipTransform {
		endpoint += "?skip_transform=true"
	}
	return doJSON(http.MethodPost, endpoint, &body, mw.FormDataContentType(), out)
}

func doJSON(method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
			}
			return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printSummary(resp dto.AskResponse) {
	if resp.GeneratedSQL == nil {
		fmt.Println("No SQL was generated.")
		return
	}
	fmt.Printf("SQL: %s\n", *resp.GeneratedSQL)
	fmt.Printf("Rows: %d\n", len(resp.SQLResults))
	if resp.Analysis != nil {
		fmt.Printf("Analysis: %s\n", truncate(*resp.Analysis, 300))
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
