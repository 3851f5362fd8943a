package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	logsAddr    string
	logsRaw     bool
	logsArchive string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Fetch the captured console text from a running shell",
	Long: `Logs connects to the console stream server of a running workdeck
instance and prints the captured log text. With --archive the compressed
export is written to a file instead.`,
	RunE: fetchLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsAddr, "addr", "localhost:8791", "address of the running console server")
	logsCmd.Flags().BoolVar(&logsRaw, "raw", false, "request the stored text without re-redaction")
	logsCmd.Flags().StringVar(&logsArchive, "archive", "", "write the gzip archive to this file instead of printing")
}

func fetchLogs(cmd *cobra.Command, args []string) error {
	endpoint := "/logs"
	if logsArchive != "" {
		endpoint = "/logs/archive"
	}

	url := fmt.Sprintf("http://%s%s", logsAddr, endpoint)
	if logsRaw {
		url += "?redacted=0"
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("console server unreachable at %s: %w", logsAddr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("console server returned %s", resp.Status)
	}

	if logsArchive != "" {
		f, err := os.Create(logsArchive)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := io.Copy(f, resp.Body); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "archive written to", logsArchive)

		return nil
	}

	_, err = io.Copy(cmd.OutOrStdout(), resp.Body)

	return err
}
