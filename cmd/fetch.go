package cmd

import (
	"fmt"

	"github.com/signlab-io/gesturetrain/internal/fetch"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var url string
	var checksum string
	var cacheDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a source dataset archive into the local cache",
		Long: `Fetch downloads a dataset archive over HTTP into the local cache directory,
optionally verifying a SHA-256 checksum. Archives already in the cache are
reused unless --force is given.`,
		Example: `  # Download the ASL alphabet archive
  gesturetrain fetch --url https://example.com/asl_alphabet_train.zip

  # Verify the download against a known checksum
  gesturetrain fetch --url https://example.com/asl_alphabet_train.zip \
    --checksum b7974bd00a84a99921f36ee4403f089853777b5ae8d151c76a86e64900334af9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			downloader := fetch.New(fetch.Config{
				CacheDir:      cacheDir,
				ForceDownload: force,
			})

			path, err := downloader.Fetch(url, checksum)
			if err != nil {
				return err
			}

			fmt.Printf("Archive available at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "URL of the archive to download (required)")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Expected SHA-256 of the archive, hex-encoded")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", fetch.DefaultCacheDir, "Directory to cache downloads in")
	cmd.Flags().BoolVar(&force, "force", false, "Re-download even if the archive is already cached")

	_ = cmd.MarkFlagRequired("url")

	return cmd
}
