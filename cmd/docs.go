package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/assessor/internal/retrieval"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the local study material index",
}

var docsIngestCmd = &cobra.Command{
	Use:   "ingest <path|url>...",
	Short: "Index files or web pages for grounded interviews",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		cfg := retrieval.DefaultIngestConfig()
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			cfg.Concurrency = n
		}
		results, err := retrieval.NewIngester(st.DocumentRepo(), cfg, logger).Ingest(cmd.Context(), args)
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}

		for _, r := range results {
			fmt.Printf("%-48s  %-32s  %3d sections  %4d chunks\n",
				truncate(r.Source, 48), truncate(r.Title, 32), r.Sections, r.Chunks)
		}
		return nil
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		docs, err := st.DocumentRepo().ListDocuments(cmd.Context())
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents indexed.")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%-5d  %-19s  %-32s  %s\n",
				d.ID, d.IngestedAt.Local().Format("2006-01-02 15:04:05"), truncate(d.Title, 32), d.Source)
		}
		return nil
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the local index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top")
		threshold, _ := cmd.Flags().GetFloat64("threshold")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		chunks, err := retrieval.NewLocalIndex(st.DocumentRepo()).
			Search(cmd.Context(), strings.Join(args, " "), topK, threshold)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(chunks) == 0 {
			fmt.Println("No matching chunks.")
			return nil
		}

		sep := strings.Repeat("─", 60)
		for _, c := range chunks {
			fmt.Println(sep)
			fmt.Printf("%.2f  [%s] %s\n", c.Score, c.Type, c.Title)
			if c.Content != "" {
				fmt.Println(truncate(c.Content, 400))
			}
		}
		return nil
	},
}

func init() {
	docsIngestCmd.Flags().Int("concurrency", 0, "Sources fetched in parallel (default 4)")
	docsSearchCmd.Flags().IntP("top", "k", 5, "Number of chunks to return")
	docsSearchCmd.Flags().Float64("threshold", retrieval.DefaultThreshold, "Minimum score")

	docsCmd.AddCommand(docsIngestCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsSearchCmd)
}
