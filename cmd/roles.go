package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spigell/resume-scorer/internal/knowledge"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List curated job roles and industries",
	Run: func(cmd *cobra.Command, _ []string) {
		kb, err := knowledge.Load()
		if err != nil {
			log.Fatalf("loading keyword knowledgebase: %v", err)
		}
		printCatalog(cmd.OutOrStdout(), kb)
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func printCatalog(w io.Writer, kb *knowledge.Knowledgebase) {
	fmt.Fprintln(w, "Roles:")
	for _, role := range kb.Roles() {
		fmt.Fprintf(w, "  %s (%d keywords)\n", role, len(kb.JobKeywords(role)))
	}

	fmt.Fprintln(w, "Industries:")
	for _, industry := range kb.Industries() {
		fmt.Fprintf(w, "  %s\n", industry)
	}
}
