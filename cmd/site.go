package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage sites",
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer b.Close()

		sites, err := b.sites.ListSites()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDOMAIN")
		for _, s := range sites {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.Domain)
		}
		return w.Flush()
	},
}

var siteCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domainName, _ := cmd.Flags().GetString("domain")
		b, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer b.Close()

		site, err := b.sites.CreateSite(args[0], domainName)
		if err != nil {
			return err
		}
		fmt.Println(site.ID)
		return nil
	},
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage pages of a site",
}

var pageListCmd = &cobra.Command{
	Use:   "list <siteId>",
	Short: "List the pages of a site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer b.Close()

		pages, err := b.sites.ListPages(args[0])
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSLUG\tPUBLISHED")
		for _, p := range pages {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", p.ID, p.Title, p.Slug, p.Published)
		}
		return w.Flush()
	},
}

var pageCreateCmd = &cobra.Command{
	Use:   "create <siteId> <title>",
	Short: "Add a page to a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, _ := cmd.Flags().GetString("slug")
		b, err := openBackend(logger)
		if err != nil {
			return err
		}
		defer b.Close()

		p, err := b.sites.CreatePage(context.Background(), args[0], args[1], slug)
		if err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	},
}

func init() {
	siteCreateCmd.Flags().String("domain", "", "custom domain of the site")
	pageCreateCmd.Flags().String("slug", "", "URL path (default: derived from the title)")

	siteCmd.AddCommand(siteListCmd, siteCreateCmd)
	pageCmd.AddCommand(pageListCmd, pageCreateCmd)
	rootCmd.AddCommand(siteCmd, pageCmd)
}
