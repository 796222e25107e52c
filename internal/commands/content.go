package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/diogo/folio/internal/api"
	"github.com/diogo/folio/internal/config"
	"github.com/diogo/folio/internal/models"
)

// resourceNames returns the known content resource names, sorted
func resourceNames() []string {
	names := make([]string, 0, len(models.ContentResources))
	for name := range models.ContentResources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveResource maps a resource name to its API path. Absolute paths
// starting with "/" are used as is.
func resolveResource(name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return name, nil
	}
	if path, ok := models.ContentResources[strings.ToLower(name)]; ok {
		return path, nil
	}
	return "", fmt.Errorf("unknown resource %q (known: %s)", name, strings.Join(resourceNames(), ", "))
}

// NewContentCmd creates the content command
func NewContentCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var (
		query   string
		compact bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "content <resource>",
		Short: "Fetch portfolio content as JSON",
		Long: fmt.Sprintf(`Fetch a portfolio content resource and print it as JSON.

Resources: %s, or any API path starting with "/".
Use --query with a gjson path to select part of the document.
Responses carrying an ETag are cached under ~/.folio/cache and revalidated
with If-None-Match on the next run.`, strings.Join(resourceNames(), ", ")),
		Example: `  folio content projects
  folio content posts --query "#.title"
  folio content /api/projects/featured`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveResource(args[0])
			if err != nil {
				return err
			}

			cfg, err := flags.settings(deps)
			if err != nil {
				return err
			}
			logger, closer, err := flags.logger(cmd, cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			var extra []api.ClientOption
			if !noCache {
				cacheDir, err := config.GetCacheDir()
				if err != nil {
					return err
				}
				extra = append(extra, api.WithContentCache(api.NewDiskCache(cacheDir)))
			}
			client := newClient(cfg, logger, extra...)
			defer client.Close()

			result, err := client.FetchContent(commandContext(cmd), path)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", path, err)
			}

			if !gjson.ValidBytes(result.Body) {
				return fmt.Errorf("%s did not return JSON", path)
			}

			doc := gjson.ParseBytes(result.Body)
			if query != "" {
				doc = doc.Get(query)
				if !doc.Exists() {
					return fmt.Errorf("query %q matched nothing", query)
				}
			}

			out := doc.Raw
			if !compact {
				out = gjson.Get(out, "@pretty").Raw
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))

			status := ""
			if n := result.Count(); n >= 0 && query == "" {
				status = fmt.Sprintf("✓ %d items", n)
			}
			if result.NotModified {
				status = strings.TrimSpace(status + " (not modified)")
			}
			if status != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), successStyle.Render(status))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "gjson path to select")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print compact JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the on-disk ETag cache")

	return cmd
}
