package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bomend/bomend/pkg/config"
	"github.com/bomend/bomend/pkg/enrich"
	"github.com/bomend/bomend/pkg/httputil"
	"github.com/bomend/bomend/pkg/integrations/clearlydefined"
	"github.com/bomend/bomend/pkg/sbom"
)

// enrichOpts holds the command-line flags for the enrich command.
type enrichOpts struct {
	plan       string // enrichment plan path (TOML)
	output     string // output file path, "-" for stdout
	format     string // output format: "json", "xml", or "" to keep the input format
	serviceURL string // ClearlyDefined base URL override
	refresh    bool   // bypass cached lookup responses
	noCache    bool   // disable the lookup cache entirely
}

// newEnrichCmd creates the enrich command, the main entry point of the tool.
// It loads a BOM document and an enrichment plan, validates the plan against
// the document, and applies it. The plan applies completely or not at all.
func newEnrichCmd() *cobra.Command {
	var opts enrichOpts

	cmd := &cobra.Command{
		Use:   "enrich [bom-file]",
		Short: "Apply an enrichment plan to a CycloneDX BOM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnrich(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.plan, "plan", "p", "", "enrichment plan file (TOML)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with .enriched suffix, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or xml (default: same as input)")
	cmd.Flags().StringVar(&opts.serviceURL, "service-url", "", "ClearlyDefined API base URL (for self-hosted instances)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-fetch license data even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the lookup response cache")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func runEnrich(ctx context.Context, input string, opts *enrichOpts) error {
	logger := loggerFromContext(ctx)
	track := newProgress(logger)

	plan, err := config.Load(opts.plan)
	if err != nil {
		return err
	}

	doc, inFormat, err := sbom.Load(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d components", input, len(doc.Components))

	var defs enrich.Definitions
	if plan.NeedsLookup() {
		c := newCache(ctx, opts.noCache)
		defer c.Close()
		client := clearlydefined.NewClient(c, httputil.NewDefaultLimiter(), opts.serviceURL)
		client.Refresh = opts.refresh
		defs = client
	}

	actions := plan.Actions(defs, logger)
	if len(actions) == 0 {
		printInfo("Plan has no rules; document left unchanged")
	}

	var spin *spinner
	if plan.NeedsLookup() {
		spin = newSpinner("Looking up licenses")
		spin.start()
	}
	res := enrich.NewRunner(logger).Run(ctx, doc, actions)
	if spin != nil {
		spin.stop()
	}

	enriched, err := res.Unwrap()
	if err != nil {
		printError("Plan rejected: %s", err)
		return err
	}

	outFormat := inFormat
	if opts.format != "" {
		if outFormat, err = sbom.ParseFormat(opts.format); err != nil {
			return err
		}
	}
	data, err := sbom.Serialize(enriched, outFormat)
	if err != nil {
		return err
	}

	outPath := outputPath(opts.output, input, outFormat)
	if outPath == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		track.done(fmt.Sprintf("Applied %d actions to %d components", len(actions), len(enriched.Components)))
		return nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	track.done(fmt.Sprintf("Applied %d actions to %d components", len(actions), len(enriched.Components)))
	printSuccess("Enriched BOM written")
	printFile(outPath)
	return nil
}

// outputPath derives the output file path. An explicit output (including "-"
// for stdout) wins; otherwise the input name gets an .enriched suffix and
// the extension of the output format.
func outputPath(output, input string, format sbom.Format) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".enriched." + string(format)
}
