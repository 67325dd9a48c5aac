package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/andreybell91/ignite/internal/application"
	"github.com/andreybell91/ignite/internal/config"
	"github.com/andreybell91/ignite/internal/domain"
)

var warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))

func newValidateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a batch file of descriptors without deploying it",
		Long: `Decode every descriptor in FILE and check it against the deployment
contract: a name and a service are required and counts may not be negative.
Duplicate names with different configurations are reported as conflicts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := config.LoadBatch(args[0], opts.Codec)
			if err != nil {
				return err
			}
			if err := batch.Validate(); err != nil {
				return err
			}
			if _, err := batch.Dedup(); err != nil {
				return err
			}
			for _, d := range batch.Services {
				if d.Unbounded() {
					fmt.Fprintf(out(cmd), "%s %s: neither totalCount nor maxPerNodeCount is set\n", warnStyle.Render("warning:"), d.Name())
				}
				if d.AffinityWithoutCache() {
					fmt.Fprintf(out(cmd), "%s %s: affinityKey is ignored without cacheName\n", warnStyle.Render("warning:"), d.Name())
				}
			}
			fmt.Fprintf(out(cmd), "%d descriptor(s) valid\n", len(batch.Services))
			return nil
		},
	}
}

func newDiffCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "diff FILE",
		Short: "Show what deploying a batch file would do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := config.LoadBatch(args[0], opts.Codec)
			if err != nil {
				return err
			}
			batch, err = batch.Dedup()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(app *App) error {
				tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SERVICE\tDECISION")
				for _, d := range batch.Services {
					decision, err := planDecision(cmd, app, d)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%s\n", d.Name(), decision)
				}
				return tw.Flush()
			})
		},
	}
}

func planDecision(cmd *cobra.Command, app *App, d domain.ServiceDescriptor) (domain.DeployDecision, error) {
	if domain.ValidateDescriptor(d) != nil {
		return domain.DecisionRejected, nil
	}
	dep, err := app.Deployments.Get(cmd.Context(), d.Name())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ClassifyDeployRequest(nil, d), nil
		}
		return "", err
	}
	return domain.ClassifyDeployRequest(&dep.Descriptor, d), nil
}

func newDeployCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy FILE",
		Short: "Deploy every descriptor in a batch file",
		Long: `Deploy the descriptors in FILE in order. Entries equal to what is deployed
are left alone, entries that only change the node filter are re-resolved,
and entries that change anything else under a deployed name fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := config.LoadBatch(args[0], opts.Codec)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(app *App) error {
				results, err := app.Deployments.DeployBatch(cmd.Context(), batch)
				printResults(cmd, results)
				return err
			})
		},
	}
}

func printResults(cmd *cobra.Command, results []application.DeployResult) {
	tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tDECISION\tSTATE\tNODES")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			r.Deployment.Name(), r.Decision, r.Deployment.State, len(r.Deployment.EligibleNodes))
	}
	tw.Flush()
}

func newListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deployed services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				deps, err := app.Deployments.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SERVICE\tKIND\tTOTAL\tPER-NODE\tFILTER\tSTATE\tNODES")
				for _, d := range deps {
					desc := d.Descriptor
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%v\n",
						desc.Name(), desc.Service().Kind(),
						countString(desc.TotalCount()), countString(desc.MaxPerNodeCount()),
						filterString(desc.NodeFilter()), d.State, d.EligibleNodes)
				}
				return tw.Flush()
			})
		},
	}
}

func newHistoryCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "Show the decisions recorded for a service name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				records, err := app.Deployments.History(cmd.Context(), domain.ServiceName(args[0]))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tDECISION\tSUMMARY")
				for _, r := range records {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.RecordedAt.Format("2006-01-02T15:04:05Z07:00"), r.Decision, r.Summary)
				}
				return tw.Flush()
			})
		},
	}
}

func newUndeployCommand(opts *Options) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "undeploy NAME",
		Short: "Undeploy a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := domain.ServiceName(args[0])
			return opts.withApp(cmd, func(app *App) error {
				if err := app.Deployments.Undeploy(cmd.Context(), name); err != nil {
					return err
				}
				if purge {
					if err := app.Deployments.PurgeHistory(cmd.Context(), name); err != nil {
						return err
					}
				}
				fmt.Fprintf(out(cmd), "undeployed %s\n", name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "also delete the decision history")
	return cmd
}

func countString(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}

func filterString(f domain.NodeFilter) string {
	if f == nil {
		return "any"
	}
	return string(f.Kind())
}
