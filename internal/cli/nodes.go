package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andreybell91/ignite/internal/domain"
	"github.com/andreybell91/ignite/internal/infrastructure/hostinfo"
)

func newNodeCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the cluster nodes services can be placed on",
	}
	cmd.AddCommand(newNodeRegisterCommand(opts))
	cmd.AddCommand(newNodeRegisterLocalCommand(opts))
	cmd.AddCommand(newNodeListCommand(opts))
	cmd.AddCommand(newNodeRemoveCommand(opts))
	return cmd
}

func newNodeRegisterCommand(opts *Options) *cobra.Command {
	var name string
	var labels, attrs []string
	cmd := &cobra.Command{
		Use:   "register ID",
		Short: "Register a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			labelMap, err := parsePairs(labels)
			if err != nil {
				return err
			}
			attrMap, err := parsePairs(attrs)
			if err != nil {
				return err
			}
			node := domain.ClusterNode{
				ID:         domain.NodeID(args[0]),
				Name:       name,
				Labels:     labelMap,
				Attributes: attrMap,
			}
			if node.Name == "" {
				node.Name = args[0]
			}
			return opts.withApp(cmd, func(app *App) error {
				if err := app.Nodes.Register(cmd.Context(), node); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "registered node %s\n", node.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to ID)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "label as key=value, repeatable")
	cmd.Flags().StringArrayVar(&attrs, "attr", nil, "attribute as key=value, repeatable")
	return cmd
}

func newNodeRegisterLocalCommand(opts *Options) *cobra.Command {
	var labels []string
	cmd := &cobra.Command{
		Use:   "register-local",
		Short: "Register this machine, probing its OS, CPUs and memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labelMap, err := parsePairs(labels)
			if err != nil {
				return err
			}
			node, err := hostinfo.LocalNode(cmd.Context(), labelMap)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(app *App) error {
				if err := app.Nodes.Register(cmd.Context(), node); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "registered node %s (%s)\n", node.ID, node.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&labels, "label", nil, "extra label as key=value, repeatable")
	return cmd
}

func newNodeListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				nodes, err := app.Nodes.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tLABELS")
				for _, n := range nodes {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Name, formatPairs(n.Labels))
				}
				return tw.Flush()
			})
		},
	}
}

func newNodeRemoveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Deregister a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(app *App) error {
				return app.Nodes.Remove(cmd.Context(), domain.NodeID(args[0]))
			})
		},
	}
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q is not key=value", domain.ErrInvalidArgument, p)
		}
		m[k] = v
	}
	return m, nil
}

func formatPairs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ",")
}
