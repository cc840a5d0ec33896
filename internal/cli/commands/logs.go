package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/pkg/core"
	"github.com/spf13/cobra"
)

// NewLogsCommand creates the logs command group.
func NewLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"log"},
		Short:   "Browse and prune operation logs",
	}
	cmd.AddCommand(newLogsListCommand(), newLogsDeleteCommand())
	return cmd
}

// LogListOptions holds options for logs list.
type LogListOptions struct {
	Username string
	IP       string
	Path     string
	Status   int
	Page     uint
	PageSize uint
}

func newLogsListCommand() *cobra.Command {
	opts := &LogListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operation logs",
		Example: `  goadmin logs list --username admin --page-size 50
  goadmin logs list --status 500 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := cc.API.OperationLogs.List(ctxOf(cmd), core.OperationLogListRequest{
				Username: opts.Username,
				IP:       opts.IP,
				Path:     opts.Path,
				Status:   opts.Status,
				Page:     core.Page{PageNum: opts.Page, PageSize: opts.PageSize},
			})
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(res)
			}
			r.Header(1, fmt.Sprintf("Operation logs (%d total)", res.Total))
			rows := make([][]string, 0, len(res.Logs))
			for _, l := range res.Logs {
				rows = append(rows, []string{
					itoa(l.ID),
					l.StartTime.Local().Format(time.DateTime),
					l.Username,
					l.IP,
					l.Method,
					l.Path,
					strconv.Itoa(l.Status),
					(time.Duration(l.TimeCost) * time.Millisecond).String(),
					l.Desc,
				})
			}
			r.Table([]string{"ID", "Time", "User", "IP", "Method", "Path", "Status", "Took", "Description"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Username, "username", "", "Filter by username")
	cmd.Flags().StringVar(&opts.IP, "ip", "", "Filter by client IP")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Filter by request path")
	cmd.Flags().IntVar(&opts.Status, "status", 0, "Filter by HTTP status")
	cmd.Flags().UintVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().UintVar(&opts.PageSize, "page-size", 0, "Page size")
	return cmd
}

func newLogsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete operation logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			env, err := cc.API.OperationLogs.BatchDelete(ctxOf(cmd), ids)
			if err != nil {
				return err
			}
			return renderEnvelope(cc.Renderer, env)
		},
	}
}
