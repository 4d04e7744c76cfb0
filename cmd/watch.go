package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/apiclient"
	"github.com/thenoetrevino/pasosync/internal/client"
	"github.com/thenoetrevino/pasosync/internal/config"
	"github.com/thenoetrevino/pasosync/internal/logging"
	"github.com/thenoetrevino/pasosync/internal/models"
	"github.com/thenoetrevino/pasosync/internal/notifications"
	"github.com/thenoetrevino/pasosync/internal/store"
	"github.com/thenoetrevino/pasosync/internal/user"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live changes from other users",
		Long: `Connect to a pasosync server and print a notification for every project
and task change, reconnecting automatically when the connection drops.
With --project, the project's tasks are loaded and followed as well.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().String("project", "", "project id to open")
	cmd.Flags().String("url", "", "websocket URL (overrides config)")
	cmd.Flags().String("api-url", "", "API base URL (overrides config)")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cc := cfg.Client
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cc.URL = url
	}
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cc.APIURL = apiURL
	}
	projectID, _ := cmd.Flags().GetString("project")

	notifications.Init(cfg.ColorScheme)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	return watch(ctx, cc, projectID, cmd.OutOrStdout())
}

// watch mirrors the server into a store and prints its notifications to out
// until ctx is done
func watch(ctx context.Context, cc config.ClientConfig, projectID string, out io.Writer) error {
	logger := logging.Logger

	svc := client.New(client.Options{
		URL:                  cc.URL,
		HeartbeatInterval:    cc.HeartbeatInterval,
		ReconnectBase:        cc.ReconnectBase,
		MaxReconnectAttempts: cc.MaxReconnectAttempts,
		DialTimeout:          cc.DialTimeout,
		User:                 user.Name(),
		Logger:               logger,
	})
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close sync connection", "error", err)
		}
	}()

	st := store.New(store.Options{
		API:        apiclient.New(cc.APIURL, nil),
		Socket:     svc,
		LastAction: client.NewLastAction(client.SystemClock, cc.LastActionTTL),
		Logger:     logger,
		Navigator: store.NavigatorFunc(func() {
			_, _ = fmt.Fprintln(out, notifications.RenderInline(notifications.Warning, "The open project was deleted"))
		}),
		OnNotify: func(_ models.EntityKind, n notifications.Notification) {
			_, _ = fmt.Fprintln(out, notifications.RenderNotification(n))
		},
	})
	st.Bind()
	defer st.Close()

	removeOpen := svc.OnOpen(func(reconnected bool) {
		msg := "Connected to " + cc.URL
		if reconnected {
			msg = "Reconnected to " + cc.URL
		}
		_, _ = fmt.Fprintln(out, notifications.RenderInline(notifications.Success, msg))
	})
	defer removeOpen()

	svc.Connect()

	if err := st.LoadProjects(ctx); err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}
	if projectID != "" {
		if _, ok := st.Project(projectID); !ok {
			return fmt.Errorf("project %s: %w", projectID, models.ErrNotFound)
		}
		if err := st.SelectProject(ctx, projectID); err != nil {
			return fmt.Errorf("failed to open project %s: %w", projectID, err)
		}
	}
	printSummary(out, st)

	<-ctx.Done()
	return nil
}

func printSummary(out io.Writer, st *store.Store) {
	projects := st.Projects()
	_, _ = fmt.Fprintf(out, "Watching %d project(s)\n", len(projects))

	current, ok := st.CurrentProject()
	if !ok {
		return
	}
	tasks := st.Tasks(current.ID)
	_, _ = fmt.Fprintf(out, "Open project %q with %d task(s)\n", current.Name, len(tasks))
	for _, t := range tasks {
		_, _ = fmt.Fprintf(out, "  %s  %s  %s\n", t.ID, t.State, t.Title)
	}
}
