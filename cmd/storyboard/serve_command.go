package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"storyboard/internal/fileserve"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve project media over local HTTP",
		Long: "Serve files under the selected project and every recent project at\n" +
			"http://<bind>/files/<absolute path> until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			s, err := ctx.newStore()
			if err != nil {
				return err
			}
			rctx := ctx.requestContext(cmd)

			handler := fileserve.NewHandler(logger)
			if err := s.Open(rctx, ctx.projectDir()); err == nil {
				handler.AddRoot(s.Dir())
				s.Close()
			} else if ctx.projectFlag != nil && strings.TrimSpace(*ctx.projectFlag) != "" {
				return err
			}
			for _, entry := range s.RecentProjects(rctx) {
				handler.AddRoot(entry.Path)
			}
			if len(handler.Roots()) == 0 {
				return fmt.Errorf("no project to serve; pass --project or open a project first")
			}

			if strings.TrimSpace(bind) == "" {
				bind = cfg.Serve.Bind
			}
			srv, err := fileserve.NewServer(bind, handler, logger)
			if err != nil {
				return err
			}
			sigCtx, stop := signal.NotifyContext(rctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Start(sigCtx); err != nil {
				return err
			}
			defer srv.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Serving %d project root(s) at http://%s%s/\n", len(handler.Roots()), srv.Addr(), fileserve.PathPrefix)
			<-sigCtx.Done()
			fmt.Fprintln(out, "Stopping file server")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to serve.bind from config)")
	return cmd
}
