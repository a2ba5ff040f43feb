package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyboard/internal/project"
	"storyboard/internal/store"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, inspect and relocate projects",
	}
	projectCmd.AddCommand(newProjectCreateCommand(ctx))
	projectCmd.AddCommand(newProjectInfoCommand(ctx))
	projectCmd.AddCommand(newProjectSaveAsCommand(ctx))
	projectCmd.AddCommand(newProjectUpdateCommand(ctx))
	return projectCmd
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.newStore()
			if err != nil {
				return err
			}
			if strings.TrimSpace(parent) == "" {
				parent = "."
			}
			if err := s.Create(ctx.requestContext(cmd), args[0], parent); err != nil {
				return err
			}
			defer s.Close()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"name": args[0], "path": s.Dir()})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %q at %s\n", args[0], s.Dir())
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "dir", "d", "", "Parent directory for the project (defaults to the current directory)")
	return cmd
}

func newProjectInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show project details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				p, _ := s.Project()
				if ctx.jsonOutput() {
					return writeJSON(cmd, struct {
						Path    string          `json:"path"`
						Project project.Project `json:"project"`
					}{Path: s.Dir(), Project: p})
				}
				assetCount, runCount := 0, 0
				for _, scene := range p.Scenes {
					assetCount += len(scene.Assets)
					runCount += len(scene.GenerationRuns)
				}
				track := "-"
				if p.AudioTimeline != nil {
					track = p.AudioTimeline.TrackPath
				}
				rows := [][]string{
					{"Name", p.Name},
					{"Description", dash(p.Description)},
					{"Path", s.Dir()},
					{"Asset strategy", titleLabel(string(p.Settings.AssetStrategy))},
					{"Created", formatTimestamp(p.CreatedAt)},
					{"Modified", formatTimestamp(p.ModifiedAt)},
					{"Scenes", strconv.Itoa(len(p.Scenes))},
					{"Assets", strconv.Itoa(assetCount)},
					{"Generation runs", strconv.Itoa(runCount)},
					{"Audio track", track},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func newProjectSaveAsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save-as <dir>",
		Short: "Write the project and its media into another directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(rctx context.Context, s *store.Store) error {
				if err := s.SaveAs(rctx, args[0]); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"path": s.Dir()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved project to %s\n", s.Dir())
				return nil
			})
		},
	}
}

func newProjectUpdateCommand(ctx *commandContext) *cobra.Command {
	var name, description, strategy string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change project name, description or asset strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u store.ProjectUpdate
			if cmd.Flags().Changed("name") {
				u.Name = &name
			}
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("strategy") {
				st := project.AssetStrategy(strings.ToLower(strings.TrimSpace(strategy)))
				u.AssetStrategy = &st
			}
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.UpdateProject(u); err != nil {
					return err
				}
				if !ctx.jsonOutput() {
					fmt.Fprintln(cmd.OutOrStdout(), "Project updated")
					return nil
				}
				p, _ := s.Project()
				return writeJSON(cmd, p)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&description, "description", "", "New project description")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Asset strategy (bundle or reference)")
	return cmd
}

func newRecentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "recent",
		Aliases: []string{"recents"},
		Short:   "List recently opened projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.newStore()
			if err != nil {
				return err
			}
			entries := s.RecentProjects(ctx.requestContext(cmd))
			if ctx.jsonOutput() {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recent projects")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for i, e := range entries {
				rows = append(rows, []string{strconv.Itoa(i + 1), e.Name, e.Path, formatTimestamp(e.ModifiedAt)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Name", "Path", "Opened"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
}
