package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyboard/internal/project"
	"storyboard/internal/services"
	"storyboard/internal/store"
)

func newSceneCommand(ctx *commandContext) *cobra.Command {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Add, edit and order scenes",
	}
	sceneCmd.AddCommand(newSceneAddCommand(ctx))
	sceneCmd.AddCommand(newSceneListCommand(ctx))
	sceneCmd.AddCommand(newSceneDeleteCommand(ctx))
	sceneCmd.AddCommand(newSceneDuplicateCommand(ctx))
	sceneCmd.AddCommand(newSceneUpdateCommand(ctx))
	sceneCmd.AddCommand(newSceneMoveCommand(ctx))
	sceneCmd.AddCommand(newSceneTagCommand(ctx))
	sceneCmd.AddCommand(newSceneUntagCommand(ctx))
	return sceneCmd
}

func newSceneAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append an empty scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				scene, err := s.AddScene()
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("title") {
					if err := s.UpdateScene(scene.ID, store.SceneUpdate{Title: &title}); err != nil {
						return err
					}
					scene, _ = s.Scene(scene.ID)
				}
				return printScene(cmd, ctx, "Added", scene)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Scene title")
	return cmd
}

func newSceneListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List scenes in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				p, _ := s.Project()
				if ctx.jsonOutput() {
					return writeJSON(cmd, p.Scenes)
				}
				if len(p.Scenes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scenes")
					return nil
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(p.Scenes))
				for _, scene := range p.Scenes {
					rows = append(rows, []string{
						strconv.Itoa(scene.Order),
						scene.ID,
						dash(scene.Title),
						sceneStatusLabel(scene.Status, colorize),
						dash(strings.Join(scene.Tags, ", ")),
						strconv.Itoa(len(scene.Assets)),
					})
				}
				headers := []string{"#", "ID", "Title", "Status", "Tags", "Assets"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
}

func newSceneDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <sceneId>",
		Aliases: []string{"rm"},
		Short:   "Delete a scene and its media files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(rctx context.Context, s *store.Store) error {
				if _, ok := s.Scene(args[0]); !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Scene %s not found; nothing deleted\n", args[0])
					return nil
				}
				if err := s.DeleteScene(rctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted scene %s\n", args[0])
				return nil
			})
		},
	}
}

func newSceneDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "duplicate <sceneId>",
		Aliases: []string{"dup"},
		Short:   "Insert a copy of a scene after it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				dup, err := s.DuplicateScene(args[0])
				if err != nil {
					return err
				}
				return printScene(cmd, ctx, "Duplicated", dup)
			})
		},
	}
}

func newSceneUpdateCommand(ctx *commandContext) *cobra.Command {
	var title, description, camera, dialogue, status string
	var tags []string
	cmd := &cobra.Command{
		Use:   "update <sceneId>",
		Short: "Change scene fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u store.SceneUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("camera") {
				u.CameraNote = &camera
			}
			if flags.Changed("dialogue") {
				u.DialogueNote = &dialogue
			}
			if flags.Changed("status") {
				st := project.SceneStatus(strings.ToLower(strings.TrimSpace(status)))
				u.Status = &st
			}
			if flags.Changed("tags") {
				u.Tags = &tags
			}
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.UpdateScene(args[0], u); err != nil {
					return err
				}
				scene, ok := s.Scene(args[0])
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Scene %s not found; nothing updated\n", args[0])
					return nil
				}
				return printScene(cmd, ctx, "Updated", scene)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Scene title")
	cmd.Flags().StringVar(&description, "description", "", "Scene description")
	cmd.Flags().StringVar(&camera, "camera", "", "Camera note")
	cmd.Flags().StringVar(&dialogue, "dialogue", "", "Dialogue note")
	cmd.Flags().StringVar(&status, "status", "", "Scene status (draft or approved)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Replace tags (comma separated)")
	return cmd
}

func newSceneMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <sceneId> <targetSceneId>",
		Short: "Move a scene to the position held by another scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.ReorderScenes(args[0], args[1]); err != nil {
					return err
				}
				scene, ok := s.Scene(args[0])
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "Scene %s not found; order unchanged\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scene %s is now at position %d\n", scene.ID, scene.Order)
				return nil
			})
		},
	}
}

func newSceneTagCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <sceneId> <tag>...",
		Short: "Add tags to a scene",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				for _, tag := range args[1:] {
					if err := s.AddTag(args[0], tag); err != nil {
						return err
					}
				}
				scene, ok := s.Scene(args[0])
				if !ok {
					return sceneNotFound(args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tags: %s\n", dash(strings.Join(scene.Tags, ", ")))
				return nil
			})
		},
	}
}

func newSceneUntagCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <sceneId> <tag>...",
		Short: "Remove tags from a scene",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				for _, tag := range args[1:] {
					if err := s.RemoveTag(args[0], tag); err != nil {
						return err
					}
				}
				scene, ok := s.Scene(args[0])
				if !ok {
					return sceneNotFound(args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Tags: %s\n", dash(strings.Join(scene.Tags, ", ")))
				return nil
			})
		},
	}
}

func printScene(cmd *cobra.Command, ctx *commandContext, verb string, scene project.Scene) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, scene)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s scene %s at position %d\n", verb, scene.ID, scene.Order)
	return nil
}

func sceneNotFound(id string) error {
	return services.Wrap(services.ErrNotFound, "cli", "scene", fmt.Sprintf("scene %q", id), nil)
}
