package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyboard/internal/project"
	"storyboard/internal/services"
	"storyboard/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Record content-generation runs for a scene",
	}
	runCmd.AddCommand(newRunAddCommand(ctx))
	runCmd.AddCommand(newRunUpdateCommand(ctx))
	runCmd.AddCommand(newRunListCommand(ctx))
	return runCmd
}

func newRunAddCommand(ctx *commandContext) *cobra.Command {
	var kind, prompt, params string
	cmd := &cobra.Command{
		Use:   "add <sceneId>",
		Short: "Register a pending generation run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := store.RunSpec{
				Kind:   project.RunKind(strings.ToLower(strings.TrimSpace(kind))),
				Prompt: prompt,
			}
			if strings.TrimSpace(params) != "" {
				if err := json.Unmarshal([]byte(params), &spec.Parameters); err != nil {
					return services.Wrap(services.ErrValidation, "cli", "run add", "--params must be a JSON object", err)
				}
			}
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				run, err := s.AddGenerationRun(args[0], spec)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, run)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s run %s\n", run.Kind, run.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(project.RunImage), "Run type (text or image)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt sent to the generator")
	cmd.Flags().StringVar(&params, "params", "", "Generator parameters as a JSON object")
	return cmd
}

func newRunUpdateCommand(ctx *commandContext) *cobra.Command {
	var status, output string
	cmd := &cobra.Command{
		Use:   "update <sceneId> <runId>",
		Short: "Change the status or output asset of a run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u store.RunUpdate
			if cmd.Flags().Changed("status") {
				st := project.RunStatus(strings.ToLower(strings.TrimSpace(status)))
				u.Status = &st
			}
			if cmd.Flags().Changed("output") {
				u.OutputAssetID = &output
			}
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.UpdateGenerationRun(args[0], args[1], u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated run %s\n", args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Run status (pending, running, completed, failed)")
	cmd.Flags().StringVar(&output, "output", "", "Asset id produced by the run")
	return cmd
}

func newRunListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list <sceneId>",
		Aliases: []string{"ls"},
		Short:   "List the generation runs of a scene",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				scene, ok := s.Scene(args[0])
				if !ok {
					return sceneNotFound(args[0])
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, scene.GenerationRuns)
				}
				if len(scene.GenerationRuns) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No generation runs")
					return nil
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				rows := make([][]string, 0, len(scene.GenerationRuns))
				for _, run := range scene.GenerationRuns {
					outputID := "-"
					if run.OutputAssetID != nil {
						outputID = *run.OutputAssetID
					}
					rows = append(rows, []string{run.ID, titleLabel(string(run.Kind)), runStatusLabel(run.Status, colorize), outputID, formatTimestamp(run.Timestamp), dash(run.Prompt)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Type", "Status", "Output", "Recorded", "Prompt"}, rows, nil))
				return nil
			})
		},
	}
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	audioCmd := &cobra.Command{
		Use:   "audio",
		Short: "Attach a soundtrack and pin scenes to it",
	}
	audioCmd.AddCommand(&cobra.Command{
		Use:   "set <trackPath>",
		Short: "Attach a soundtrack to the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.SetAudioTimeline(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Soundtrack set to %s\n", args[0])
				return nil
			})
		},
	})
	audioCmd.AddCommand(&cobra.Command{
		Use:   "mark <sceneId> <seconds>",
		Short: "Pin a scene to a soundtrack position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "audio mark", "seconds must be a number", err)
			}
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.SetSceneMarker(args[0], seconds); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scene %s marked at %.2fs\n", args[0], seconds)
				return nil
			})
		},
	})
	audioCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the soundtrack and all markers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(_ context.Context, s *store.Store) error {
				if err := s.ClearAudioTimeline(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Soundtrack cleared")
				return nil
			})
		},
	})
	return audioCmd
}
