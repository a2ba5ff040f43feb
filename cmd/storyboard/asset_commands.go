package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storyboard/internal/project"
	"storyboard/internal/store"
)

func newAssetCommand(ctx *commandContext) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Import and manage scene media",
	}
	assetCmd.AddCommand(newAssetImportCommand(ctx))
	assetCmd.AddCommand(newAssetListCommand(ctx))
	assetCmd.AddCommand(newAssetDeleteCommand(ctx))
	assetCmd.AddCommand(newAssetPathCommand(ctx))
	assetCmd.AddCommand(newAssetRevealCommand(ctx))
	return assetCmd
}

func newAssetImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <sceneId> <file>...",
		Short: "Copy files into a scene",
		Long: "Copy files into a scene in the order given. The first file that cannot be copied stops\n" +
			"the import; files imported before it are kept and the project is saved.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(rctx context.Context, s *store.Store) error {
				imported, err := s.ImportAssets(rctx, args[0], args[1:])
				if ctx.jsonOutput() {
					if jsonErr := writeJSON(cmd, imported); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				out := cmd.OutOrStdout()
				for _, asset := range imported {
					fmt.Fprintf(out, "Imported %s as %s (%s)\n", asset.OriginalPath, asset.ID, asset.Kind)
				}
				return err
			})
		},
	}
}

func newAssetListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list <sceneId>",
		Aliases: []string{"ls"},
		Short:   "List the assets of a scene",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				scene, ok := s.Scene(args[0])
				if !ok {
					return sceneNotFound(args[0])
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, scene.Assets)
				}
				if len(scene.Assets) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No assets")
					return nil
				}
				rows := make([][]string, 0, len(scene.Assets))
				for _, asset := range scene.Assets {
					rows = append(rows, []string{asset.ID, titleLabel(string(asset.Kind)), asset.Filename, thumbnailLabel(asset), asset.OriginalPath})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Type", "File", "Thumbnail", "Original"}, rows, nil))
				return nil
			})
		},
	}
}

func newAssetDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <sceneId> <assetId>",
		Aliases: []string{"rm"},
		Short:   "Delete an asset and its thumbnail",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, true, func(rctx context.Context, s *store.Store) error {
				if err := s.DeleteAsset(rctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted asset %s\n", args[1])
				return nil
			})
		},
	}
}

func newAssetPathCommand(ctx *commandContext) *cobra.Command {
	var thumbnail bool
	cmd := &cobra.Command{
		Use:   "path <sceneId> <assetId>",
		Short: "Print the absolute path of an asset or its thumbnail",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				var (
					path string
					err  error
				)
				if thumbnail {
					path, err = s.ThumbnailPath(args[0], args[1])
				} else {
					path, err = s.AssetPath(args[0], args[1])
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"path": path})
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&thumbnail, "thumbnail", false, "Resolve the thumbnail instead of the asset file")
	return cmd
}

func newAssetRevealCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <sceneId> <assetId>",
		Short: "Show an asset in the system file manager",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd, false, func(_ context.Context, s *store.Store) error {
				return s.RevealAsset(args[0], args[1])
			})
		},
	}
}

func thumbnailLabel(asset project.Asset) string {
	if asset.ThumbnailPath == nil {
		return "-"
	}
	return "yes"
}
