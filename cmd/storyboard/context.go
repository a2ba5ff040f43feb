package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"storyboard/internal/assets"
	"storyboard/internal/config"
	"storyboard/internal/logging"
	"storyboard/internal/persist"
	"storyboard/internal/recent"
	"storyboard/internal/services"
	"storyboard/internal/store"
)

type commandContext struct {
	configFlag  *string
	projectFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, projectFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		projectFlag: projectFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) projectDir() string {
	if c.projectFlag == nil || strings.TrimSpace(*c.projectFlag) == "" {
		return "."
	}
	return strings.TrimSpace(*c.projectFlag)
}

// requestContext tags the command's context with a correlation id so every
// log line of one invocation can be grouped.
func (c *commandContext) requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRequestID(ctx, uuid.NewString())
}

func (c *commandContext) newStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return store.New(
		persist.New(logger),
		assets.New(logger, assets.WithThumbnailSize(cfg.Assets.ThumbnailSize)),
		recent.New(cfg.RecentFilePath(), cfg.Recent.MaxEntries, logger),
		logger,
	), nil
}

// withProject opens the selected project and runs fn against it. When save
// is set and fn leaves the project dirty, the project is saved afterwards,
// even if fn returned an error after partially applying a change.
func (c *commandContext) withProject(cmd *cobra.Command, save bool, fn func(context.Context, *store.Store) error) error {
	s, err := c.newStore()
	if err != nil {
		return err
	}
	ctx := c.requestContext(cmd)
	if err := s.Open(ctx, c.projectDir()); err != nil {
		return err
	}
	defer s.Close()
	ctx = services.WithProjectDir(ctx, s.Dir())

	runErr := fn(ctx, s)
	if save && s.Dirty() {
		if err := s.Save(ctx); err != nil {
			if runErr != nil {
				return runErr
			}
			return err
		}
	}
	return runErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
