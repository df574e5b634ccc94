package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/linemk/printshop/internal/api"
	"github.com/linemk/printshop/internal/app"
	"github.com/linemk/printshop/internal/config"
	"github.com/linemk/printshop/internal/lib/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cliNavigator вместо перехода на страницу входа подсказывает команду
type cliNavigator struct {
	out      io.Writer
	location string
}

func (n *cliNavigator) Location() string { return n.location }

func (n *cliNavigator) Navigate(path string) {
	redirect := n.location
	if u, err := url.Parse(path); err == nil {
		redirect = u.Query().Get("redirectTo")
	}
	fmt.Fprintf(n.out, "session expired: run `printshop login`, then retry `printshop %s`\n",
		strings.ReplaceAll(strings.Trim(redirect, "/"), "/", " "))
}

type cli struct {
	configPath string
	app        *app.App
	nav        *cliNavigator
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg := config.MustLoad(c.configPath)

	log := logger.SetupLogger(cfg.Env, cfg.Log.File)
	if cfg.Log.File == "" && cfg.Env == logger.EnvLocal {
		// без файла логов вывод команд важнее отладки
		log = logger.Discard()
	}

	c.nav = &cliNavigator{out: cmd.ErrOrStderr(), location: location(cmd)}
	application, err := app.NewApp(log, cfg, c.nav)
	if err != nil {
		return errors.Wrap(err, "failed to initialize app")
	}
	c.app = application
	log.Debug("cli started", slog.String("command", cmd.CommandPath()))
	return nil
}

func (c *cli) teardown() {
	if c.app != nil {
		c.app.Close()
	}
}

// describe - ошибка для вывода пользователю, без деталей транспорта
func describe(what string, err error) error {
	return errors.New(api.Describe(what, err))
}

// location - путь команды, на который вернуться после входа
func location(cmd *cobra.Command) string {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name())
	return "/" + strings.Join(strings.Fields(path), "/")
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "printshop",
		Short:         "3D print storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newLocaleCmd(c),
		newUploadCmd(c),
		newPreviewCmd(c),
		newMaterialsCmd(c),
		newQuoteCmd(c),
		newCartCmd(c),
		newCheckoutCmd(c),
		newOrdersCmd(c),
		newOrderCmd(c),
		newWorkshopCmd(c),
	)
	return root, c
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, c := newRootCmd()
	err := root.ExecuteContext(ctx)
	c.teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
