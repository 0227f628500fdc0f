// Command jsonapid runs a demo JSON:API server backed by the
// in-memory store, exposing the canonical articles/people/comments
// resource types.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newcontext-oss/jsonapi"
	"github.com/newcontext-oss/jsonapi/inflect"
	"github.com/newcontext-oss/jsonapi/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Fatal("jsonapid failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsonapid",
		Short: "Demo JSON:API server for the jsonapi transcoding library",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo resource types over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	serve.Flags().String("addr", ":8080", "listen address")
	serve.Flags().String("log-level", "info", "log level")
	serve.Flags().StringSlice("inflectors", []string{"parameterize"}, "field name inflector chain")

	viper.SetEnvPrefix("JSONAPID")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(serve.Flags())

	viper.SetConfigName("jsonapid")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/jsonapid")
	_ = viper.ReadInConfig()

	root.AddCommand(serve)
	return root
}

func runServe(ctx context.Context) error {
	log := logrus.New()
	if level, err := logrus.ParseLevel(viper.GetString("log-level")); err == nil {
		log.SetLevel(level)
	}

	chain, err := inflect.NewChain(viper.GetStringSlice("inflectors")...)
	if err != nil {
		return err
	}

	codec := jsonapi.NewCodec(
		jsonapi.WithInflectors(chain),
		jsonapi.WithSchemas(
			jsonapi.NewSchema("articles").
				Attribute("title").
				Attribute("body").
				ToOne("author", "people").
				ToMany("comments", "comments"),
			jsonapi.NewSchema("people").
				Attribute("first_name").
				Attribute("last_name").
				Attribute("twitter"),
			jsonapi.NewSchema("comments").
				Attribute("body").
				ToOne("author", "people"),
		),
	)

	handler := server.DefaultHandler(server.ResourceHandler{
		Codec: codec,
		Store: server.NewMemoryStorage(),
		Log:   log,
	}, log)

	srv := &http.Server{
		Addr:              viper.GetString("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("jsonapid listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
