package cmd

import (
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bespinosaaco/KPAdmin/internal/config"
	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
	"github.com/bespinosaaco/KPAdmin/internal/formfill"
	"github.com/bespinosaaco/KPAdmin/internal/gelf"
	"github.com/bespinosaaco/KPAdmin/internal/handler"
	"github.com/bespinosaaco/KPAdmin/internal/ledger"
	"github.com/bespinosaaco/KPAdmin/internal/models"
	"github.com/bespinosaaco/KPAdmin/internal/router"
	"github.com/bespinosaaco/KPAdmin/internal/service"
)

func serveCmd() *cobra.Command {
	var addr string

	command := &cobra.Command{
		Use:     "serve",
		Short:   "run the form server",
		Example: "kpadmin serve -a :8080",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			runServer(cfg)
		},
	}

	command.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides KPADMIN_ADDR)")

	command.Flags().SortFlags = false

	return command
}

func runServer(cfg *config.Config) {
	// GELF UDP logging
	if cfg.GelfAddr != "" {
		gelfWriter, err := gelf.New(cfg.GelfAddr)
		if err != nil {
			logrus.Warnf("GELF init failed: %v", err)
		} else {
			logrus.SetOutput(io.MultiWriter(os.Stderr, gelfWriter))
			logrus.Infof("GELF logging: enabled (%s)", cfg.GelfAddr)
		}
	}

	client := forgejo.New(forgejo.Options{
		RepoURL:  cfg.RepoURL,
		APIBase:  cfg.APIBase,
		Owner:    cfg.Owner,
		Repo:     cfg.Repo,
		Branch:   cfg.Branch,
		Username: cfg.Username,
		Password: cfg.Password,
	})

	// The template is read once at startup. A submission against a stale
	// field set is caught by the session token, not by re-reading the file.
	tmpl := formfill.NewTemplate(cfg.TemplatePath)
	fields, err := tmpl.Fields()
	if err != nil {
		logrus.Fatalf("read template %s: %v", cfg.TemplatePath, err)
	}
	binding, err := formfill.NewBinding(models.FieldNames(), fields)
	if err != nil {
		logrus.Fatalf("bind template %s: %v", cfg.TemplatePath, err)
	}
	logrus.Infof("Template %s: %d fields, schema %s", cfg.TemplatePath, len(fields), binding.Hash())

	records := ledger.NewStore(client, cfg.LedgerPath, cfg.LedgerRetries)

	subSvc := service.NewSubmissionService(client, records, tmpl, binding, service.FormConfig{
		ID:         cfg.FormID,
		Title:      cfg.FormTitle,
		PublishDir: cfg.PublishDir,
		RecordsURL: cfg.RecordsURL,
	})

	formH := handler.NewFormHandler(subSvc, cfg.TemplatePath, cfg.SessionSecret, cfg.SessionTTL)
	ledgerH := handler.NewLedgerHandler(records)
	dashH := handler.NewDashboardHandler(subSvc)

	r := router.New(cfg.SessionSecret, formH, ledgerH, dashH)

	logrus.Infof("KPAdmin server starting on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logrus.Fatalf("Server failed: %v", err)
	}
}
