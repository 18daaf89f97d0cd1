package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bespinosaaco/KPAdmin/internal/config"
	"github.com/bespinosaaco/KPAdmin/internal/forgejo"
	"github.com/bespinosaaco/KPAdmin/internal/ledger"
)

func ledgerCmd() *cobra.Command {
	command := &cobra.Command{
		Use:     "ledger",
		Short:   "print the signing ledger",
		Example: "kpadmin ledger",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()

			client := forgejo.New(forgejo.Options{
				RepoURL:  cfg.RepoURL,
				APIBase:  cfg.APIBase,
				Owner:    cfg.Owner,
				Repo:     cfg.Repo,
				Branch:   cfg.Branch,
				Username: cfg.Username,
				Password: cfg.Password,
			})

			records := ledger.NewStore(client, cfg.LedgerPath, cfg.LedgerRetries)
			rows, err := records.Rows(cmd.Context())
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Form", "Signed On"})
			for _, rec := range rows {
				table.Append([]string{rec.Name, rec.Form, rec.SignedOn})
			}
			table.Render()

			color.Green("%d record(s) in %s\n", len(rows), cfg.LedgerPath)
		},
	}

	return command
}
