package cmd

import (
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bespinosaaco/KPAdmin/internal/config"
	"github.com/bespinosaaco/KPAdmin/internal/formfill"
	"github.com/bespinosaaco/KPAdmin/internal/models"
)

func fieldsCmd() *cobra.Command {
	var templatePath string

	command := &cobra.Command{
		Use:     "fields",
		Short:   "list the fillable fields of the form template",
		Example: "kpadmin fields -t assets/f100d_e_fillable.pdf",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			if templatePath == "" {
				templatePath = cfg.TemplatePath
			}

			tmpl := formfill.NewTemplate(templatePath)
			fields, err := tmpl.Fields()
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Field", "Kind"})
			for i, f := range fields {
				table.Append([]string{strconv.Itoa(i + 1), f.Name, f.Kind})
			}
			table.Render()

			binding, err := formfill.NewBinding(models.FieldNames(), fields)
			if err != nil {
				color.Red("binding: %v\n", err)
				return
			}
			color.Green("schema %s, template binds cleanly\n", binding.Hash())
		},
	}

	command.Flags().StringVarP(&templatePath, "template", "t", "", "path to the fillable PDF (overrides KPADMIN_TEMPLATE)")

	command.Flags().SortFlags = false

	return command
}
