package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/hospital-records/records"
	"github.com/spf13/cobra"
)

func patientsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patients [id]",
		Short: "List patients, or show one patient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			var (
				body json.RawMessage
				err  error
			)
			if len(args) == 1 {
				body, err = a.records.Patient(cmd.Context(), args[0])
			} else {
				body, err = a.records.Patients(cmd.Context())
			}
			if err != nil {
				return a.recordsError(err)
			}
			return a.print(body)
		},
	}
}

func analyticsCmd(a *app) *cobra.Command {
	reports := records.AnalyticsReports()

	return &cobra.Command{
		Use:       "analytics <report>",
		Short:     "Run an analytics report: " + strings.Join(reports, ", "),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: reports,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			body, err := a.records.Analytics(cmd.Context(), args[0])
			if err != nil {
				return a.recordsError(fmt.Errorf("%s: %w", args[0], err))
			}
			return a.print(body)
		},
	}
}
