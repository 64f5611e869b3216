package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"dream-tool/internal/assessor"
	"dream-tool/internal/facility"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/cheggaaa/pb.v1"
)

var csvHeader = []string{
	"facility",
	"pv_size_kw",
	"battery_capacity_wh",
	"generator_size_kw",
	"pv_initial_cost",
	"pv_lifecycle_cost",
	"pv_irr_status",
	"diesel_initial_cost",
	"diesel_lifecycle_cost",
	"diesel_irr_status",
	"lower_lifecycle_cost",
	"lifecycle_savings",
	"assessment_id",
	"error",
}

func batchCmd() *cobra.Command {
	var (
		workers int
		out     string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Assess every facility file in a directory",
		Long:  "Assess every *.yaml facility file in a directory and write a CSV summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}

			facilities, err := facility.LoadDir(args[0])
			if err != nil {
				return err
			}
			if len(facilities) == 0 {
				return fmt.Errorf("no facility files in %s", args[0])
			}

			svc, cleanup, err := newAssessor(cfg, save)
			if err != nil {
				return err
			}
			defer cleanup()

			// Facilities that fail to normalize never reach the assessor but
			// still get a row.
			outcomes := make([]assessor.Outcome, len(facilities))
			var requests []assessor.Request
			var slots []int
			for i, f := range facilities {
				profile, err := f.Profile()
				if err != nil {
					outcomes[i] = assessor.Outcome{Index: i, Request: assessor.Request{FacilityName: f.Name}, Err: err}
					continue
				}
				requests = append(requests, assessor.Request{FacilityName: f.Name, Profile: profile})
				slots = append(slots, i)
			}

			bar := pb.New(len(requests))
			bar.Output = os.Stderr
			bar.ShowTimeLeft = false
			bar.Start()
			results := svc.AssessBatch(cmd.Context(), requests, workers, func(assessor.Outcome) { bar.Increment() })
			bar.Finish()

			failed := 0
			for j, res := range results {
				res.Index = slots[j]
				outcomes[slots[j]] = res
			}
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
					log.Warn().Err(o.Err).Str("facility", o.Request.FacilityName).Msg("assessment failed")
				}
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := writeCSV(w, outcomes); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d assessed, %d failed\n", len(outcomes)-failed, failed)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "number of parallel workers")
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output file (default: stdout)")
	cmd.Flags().BoolVar(&save, "save", false, "persist every assessment to the configured database")
	return cmd
}

func writeCSV(w io.Writer, outcomes []assessor.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, o := range outcomes {
		if err := cw.Write(csvRow(o)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(o assessor.Outcome) []string {
	row := make([]string, len(csvHeader))
	row[0] = o.Request.FacilityName
	if o.Err != nil || o.Record == nil {
		if o.Err != nil {
			row[len(row)-1] = o.Err.Error()
		}
		return row
	}

	r := o.Record.Result
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	c := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

	copy(row[1:], []string{
		f(r.PV.Sizing.PVSizeKw),
		f(r.PV.Sizing.BatteryCapacityWh),
		f(r.Diesel.Sizing.GeneratorSizeKw),
		c(r.PV.InitialCost),
		c(r.PV.LifecycleCost),
		string(r.PV.IRR.Status),
		c(r.Diesel.InitialCost),
		c(r.Diesel.LifecycleCost),
		string(r.Diesel.IRR.Status),
		r.Summary.LowerLifecycleCost,
		c(r.Summary.LifecycleSavings),
		o.Record.ID,
	})
	return row
}
