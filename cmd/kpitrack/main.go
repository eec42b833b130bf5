package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"kpitrack/internal/amqp"
	"kpitrack/internal/cli"
	"kpitrack/internal/config"
	"kpitrack/internal/core"
	applog "kpitrack/internal/log"
	"kpitrack/internal/services"
)

const usage = `Usage: kpitrack <command> [flags]

Commands:
  kpi add      -name NAME -target VALUE [-interval monthly|quarterly|yearly] [-description TEXT] [-owner NAME]
  kpi list
  kpi delete   -id ID
  value record -kpi ID -period YYYY-MM -value VALUE [-comment TEXT]
  value list   -kpi ID
  value update -id ID -value VALUE [-comment TEXT]
  value delete -id ID
  attach       -value ID -file PATH
  files        -value ID
  report       [-kpi ID]

Values use comma-decimal notation with two fraction digits, e.g. 4750,25.`

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// AMQP is optional: without a broker the CLI still records values
	// locally and the worker picks them up through the pending scan.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in local-only mode", applog.FieldError, err)
			amqpClient = nil
		}
	}

	reports := services.NewReportService(repo)
	svc := services.NewKPIService(repo, amqpClient, reports, cfg.AttachmentsDir)
	defer svc.Close()

	ctx := context.Background()
	app := &app{svc: svc, reports: reports, cfg: cfg}

	var err error
	switch os.Args[1] {
	case "kpi":
		err = app.runKPI(ctx, os.Args[2:])
	case "value":
		err = app.runValue(ctx, os.Args[2:])
	case "attach":
		err = app.runAttach(ctx, os.Args[2:])
	case "files":
		err = app.runFiles(ctx, os.Args[2:])
	case "report":
		err = app.runReport(ctx, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	svc     *services.KPIService
	reports *services.ReportService
	cfg     *config.Config
}

func (a *app) runKPI(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("kpi requires a subcommand: add, list, delete")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("kpi add", flag.ExitOnError)
		name := fs.String("name", "", "KPI name")
		target := fs.String("target", "", "target value, e.g. 4750,25")
		interval := fs.String("interval", string(core.IntervalMonthly), "monthly, quarterly or yearly")
		description := fs.String("description", "", "optional description")
		owner := fs.String("owner", "", "optional owner")
		fs.Parse(args[1:])

		targetValue, err := core.ParseDecimalValue(*target)
		if err != nil {
			return fmt.Errorf("parse target: %w", err)
		}
		k, err := a.svc.CreateKPI(ctx, core.KPI{
			Name:        *name,
			Description: *description,
			Target:      targetValue,
			Interval:    core.Interval(*interval),
			Owner:       *owner,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created KPI %d: %s (target %s, %s)\n", k.ID, k.Name, k.Target.Format(), k.Interval)
		return nil

	case "list":
		kpis, err := a.svc.ListKPIs(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTARGET\tINTERVAL\tOWNER")
		for _, k := range kpis {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.Target.Format(), k.Interval, k.Owner)
		}
		return w.Flush()

	case "delete":
		fs := flag.NewFlagSet("kpi delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "KPI id")
		fs.Parse(args[1:])
		if err := a.svc.DeleteKPI(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted KPI %d\n", *id)
		return nil

	default:
		return fmt.Errorf("unknown kpi subcommand: %s", args[0])
	}
}

func (a *app) runValue(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("value requires a subcommand: record, list, update, delete")
	}

	switch args[0] {
	case "record":
		fs := flag.NewFlagSet("value record", flag.ExitOnError)
		kpiID := fs.Int64("kpi", 0, "KPI id")
		periodStr := fs.String("period", "", "period as YYYY-MM")
		valueStr := fs.String("value", "", "value, e.g. 4750,25")
		comment := fs.String("comment", "", "optional comment")
		fs.Parse(args[1:])

		p, err := core.ParsePeriod(*periodStr)
		if err != nil {
			return fmt.Errorf("parse period: %w", err)
		}
		value, err := core.ParseDecimalValue(*valueStr)
		if err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		v, err := a.svc.RecordValue(ctx, core.KPIValue{
			KPIID:   *kpiID,
			Period:  p,
			Value:   value,
			Comment: *comment,
		})
		if err != nil {
			return err
		}
		fmt.Printf("recorded value %d: %s = %s\n", v.ID, v.Period.DisplayName(a.cfg.MonthLocale), v.Value.Format())
		return nil

	case "list":
		fs := flag.NewFlagSet("value list", flag.ExitOnError)
		kpiID := fs.Int64("kpi", 0, "KPI id")
		fs.Parse(args[1:])

		values, err := a.svc.ListValues(ctx, *kpiID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPERIOD\tVALUE\tCOMMENT")
		for _, v := range values {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.ID, v.Period.DisplayName(a.cfg.MonthLocale), v.Value.Format(), v.Comment)
		}
		return w.Flush()

	case "update":
		fs := flag.NewFlagSet("value update", flag.ExitOnError)
		id := fs.Int64("id", 0, "value id")
		valueStr := fs.String("value", "", "new value, e.g. 4750,25")
		comment := fs.String("comment", "", "new comment")
		fs.Parse(args[1:])

		v, err := a.svc.GetValue(ctx, *id)
		if err != nil {
			return err
		}
		if *valueStr != "" {
			newValue, err := core.ParseDecimalValue(*valueStr)
			if err != nil {
				return fmt.Errorf("parse value: %w", err)
			}
			v.Value = newValue
		}
		if *comment != "" {
			v.Comment = *comment
		}
		if err := a.svc.UpdateValue(ctx, v); err != nil {
			return err
		}
		fmt.Printf("updated value %d: %s = %s\n", v.ID, v.Period.Format(), v.Value.Format())
		return nil

	case "delete":
		fs := flag.NewFlagSet("value delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "value id")
		fs.Parse(args[1:])
		if err := a.svc.DeleteValue(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("deleted value %d\n", *id)
		return nil

	default:
		return fmt.Errorf("unknown value subcommand: %s", args[0])
	}
}

func (a *app) runAttach(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("attach", flag.ExitOnError)
	valueID := fs.Int64("value", 0, "value id")
	file := fs.String("file", "", "path of the file to attach")
	fs.Parse(args)

	f, err := a.svc.AttachFile(ctx, *valueID, *file)
	if err != nil {
		return err
	}
	fmt.Printf("attached %s (%d bytes) to value %d\n", f.Filename, f.SizeBytes, *valueID)
	return nil
}

func (a *app) runFiles(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("files", flag.ExitOnError)
	valueID := fs.Int64("value", 0, "value id")
	fs.Parse(args)

	files, err := a.svc.ListFiles(ctx, *valueID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSIZE\tPATH")
	for _, f := range files {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", f.ID, f.Filename, f.SizeBytes, f.Path)
	}
	return w.Flush()
}

func (a *app) runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	kpiID := fs.Int64("kpi", 0, "KPI id (omit for all KPIs)")
	fs.Parse(args)

	now := core.PeriodOf(time.Now())

	if *kpiID != 0 {
		r, err := a.reports.BuildReport(ctx, *kpiID, now)
		if err != nil {
			return err
		}
		a.printReport(r)
		return nil
	}

	all, err := a.reports.BuildAllReports(ctx, now)
	if err != nil {
		return err
	}
	for i, r := range all {
		if i > 0 {
			fmt.Println()
		}
		a.printReport(r)
	}
	return nil
}

func (a *app) printReport(r services.KPIReport) {
	fmt.Printf("%s (target %s, %s)\n", r.KPI.Name, r.KPI.Target.Format(), r.KPI.Interval)
	if r.EntryCount == 0 {
		fmt.Println("  no values recorded")
	} else {
		fmt.Printf("  latest:  %s = %s", r.Latest.Period.DisplayName(a.cfg.MonthLocale), r.Latest.Value.Format())
		if r.OnTarget {
			fmt.Print("  (on target)")
		}
		fmt.Println()
		fmt.Printf("  max:     %s = %s\n", r.Max.Period.DisplayName(a.cfg.MonthLocale), r.Max.Value.Format())
		fmt.Printf("  average: %.2f over %d values\n", r.Average, r.EntryCount)
	}
	if len(r.DuePeriods) > 0 {
		fmt.Print("  due:    ")
		for _, p := range r.DuePeriods {
			fmt.Printf(" %s", p.Format())
		}
		fmt.Println()
	}
}
