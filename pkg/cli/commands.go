package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/calendar"
	"github.com/smith3v/family-medicine-manager/pkg/config"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/importexport"
	"github.com/smith3v/family-medicine-manager/pkg/medications"
	"github.com/smith3v/family-medicine-manager/pkg/notify"
	"github.com/smith3v/family-medicine-manager/pkg/reminders"
	"github.com/smith3v/family-medicine-manager/pkg/settings"
	"github.com/smith3v/family-medicine-manager/pkg/ui"
	"golang.org/x/sync/errgroup"
)

var settingAliases = map[string]string{
	"days":                     db.SettingReminderDays,
	"interval":                 db.SettingReminderInterval,
	db.SettingReminderDays:     db.SettingReminderDays,
	db.SettingReminderInterval: db.SettingReminderInterval,
}

func (a *App) runWatch(ctx context.Context, args []string) error {
	fs := a.flagSet("run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	values, err := settings.Current()
	if err != nil {
		return err
	}

	dispatcher := notify.NewDispatcher(notify.NewConsoleDisplay(a.In, a.Out))
	poller := reminders.NewPoller(dispatcher,
		reminders.WithTick(config.AppConfig.Reminders.Tick()),
		reminders.WithRecovery(config.AppConfig.Reminders.Recovery()),
		reminders.WithClock(a.Now),
	)

	fmt.Fprintf(a.Out, "Checking every %d minute(s) for medications running out within %d day(s). Press Ctrl+C to quit.\n",
		values.ReminderInterval, values.ReminderDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		poller.Run(gctx)
		return nil
	})
	return g.Wait()
}

type medicationFlags struct {
	name, user, dose, packSize, packs, date, notes *string
}

func addMedicationFlags(fs *flag.FlagSet, defaultDate string) medicationFlags {
	return medicationFlags{
		name:     fs.String("name", "", "medication name and strength"),
		user:     fs.String("user", "", "who takes it"),
		dose:     fs.String("dose", "", "pills per day, may be fractional"),
		packSize: fs.String("pack-size", "", "pills per pack"),
		packs:    fs.String("packs", "", "number of packs bought"),
		date:     fs.String("date", defaultDate, "purchase date, YYYY-MM-DD"),
		notes:    fs.String("notes", "", "free-form notes"),
	}
}

func (f medicationFlags) raw() medications.RawInput {
	return medications.RawInput{
		NameSpec:       *f.name,
		UserName:       *f.user,
		DailyDose:      *f.dose,
		PackSize:       *f.packSize,
		PacksPurchased: *f.packs,
		PurchaseDate:   *f.date,
		Notes:          *f.notes,
	}
}

func (a *App) runAdd(_ context.Context, args []string) error {
	fs := a.flagSet("add")
	flags := addMedicationFlags(fs, calendar.Today(a.Now()).String())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return apperr.Validation("arguments", fmt.Sprintf("unexpected %q", joinArgs(fs.Args())))
	}

	in, err := flags.raw().Parse()
	if err != nil {
		return err
	}
	med, err := medications.Create(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Added #%d %s. Next purchase: %s\n", med.ID, med.NameSpec, med.NextPurchaseDate)
	return nil
}

func (a *App) runEdit(_ context.Context, args []string) error {
	fs := a.flagSet("edit")
	flags := addMedicationFlags(fs, "")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	id, err := singleID(positional)
	if err != nil {
		return err
	}

	existing, err := medications.Get(id)
	if err != nil {
		return err
	}
	raw := rawFrom(existing)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			raw.NameSpec = *flags.name
		case "user":
			raw.UserName = *flags.user
		case "dose":
			raw.DailyDose = *flags.dose
		case "pack-size":
			raw.PackSize = *flags.packSize
		case "packs":
			raw.PacksPurchased = *flags.packs
		case "date":
			raw.PurchaseDate = *flags.date
		case "notes":
			raw.Notes = *flags.notes
		}
	})

	in, err := raw.Parse()
	if err != nil {
		return err
	}
	med, err := medications.Update(id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Updated #%d %s. Next purchase: %s\n", med.ID, med.NameSpec, med.NextPurchaseDate)
	return nil
}

func rawFrom(med db.Medication) medications.RawInput {
	return medications.RawInput{
		NameSpec:       med.NameSpec,
		UserName:       med.UserName,
		DailyDose:      strconv.FormatFloat(med.DailyDose, 'f', -1, 64),
		PackSize:       strconv.Itoa(med.PackSize),
		PacksPurchased: strconv.Itoa(med.PacksPurchased),
		PurchaseDate:   med.PurchaseDate.String(),
		Notes:          med.Notes,
	}
}

func (a *App) runDelete(_ context.Context, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	med, err := medications.Get(id)
	if err != nil {
		return err
	}
	if err := medications.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Deleted #%d %s\n", med.ID, med.NameSpec)
	return nil
}

func (a *App) runShow(_ context.Context, args []string) error {
	id, err := singleID(args)
	if err != nil {
		return err
	}
	med, err := medications.Get(id)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, ui.RenderMedicationDetail(med))
	return nil
}

func (a *App) runList(_ context.Context, args []string) error {
	if len(args) > 0 {
		return apperr.Validation("arguments", "list takes none, use search to filter")
	}
	meds, err := medications.List()
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, ui.RenderMedicationTable(meds))
	return nil
}

func (a *App) runSearch(_ context.Context, args []string) error {
	meds, err := medications.Search(joinArgs(args))
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, ui.RenderMedicationTable(meds))
	return nil
}

func (a *App) runDue(_ context.Context, args []string) error {
	fs := a.flagSet("due")
	asOf := fs.String("as-of", "", "evaluate as of this date instead of today, YYYY-MM-DD")
	days := fs.Int("days", -1, "look-ahead window in days instead of the stored setting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	now := a.Now()
	if *asOf != "" {
		date, err := calendar.Parse(strings.TrimSpace(*asOf))
		if err != nil {
			return apperr.Validation("as-of", "must be a date in YYYY-MM-DD form")
		}
		now = date.Time()
	}

	var report reminders.Report
	var err error
	if *days < 0 {
		report, err = reminders.Evaluate(now)
	} else {
		report, err = reminders.EvaluateWith(now, *days)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, ui.RenderPurchaseList(report))
	return nil
}

func (a *App) runSettings(_ context.Context, args []string) error {
	if len(args) == 0 {
		values, err := settings.Current()
		if err != nil {
			return err
		}
		fmt.Fprint(a.Out, ui.RenderSettings(values))
		return nil
	}

	op, err := settings.ParseOp(args[0])
	if err != nil {
		return apperr.Validation("settings", fmt.Sprintf("unknown action %q, use set, inc or dec", args[0]))
	}
	if len(args) < 2 {
		return apperr.Validation("settings", "missing setting name (days or interval)")
	}
	key, ok := settingAliases[strings.ToLower(args[1])]
	if !ok {
		return apperr.Validation("settings", fmt.Sprintf("unknown setting %q, use days or interval", args[1]))
	}

	value := 0
	switch {
	case op == settings.OpSet && len(args) != 3:
		return apperr.Validation("settings", "set needs exactly one value")
	case op == settings.OpSet:
		value, err = strconv.Atoi(args[2])
		if err != nil {
			return apperr.Validation(key, "must be a whole number")
		}
	case len(args) != 2:
		return apperr.Validation("settings", fmt.Sprintf("%s takes no value", op))
	}

	next, changed, err := settings.Apply(key, op, value)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, ui.RenderSetting(key, next, changed))
	return nil
}

func (a *App) runExport(_ context.Context, args []string) error {
	fs := a.flagSet("export")
	dir := fs.String("dir", ".", "directory to write the file to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, count, err := importexport.ExportFile(*dir, a.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Exported %d medication(s) to %s\n", count, path)
	return nil
}

func (a *App) runImport(_ context.Context, args []string) error {
	if len(args) != 1 {
		return apperr.Validation("import", "expected exactly one CSV file")
	}
	result, err := importexport.ImportFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, result.Summary())
	for _, failed := range result.Failed {
		fmt.Fprintf(a.Out, "  %s\n", failed.Error())
	}
	return nil
}

func singleID(args []string) (uint, error) {
	if len(args) != 1 {
		return 0, apperr.Validation("id", "expected exactly one medication id")
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id", fmt.Sprintf("%q is not a medication id", args[0]))
	}
	return uint(id), nil
}
