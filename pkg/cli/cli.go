// Package cli is the command line front end. Each subcommand collects input,
// calls the core packages and prints the result; errors are rendered once at
// this boundary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/smith3v/family-medicine-manager/pkg/apperr"
	"github.com/smith3v/family-medicine-manager/pkg/config"
	"github.com/smith3v/family-medicine-manager/pkg/db"
	"github.com/smith3v/family-medicine-manager/pkg/logger"
)

const programName = "medicine-manager"

type command struct {
	usage   string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"run":      {"run", "watch for medications to buy and show reminders (default)", (*App).runWatch},
		"add":      {"add -name N -user U -dose D -pack-size S -packs P [-date YYYY-MM-DD] [-notes T]", "add a medication", (*App).runAdd},
		"edit":     {"edit ID [-name N] [-user U] [-dose D] [-pack-size S] [-packs P] [-date YYYY-MM-DD] [-notes T]", "change a medication", (*App).runEdit},
		"delete":   {"delete ID", "delete a medication", (*App).runDelete},
		"show":     {"show ID", "show one medication", (*App).runShow},
		"list":     {"list", "list all medications", (*App).runList},
		"search":   {"search TERM", "find medications by name, user or notes", (*App).runSearch},
		"due":      {"due [-as-of YYYY-MM-DD] [-days N]", "show the purchase list", (*App).runDue},
		"settings": {"settings [set|inc|dec KEY [VALUE]]", "show or change reminder settings", (*App).runSettings},
		"export":   {"export [-dir DIR]", "write all medications to a CSV file", (*App).runExport},
		"import":   {"import FILE", "add or update medications from a CSV file", (*App).runImport},
	}
}

// App holds the streams and clock used by the commands.
type App struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	Now func() time.Time
}

func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{In: in, Out: out, Err: errOut, Now: time.Now}
}

// Run parses the global flags, prepares config, logging and the database,
// then executes the selected command. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	configPath := fs.String("config", config.DefaultPath(), "path to the config file")
	fs.Usage = func() { a.usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := config.LoadOrDefault(*configPath); err != nil {
		fmt.Fprintf(a.Err, "Failed to load config %s: %v\n", *configPath, err)
		return 1
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		fmt.Fprintln(a.Err, apperr.UserMessage(apperr.Store("opening the data file", err)))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := a.Execute(ctx, fs.Args()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(a.Err, apperr.UserMessage(err))
		return 1
	}
	return 0
}

// Execute runs one command against the already opened database.
func (a *App) Execute(ctx context.Context, args []string) error {
	name := "run"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}
	if name == "help" || name == "-h" || name == "--help" {
		a.usage(nil)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return apperr.Validation("command", fmt.Sprintf("unknown command %q, see %s help", name, programName))
	}
	logger.Debug("running command", "command", name, "args", len(args))
	return cmd.run(a, ctx, args)
}

func (a *App) usage(global *flag.FlagSet) {
	fmt.Fprintf(a.Err, "Usage: %s [-config FILE] COMMAND [ARGS]\n\nCommands:\n", programName)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.Err, "  %-10s %s\n", name, commands[name].summary)
	}
	if global != nil {
		fmt.Fprintln(a.Err, "\nGlobal flags:")
		global.PrintDefaults()
	}
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	fs.Usage = func() {
		fmt.Fprintf(a.Err, "Usage: %s %s\n", programName, commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseInterspersed lets flags follow positional arguments, as in
// "edit 3 -packs 2".
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
