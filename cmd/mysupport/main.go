// Command mysupport is the terminal client: sign in, keep a mood diary and
// run the breathing exercise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/client/api"
	"github.com/mysupport/mysupport/client/authgate"
	"github.com/mysupport/mysupport/client/breathing"
	"github.com/mysupport/mysupport/client/config"
	"github.com/mysupport/mysupport/client/diary"
	"github.com/mysupport/mysupport/client/session"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg/i18n"
	"github.com/mysupport/mysupport/pkg/logger"
)

const usage = `usage: mysupport <command> [flags]

commands:
  login -email E -password P
  register -email E -password P -name N
  logout
  whoami
  diary list
  diary add [-mood M] TEXT
  breathe
  moods
`

type app struct {
	client  *api.Client
	storage session.Storage
	state   session.State
	loc     *i18n.Localizer
	log     *zap.Logger
	out     io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Must(true)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := i18n.NewLocalizer(cfg.Lang)
	storage := session.NewFileStorage(cfg.StateFile)
	a := &app{
		client:  api.New(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, loc),
		storage: storage,
		state:   session.LoadSession(storage),
		loc:     loc,
		log:     log,
		out:     os.Stdout,
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.auth(ctx, authgate.ModeLogin, args)
	case "register":
		return a.auth(ctx, authgate.ModeRegister, args)
	case "logout":
		return a.gate().Logout(ctx)
	case "whoami":
		return a.whoami()
	case "diary":
		return a.diary(ctx, args)
	case "breathe":
		return a.breathe(ctx)
	case "moods":
		a.moods()
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) gate() *authgate.Gate {
	return authgate.New(a.client, session.NewStore(a.storage), nil, a.log)
}

func (a *app) auth(ctx context.Context, mode authgate.Mode, args []string) error {
	fs := flag.NewFlagSet(mode.String(), flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name (register only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g := a.gate()
	if mode == authgate.ModeRegister {
		g.Toggle()
	}

	state, err := g.Submit(ctx, authgate.Credentials{Email: *email, Password: *password, Name: *name})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", state.User.Name, state.User.Email)
	return nil
}

func (a *app) whoami() error {
	if !a.state.Authenticated() {
		return errors.New(a.loc.T("auth.unauthorized"))
	}
	if a.state.User == nil {
		fmt.Fprintln(a.out, "?")
		return nil
	}
	fmt.Fprintf(a.out, "%d %s <%s>\n", a.state.User.ID, a.state.User.Name, a.state.User.Email)
	return nil
}

func (a *app) diary(ctx context.Context, args []string) error {
	if !a.state.Authenticated() {
		return errors.New(a.loc.T("auth.unauthorized"))
	}
	if len(args) == 0 {
		return errors.New(usage)
	}

	panel := diary.New(a.client, a.state.Token, a.log)

	switch args[0] {
	case "list":
		if err := panel.List(ctx); err != nil {
			return err
		}
	case "add":
		fs := flag.NewFlagSet("diary add", flag.ContinueOnError)
		mood := fs.String("mood", string(models.DefaultMood), "one of happy, calm, anxious, sad, stressed")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		m, err := models.ParseMood(*mood)
		if err != nil {
			return err
		}
		panel.SetMood(m)
		panel.SetText(strings.Join(fs.Args(), " "))
		if err := panel.Create(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown diary command %q", args[0])
	}

	a.printDiary(panel.Grouped())
	return nil
}

// printDiary writes one heading per mood followed by its entries.
func (a *app) printDiary(groups []diary.Group) {
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		d := g.Mood.Descriptor()
		fmt.Fprintf(a.out, "%s (%d)\n", a.loc.T(d.LabelKey), len(g.Entries))
		for _, e := range g.Entries {
			fmt.Fprintf(a.out, "  %s  %s\n", e.Date, e.Text)
		}
	}
}

func (a *app) breathe(ctx context.Context) error {
	timer := breathing.NewTimer(nil)
	timer.OnChange(func(s breathing.State) {
		switch s.Phase {
		case breathing.Counting:
			fmt.Fprintf(a.out, "%d  %s\n", s.Count, a.loc.T("breathing.active"))
		case breathing.Done:
			fmt.Fprintf(a.out, "%d\n", s.Count)
		}
	})

	fmt.Fprintln(a.out, a.loc.T("breathing.idle"))
	if err := timer.Start(ctx); err != nil {
		return err
	}
	<-timer.Done()
	return nil
}

func (a *app) moods() {
	for _, m := range models.AllMoods {
		d := m.Descriptor()
		fmt.Fprintf(a.out, "%-9s %-12s %s %s\n", m, a.loc.T(d.LabelKey), d.Icon, d.Color)
	}
}
