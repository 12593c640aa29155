// Command scanview is a terminal client for the smart diagnostic-image
// service.
//
// Usage:
//
//	scanview signup <name> <email>     create an account (prompts for password)
//	scanview login <email>             log in (prompts for password)
//	scanview logout                    log out and drop the stored session
//	scanview whoami                    show the cached identity
//	scanview profile                   show the practitioner profile
//	scanview profile save [flags]      update the practitioner profile
//	scanview classify <image>          upload an image for diagnosis
//	scanview reports                   list past classification reports
//	scanview status                    show profile and reports in one view
//	scanview open <path>               show the navigation decision for a view path
//	scanview watch                     follow session changes from other processes
//
// The backend address can be set via SCANVIEW_API_URL or api_url in
// config.toml; the state directory via SCANVIEW_STATE_DIR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"scanview/internal/broadcast"
	"scanview/internal/domain"
	"scanview/internal/gateway"
	"scanview/internal/platform/config"
	"scanview/internal/platform/logger"
	"scanview/internal/platform/metrics"
	"scanview/internal/routes"
	"scanview/internal/session"
	"scanview/pkg/apierrors"
)

// app bundles the wired client components so subcommands stay small.
type app struct {
	store   *session.Store
	file    *session.File
	client  *gateway.Client
	guard   *routes.Guard
	verbose bool
}

func main() {
	fs := flag.NewFlagSet("scanview", flag.ExitOnError)
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = usage
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	args := fs.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	a, err := newApp(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch args[0] {
	case "signup":
		err = a.cmdSignup(ctx, args[1:])
	case "login":
		err = a.cmdLogin(ctx, args[1:])
	case "logout":
		err = a.cmdLogout()
	case "whoami":
		err = a.cmdWhoami()
	case "profile":
		err = a.cmdProfile(ctx, args[1:])
	case "classify":
		err = a.cmdClassify(ctx, args[1:])
	case "reports":
		err = a.cmdReports(ctx)
	case "status":
		err = a.cmdStatus(ctx)
	case "open":
		err = a.cmdOpen(args[1:])
	case "watch":
		err = a.cmdWatch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", args[0])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", apierrors.MessageOf(err))
		os.Exit(1)
	}
}

func newApp(verbose bool) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose)
	file, err := session.NewFile(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(file, log)
	client := gateway.New(cfg.APIURL, store, log, metrics.New())
	guard := routes.NewGuard(routes.DefaultTable(), store)

	return &app{store: store, file: file, client: client, guard: guard, verbose: verbose}, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: scanview [-v] <command> [arguments]

commands:
  signup <name> <email>   create an account (prompts for password)
  login <email>           log in (prompts for password)
  logout                  log out and drop the stored session
  whoami                  show the cached identity
  profile [save]          show or update the practitioner profile
  classify <image>        upload an image for diagnosis
  reports                 list past classification reports
  status                  show profile and reports in one view
  open <path>             show the navigation decision for a view path
  watch                   follow session changes from other processes`)
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: scanview signup <name> <email>")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	result, err := a.client.Signup(ctx, args[0], args[1], password)
	if err != nil {
		return err
	}
	if err := a.store.Set(session.Session{Token: result.Token, Identity: &result.Identity}); err != nil {
		return err
	}

	fmt.Printf("Welcome, %s. You are now logged in.\n", result.Identity.Name)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: scanview login <email>")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := a.client.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	if err := a.store.Set(session.Session{Token: result.Token, Identity: &result.Identity}); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s.\n", result.Identity.Name)
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdWhoami() error {
	sess := a.store.Current()
	if sess == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	if sess.Identity != nil && sess.Identity.Name != "" {
		fmt.Printf("Logged in as %s", sess.Identity.Name)
		if sess.Identity.Email != "" {
			fmt.Printf(" <%s>", sess.Identity.Email)
		}
		fmt.Println()
		return nil
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		profile, err := a.client.GetProfile(ctx)
		if err != nil {
			return err
		}
		printProfile(profile)
		return nil
	}
	if args[0] != "save" {
		return fmt.Errorf("unknown profile subcommand: %s", args[0])
	}

	fs := flag.NewFlagSet("profile save", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	hospital := fs.String("hospital", "", "hospital")
	specialization := fs.String("specialization", "", "specialization")
	phone := fs.String("phone", "", "phone number")
	location := fs.String("location", "", "location")
	about := fs.String("about", "", "about")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	saved, err := a.client.SaveProfile(ctx, domain.Profile{
		Name:           *name,
		Hospital:       *hospital,
		Specialization: *specialization,
		Phone:          *phone,
		Location:       *location,
		About:          *about,
	})
	if err != nil {
		return err
	}

	// Refresh the cached display name; an identity-only update keeps the
	// session boundary untouched.
	if sess := a.store.Current(); sess != nil && saved.Name != "" {
		identity := domain.Identity{Name: saved.Name}
		if sess.Identity != nil {
			identity = *sess.Identity
			identity.Name = saved.Name
		}
		sess.Identity = &identity
		if err := a.store.Set(*sess); err != nil {
			return err
		}
	}

	fmt.Println("Profile saved.")
	printProfile(saved)
	return nil
}

func (a *app) cmdClassify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: scanview classify <image>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	result, err := a.client.Classify(ctx, f.Name(), f)
	if err != nil {
		return err
	}

	fmt.Printf("Prediction: %s (%.1f%% confidence)\n", result.Prediction, result.Confidence)
	if result.Stage != "" {
		fmt.Printf("Stage:      %s\n", result.Stage)
	}
	if result.Explanation != "" {
		fmt.Printf("Details:    %s\n", result.Explanation)
	}
	if result.GradcamURL != "" {
		fmt.Printf("Grad-CAM:   %s\n", result.GradcamURL)
	}
	if result.PDFURL != "" {
		fmt.Printf("Report PDF: %s\n", result.PDFURL)
	}
	return nil
}

func (a *app) cmdReports(ctx context.Context) error {
	reports, err := a.client.ListReports(ctx)
	if err != nil {
		return err
	}
	printReports(reports)
	return nil
}

// cmdStatus fetches the profile and report history concurrently; both calls
// share the session and neither blocks the other.
func (a *app) cmdStatus(ctx context.Context) error {
	var profile domain.Profile
	var reports []domain.Report

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = a.client.GetProfile(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = a.client.ListReports(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printProfile(profile)
	fmt.Println()
	printReports(reports)
	return nil
}

func (a *app) cmdOpen(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: scanview open <path>")
	}

	decision := a.guard.Decide(args[0])
	if decision.Render {
		fmt.Printf("render %s\n", args[0])
		return nil
	}
	fmt.Printf("redirect %s -> %s\n", args[0], decision.RedirectTo)
	return nil
}

// cmdWatch mirrors session changes made by other scanview processes into this
// one and reports each boundary flip until interrupted.
func (a *app) cmdWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe := a.store.OnChange(func(sess *session.Session) {
		if sess == nil {
			fmt.Println("session ended elsewhere; protected views now redirect to /login")
			return
		}
		fmt.Println("session started elsewhere; protected views now render")
	})
	defer unsubscribe()

	fmt.Printf("watching %s (ctrl-c to stop)\n", a.file.Path())
	watcher := broadcast.NewWatcher(a.file, a.store, logger.New(a.verbose))
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printProfile(p domain.Profile) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Email:\t%s\n", p.Email)
	fmt.Fprintf(w, "Hospital:\t%s\n", p.Hospital)
	fmt.Fprintf(w, "Specialization:\t%s\n", p.Specialization)
	fmt.Fprintf(w, "Phone:\t%s\n", p.Phone)
	fmt.Fprintf(w, "Location:\t%s\n", p.Location)
	fmt.Fprintf(w, "About:\t%s\n", p.About)
	_ = w.Flush()
}

func printReports(reports []domain.Report) {
	if len(reports) == 0 {
		fmt.Println("No reports yet.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDISEASE\tCONFIDENCE\tSTAGE")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\n", r.Date, r.Disease, r.Confidence, r.Stage)
	}
	_ = w.Flush()
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(raw), nil
}
