package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/noah-isme/saju-admin-api/internal/console"
	"github.com/noah-isme/saju-admin-api/internal/dto"
	"github.com/noah-isme/saju-admin-api/internal/models"
	"github.com/noah-isme/saju-admin-api/pkg/config"
	appErrors "github.com/noah-isme/saju-admin-api/pkg/errors"
	"github.com/noah-isme/saju-admin-api/pkg/logger"
)

const usage = `usage: console <command> [flags]

commands:
  login    -email -password        print an access token for CONSOLE_TOKEN
  list     -page -status -type -category
  show     -id
  approve  -id [-result] [-reason] [-roles a,b,...]
  reject   -id -reason
  delete   -id [-yes]
`

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	gate     *console.TokenGate
	client   *console.Client
	out      io.Writer
	in       *bufio.Reader
	inFlight *console.InFlight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.NewConsole(cfg.Console.Verbose)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := console.NewTokenGate(cfg.Console.Token)
	a := &app{
		cfg:      cfg,
		logger:   logr.Named("console"),
		gate:     gate,
		client:   console.NewClient(cfg.Console.BaseURL, gate, cfg.Console.Timeout, console.WithLogger(logr.Named("console.client"))),
		out:      os.Stdout,
		in:       bufio.NewReader(os.Stdin),
		inFlight: console.NewInFlight(),
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, console.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(1)
		}
		if !console.Alerted(err) {
			fmt.Fprintln(os.Stderr, "error:", appErrors.FromError(err).Message)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "approve":
		return a.approve(ctx, args)
	case "reject":
		return a.reject(ctx, args)
	case "delete":
		return a.remove(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) Alert(message string) {
	fmt.Fprintln(a.out, message)
}

func (a *app) Confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	answer, _ := a.in.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (a *app) deps(list *console.ListController) console.Deps {
	return console.Deps{
		Gate:     a.gate,
		Client:   a.client,
		List:     list,
		InFlight: a.inFlight,
		Notifier: a,
		Logger:   a.logger,
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "manager email")
	password := fs.String("password", os.Getenv("CONSOLE_PASSWORD"), "password (defaults to CONSOLE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", res.User.Email, res.User.Role)
	fmt.Fprintf(a.out, "export CONSOLE_TOKEN=%s\n", res.AccessToken)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	status := fs.String("status", dto.StatusAll, "pending, approved, rejected or all")
	suggestionType := fs.String("type", dto.StatusAll, "decade_sky, decade_earth, year_sky, year_earth or all")
	category := fs.String("category", "", "gyeokguk name fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctrl := console.NewListController(a.client, a.logger)
	ctrl.StageFilter(console.Filter{Status: *status, Type: *suggestionType, Category: *category})
	if err := ctrl.Load(ctx, *page); err != nil {
		return err
	}
	a.printList(ctrl.Snapshot())
	return nil
}

func (a *app) printList(state console.ListState) {
	panel := console.NewPanel(a.gate)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tCODE\tSTATUS\tORIGINAL\tSUGGESTED\tROLES\tACTIONS")
	for _, s := range state.Suggestions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.SuggestionType, s.GyeokgukName, s.Code, s.Status,
			s.OriginalResult, s.SuggestedResult, console.RenderRoles(s.SuggestedRoles),
			formatActions(panel.Actions(s)))
	}
	_ = w.Flush()
	p := state.Pagination
	fmt.Fprintf(a.out, "page %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
}

func formatActions(actions console.Actions) string {
	var parts []string
	if actions.Approve {
		parts = append(parts, "approve")
	}
	if actions.Reject {
		parts = append(parts, "reject")
	}
	if actions.Delete {
		parts = append(parts, "delete")
	}
	if len(parts) == 0 {
		return console.RolePlaceholder
	}
	return strings.Join(parts, ",")
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "suggestion id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.client.Get(ctx, *id)
	if err != nil {
		return err
	}
	a.printDetail(*s)
	return nil
}

func (a *app) printDetail(s models.Suggestion) {
	fmt.Fprintf(a.out, "%s  %s  %s (%s)  code=%s  status=%s\n", s.ID, s.SuggestionType, s.GyeokgukName, s.TargetChar, s.Code, s.Status)
	fmt.Fprintf(a.out, "suggested by %s\n", s.SuggestedBy)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tORIGINAL\tSUGGESTED")
	for _, row := range console.Compare(s) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Label, row.Original, row.Suggested)
	}
	_ = w.Flush()
	if s.RejectionReason != nil {
		fmt.Fprintf(a.out, "rejection reason: %s\n", *s.RejectionReason)
	}
	if s.ReviewedBy != nil && s.ReviewedAt != nil {
		fmt.Fprintf(a.out, "reviewed by %s at %s\n", *s.ReviewedBy, s.ReviewedAt.Format("2006-01-02 15:04"))
	}
}

func (a *app) approve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	id := fs.String("id", "", "suggestion id")
	result := fs.String("result", "", "final outcome (defaults to the suggested one)")
	reason := fs.String("reason", "", "final rationale (defaults to the suggested one)")
	roles := fs.String("roles", "", "comma-separated roles for slots 1차 upwards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.client.Get(ctx, *id)
	if err != nil {
		return err
	}
	ctrl := console.NewListController(a.client, a.logger)
	editor := console.NewApprovalEditor(a.deps(ctrl))
	if err := editor.Open(*s); err != nil {
		return err
	}
	if *result != "" {
		if err := editor.SetResult(*result); err != nil {
			return err
		}
	}
	if *reason != "" {
		if err := editor.SetReason(*reason); err != nil {
			return err
		}
	}
	if *roles != "" {
		for i, role := range strings.Split(*roles, ",") {
			if err := editor.SetRole(i, role); err != nil {
				return err
			}
		}
	}
	if err := editor.Submit(ctx); err != nil {
		return err
	}
	a.printList(ctrl.Snapshot())
	return nil
}

func (a *app) reject(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reject", flag.ContinueOnError)
	id := fs.String("id", "", "suggestion id")
	reason := fs.String("reason", "", "rejection rationale")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.client.Get(ctx, *id)
	if err != nil {
		return err
	}
	ctrl := console.NewListController(a.client, a.logger)
	editor := console.NewRejectionEditor(a.deps(ctrl))
	if err := editor.Open(*s); err != nil {
		return err
	}
	if err := editor.SetReason(*reason); err != nil {
		return err
	}
	if err := editor.Submit(ctx); err != nil {
		return err
	}
	a.printList(ctrl.Snapshot())
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "suggestion id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var confirm console.Confirmer = a
	if *yes {
		confirm = console.ConfirmerFunc(func(string) bool { return true })
	}
	ctrl := console.NewListController(a.client, a.logger)
	if err := console.NewDeleteAction(a.deps(ctrl), confirm).Run(ctx, *id); err != nil {
		return err
	}
	a.printList(ctrl.Snapshot())
	return nil
}
