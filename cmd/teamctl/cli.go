package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dimitrije/fleetdesk/internal/access"
	"github.com/dimitrije/fleetdesk/internal/accessclient"
	"github.com/dimitrije/fleetdesk/internal/config"
	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/dimitrije/fleetdesk/pkg/dto"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"
	"gopkg.in/go-playground/validator.v9"
)

type cli struct {
	in       *bufio.Reader
	out      io.Writer
	cfg      *config.ClientConfig
	validate *validator.Validate
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{
		in:       bufio.NewReader(in),
		out:      out,
		cfg:      config.LoadClient(),
		validate: validator.New(),
	}
}

func (a *cli) flagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&a.cfg.APIURL, "api-url", a.cfg.APIURL, "team API base URL")
	fs.StringVar(&a.cfg.Token, "token", a.cfg.Token, "auth token (overrides the saved login)")
	fs.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "per-request timeout")
	fs.BoolVar(&a.cfg.Debug, "debug", a.cfg.Debug, "log HTTP traffic")
	fs.Usage = func() { printUsage(a.out) }
	return fs
}

func (a *cli) client() *accessclient.HTTPClient {
	return accessclient.NewHTTPClient(a.cfg.APIURL,
		accessclient.WithTimeout(a.cfg.Timeout),
		accessclient.WithDebug(a.cfg.Debug),
	)
}

func (a *cli) tokens() oauth2.TokenSource {
	return accessclient.ChainTokenSource(
		accessclient.StaticTokenSource(a.cfg.Token),
		accessclient.FileTokenSource{Path: a.cfg.TokenFile},
	)
}

// openStore loads the member list. A failed load is rendered and returned.
func (a *cli) openStore(ctx context.Context) (*access.Store, error) {
	store, err := access.Open(ctx, a.client(), a.tokens())
	if err != nil {
		renderFetchError(a.out, store.Snapshot())
		store.Close()
		return nil, err
	}
	return store, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runLogin(a *cli, args []string) error {
	fs := a.flagSet("login")
	var req dto.LoginRequest
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.validate.Struct(req); err != nil {
		return formError(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	tok, err := a.client().Login(ctx, req.Email, req.Password)
	if err != nil {
		var apiErr *accessclient.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return errors.New(apiErr.Detail)
		}
		return err
	}

	if err := accessclient.SaveToken(a.cfg.TokenFile, tok.AccessToken); err != nil {
		return err
	}
	renderStatus(a.out, &access.Status{Kind: access.StatusSuccess, Text: "Logged in as " + req.Email})
	return nil
}

func runList(a *cli, args []string) error {
	fs := a.flagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	renderMembers(a.out, store.Snapshot().Members)
	return nil
}

func runRegister(a *cli, args []string) error {
	fs := a.flagSet("register")
	var req dto.RegisterMemberRequest
	fs.StringVar(&req.Email, "email", "", "new member's email")
	fs.StringVar(&req.FullName, "name", "", "new member's full name")
	fs.StringVar(&req.Password, "password", "", "initial password (at least 8 characters)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := a.validate.Struct(req); err != nil {
		return formError(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	store := access.New(a.client(), a.tokens())
	defer store.Close()

	err := store.RegisterMember(ctx, req.Email, req.FullName, req.Password)
	renderStatus(a.out, store.Snapshot().Status)
	return err
}

func runRemove(a *cli, args []string) error {
	fs := a.flagSet("remove")
	yes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("remove takes exactly one email")
	}
	email := fs.Arg(0)

	ctx, cancel := signalContext()
	defer cancel()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, ok := findMember(store.Snapshot(), email); !ok {
		return fmt.Errorf("no team member with email %s", email)
	}

	if !*yes && !a.confirm(fmt.Sprintf("Remove %s from the team?", email)) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	err = store.RemoveMember(ctx, email)
	renderStatus(a.out, store.Snapshot().Status)
	return err
}

func runPrivileges(a *cli, args []string) error {
	fs := a.flagSet("privileges")
	grant := fs.StringSlice("grant", nil, "privileges to add")
	revoke := fs.StringSlice("revoke", nil, "privileges to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("privileges takes exactly one email")
	}
	email := fs.Arg(0)

	grants, err := parsePrivileges(*grant)
	if err != nil {
		return err
	}
	revokes, err := parsePrivileges(*revoke)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	member, ok := findMember(store.Snapshot(), email)
	if !ok {
		return fmt.Errorf("no team member with email %s", email)
	}

	if err := store.OpenPrivilegesForm(member); err != nil {
		renderStatus(a.out, store.Snapshot().Status)
		return err
	}

	if len(grants) == 0 && len(revokes) == 0 {
		editing, _ := store.Snapshot().Editing()
		fmt.Fprintf(a.out, "%s: %s\n", member.Email, formatPrivileges(editing.Privileges))
		store.ClosePrivilegesForm()
		return nil
	}

	for _, p := range grants {
		if err := store.TogglePrivilege(p, true); err != nil {
			return err
		}
	}
	for _, p := range revokes {
		if err := store.TogglePrivilege(p, false); err != nil {
			return err
		}
	}

	err = store.UpdateSelectedPrivileges(ctx)
	renderStatus(a.out, store.Snapshot().Status)
	if err == nil {
		if updated, ok := findMember(store.Snapshot(), email); ok {
			fmt.Fprintf(a.out, "%s: %s\n", updated.Email, formatPrivileges(updated.Privileges))
		}
	}
	return err
}

func (a *cli) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	answer, err := a.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func findMember(snap access.Snapshot, email string) (models.Member, bool) {
	for _, m := range snap.Members {
		if strings.EqualFold(m.Email, strings.TrimSpace(email)) {
			return m, true
		}
	}
	return models.Member{}, false
}

func parsePrivileges(values []string) ([]models.Privilege, error) {
	out := make([]models.Privilege, 0, len(values))
	for _, v := range values {
		p, err := models.ParsePrivilege(strings.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return errors.New("all fields are required")
		}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return errors.New("invalid email address")
	case "min":
		return fmt.Errorf("%s must be at least %s characters", strings.ToLower(fe.Field()), fe.Param())
	default:
		return fmt.Errorf("%s is invalid", strings.ToLower(fe.Field()))
	}
}
