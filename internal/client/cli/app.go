package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/eden/internal/client/models"
	"github.com/dmitrijs2005/eden/internal/client/services"
	"github.com/dmitrijs2005/eden/internal/logging"
)

// Mode tells which store served the last authentication.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

func modeOf(o models.Origin) Mode {
	if o == models.OriginRemote {
		return ModeOnline
	}
	return ModeOffline
}

// AuthService is the orchestrator surface the CLI drives. *services.AuthService
// satisfies it.
type AuthService interface {
	RemoteConfigured() bool
	CurrentAccount(ctx context.Context) (services.Result[*models.Account], error)
	SignUp(ctx context.Context, req services.SignUpRequest) (services.Result[*models.Account], error)
	SignIn(ctx context.Context, email, password string) (services.Result[*models.Account], error)
	RequestPasswordReset(ctx context.Context, email string) (services.Result[services.PasswordReset], error)
	FetchProfile(ctx context.Context) (services.Result[models.Profile], error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (services.Result[models.ProfileUpdate], error)
	UploadAvatar(ctx context.Context, contentType string, data []byte) (services.Result[string], error)
	SignOut(ctx context.Context) (services.Result[struct{}], error)
	ResetLocalState(ctx context.Context) error
}

var _ AuthService = (*services.AuthService)(nil)

type App struct {
	authService AuthService
	log         logging.Logger
	account     *models.Account
	Mode        Mode
	reader      *bufio.Reader
	out         io.Writer
	closers     []func() error
}

// NewApp builds an App reading commands from in and writing to out.
func NewApp(svc AuthService, l logging.Logger, in io.Reader, out io.Writer) *App {
	if l == nil {
		l = logging.Nop()
	}
	return &App{
		authService: svc,
		log:         l,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

func (a *App) setMode(ctx context.Context, o models.Origin) {
	mode := modeOf(o)
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) getStatus() string {
	s := ""
	if a.account != nil {
		s = a.account.Email + " "
	}
	if a.Mode != "" {
		s += string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// restoreSession picks up the account left signed in by a previous run.
func (a *App) restoreSession(ctx context.Context) {
	res, err := a.authService.CurrentAccount(ctx)
	if err != nil {
		a.log.Warn(ctx, "unable to restore session", "error", err)
		return
	}
	if res.Payload == nil {
		return
	}
	a.account = res.Payload
	a.setMode(ctx, res.Origin)
}

// Root greets the user and runs the REPL until EOF or quit.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to Eden CLI (type 'help' for commands)")
	if !a.authService.RemoteConfigured() {
		a.println("Remote services are not configured; accounts are stored on this device only.")
	}
	a.restoreSession(ctx)
	if a.account != nil {
		a.println(fmt.Sprintf("Signed in as %s (%s)", a.account.Email, a.Mode))
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Run executes Root and releases every resource the App owns.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn(ctx, "shutdown", "error", err)
		}
	}()
	a.Root(ctx)
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
