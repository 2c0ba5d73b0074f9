package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eden/internal/client/localauth"
	"github.com/dmitrijs2005/eden/internal/client/models"
	"github.com/dmitrijs2005/eden/internal/client/services"
	"github.com/dmitrijs2005/eden/internal/common"
)

// getSimpleText, getOptional and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getOptional   = GetOptional
	getPassword   = GetPassword
)

// birthLocation is the zone typed birth dates are read in.
var birthLocation = time.Local

// SignUp prompts for the sign-up form and creates an account. The account
// is stored on this device when the remote service cannot be reached.
//
// The password byte slice is wiped before returning.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fullName, err := getSimpleText(a.reader, "Full name (optional)", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		return err
	}
	rawBirth, err := getSimpleText(a.reader, "Birth date YYYY-MM-DD [HH:MM] (optional)", a.out)
	if err != nil {
		return err
	}
	birth, err := ParseBirthDate(rawBirth, birthLocation)
	if err != nil {
		return err
	}
	plan, err := a.readPlan(ctx)
	if err != nil {
		return err
	}

	res, err := a.authService.SignUp(ctx, services.SignUpRequest{
		Email:    email,
		Password: string(password),
		SignUpFields: models.SignUpFields{
			FullName:  fullName,
			Phone:     phone,
			BirthDate: birth,
			Plan:      plan,
		},
	})
	if err != nil {
		return err
	}

	a.account = res.Payload
	a.setMode(ctx, res.Origin)
	if res.Local() {
		a.println("Account created on this device.")
	} else {
		a.println("Account created.")
	}
	return nil
}

func (a *App) readPlan(ctx context.Context) (models.Plan, error) {
	raw, err := getSimpleText(a.reader, "Plan: gratuito, premium, mentorado, master (default gratuito)", a.out)
	if err != nil {
		return "", err
	}
	p := models.Plan(strings.ToLower(raw))
	if p == "" {
		return models.PlanFree, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown plan %q", raw)
	}
	return p, nil
}

// Login prompts for credentials and authenticates. The orchestrator decides
// whether the remote provider or the device store answers; Mode reflects it.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.authService.SignIn(ctx, email, string(password))
	if err != nil {
		a.log.Info(ctx, "login unsuccessful", "error", err)
		return err
	}

	a.account = res.Payload
	a.setMode(ctx, res.Origin)
	a.println(fmt.Sprintf("Login successful (%s)", a.Mode))
	return nil
}

// ForgotPassword requests a password reset. Offline, the temporary password
// issued by the device store is shown.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	res, err := a.authService.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	if res.Local() {
		a.println("Temporary password:", res.Payload.TemporaryPassword)
		return nil
	}
	a.println("Enviamos um e-mail com instruções para redefinir sua senha.")
	return nil
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) error {
	if _, err := a.authService.SignOut(ctx); err != nil {
		return err
	}
	a.account = nil
	a.Mode = ""
	a.println("Logged out.")
	return nil
}

// ResetLocal wipes every account stored on this device after confirmation.
func (a *App) ResetLocal(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete every account stored on this device? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		a.println("Cancelled.")
		return nil
	}

	if err := a.authService.ResetLocalState(ctx); err != nil {
		return err
	}
	if a.account != nil && strings.HasPrefix(a.account.ID, localauth.IDPrefix) {
		a.account = nil
		a.Mode = ""
	}
	a.println("Local data removed.")
	return nil
}

// Status prints which services are in use.
func (a *App) Status(context.Context) error {
	remote := "not configured"
	if a.authService.RemoteConfigured() {
		remote = "configured"
	}
	a.println("Remote services:", remote)
	if a.account == nil {
		a.println("Not logged in.")
		return nil
	}
	a.println(fmt.Sprintf("Logged in as %s (%s)", a.account.Email, a.Mode))
	return nil
}
