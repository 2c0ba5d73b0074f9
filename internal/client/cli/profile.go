package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/eden/internal/client/models"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// ShowProfile prints the profile of the signed-in account.
func (a *App) ShowProfile(ctx context.Context) error {
	res, err := a.authService.FetchProfile(ctx)
	if err != nil {
		return err
	}

	p := res.Payload
	rows := []struct{ label, value string }{
		{"Name", p.FullName},
		{"E-mail", p.Email},
		{"Phone", p.Phone},
		{"Birth date", p.BirthDate},
		{"Birth time", p.BirthTime},
		{"Plan", string(p.Plan)},
		{"Photo", p.PhotoURL},
	}
	for _, r := range rows {
		if r.value == "" {
			r.value = "-"
		}
		a.println(fmt.Sprintf("%-11s %s", r.label+":", r.value))
	}
	a.println(fmt.Sprintf("(served by %s store)", res.Origin))
	return nil
}

// UpdateProfile prompts for each editable field and applies the ones the
// user changed.
func (a *App) UpdateProfile(ctx context.Context) error {
	var (
		upd models.ProfileUpdate
		err error
	)

	if upd.FullName, err = getOptional(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if upd.Phone, err = getOptional(a.reader, "Phone", a.out); err != nil {
		return err
	}

	rawBirth, err := getOptional(a.reader, "Birth date YYYY-MM-DD [HH:MM]", a.out)
	if err != nil {
		return err
	}
	if rawBirth != nil {
		if *rawBirth == "" {
			upd.BirthDate = &models.BirthDate{}
			empty := ""
			upd.BirthTime = &empty
		} else {
			t, err := ParseBirthDate(*rawBirth, birthLocation)
			if err != nil {
				return err
			}
			upd.BirthDate = models.BirthDateFromTime(*t)
			hhmm := t.Format("15:04")
			upd.BirthTime = &hhmm
		}
	}

	rawPlan, err := getOptional(a.reader, "Plan", a.out)
	if err != nil {
		return err
	}
	if rawPlan != nil && *rawPlan != "" {
		p := models.Plan(strings.ToLower(*rawPlan))
		if !p.Valid() {
			return fmt.Errorf("unknown plan %q", *rawPlan)
		}
		upd.Plan = &p
	}

	if upd.Empty() {
		a.println("Nothing to change.")
		return nil
	}

	res, err := a.authService.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	if a.account != nil && res.Payload.FullName != nil {
		a.account.FullName = *res.Payload.FullName
	}
	a.println(fmt.Sprintf("Profile updated (%s).", res.Origin))
	return nil
}

// UploadAvatar uploads the image at path as the profile photo. It needs the
// remote services.
func (a *App) UploadAvatar(ctx context.Context, path string) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%s is not an image (%s)", path, contentType)
	}

	res, err := a.authService.UploadAvatar(ctx, contentType, data)
	if err != nil {
		return err
	}
	a.println("Photo uploaded:", res.Payload)
	return nil
}
