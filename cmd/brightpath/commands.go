package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/brightpath-auth/app"
	"github.com/jrsteele09/brightpath-auth/authflow"
	"github.com/jrsteele09/brightpath-auth/guard"
	"github.com/jrsteele09/brightpath-auth/navigation"
	"github.com/pkg/errors"
)

var (
	errUsage      = errors.New("usage")
	errFlowFailed = errors.New("flow failed")
)

type command struct {
	start   navigation.Route
	summary string
	// delayed commands schedule a redirect on success.
	delayed bool
	run     func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"login":           {start: navigation.Login, summary: "login -u USER -p PASSWORD", run: loginCmd},
	"register":        {start: navigation.Register, summary: "register -u USER -e EMAIL -p PASSWORD -p2 PASSWORD", delayed: true, run: registerCmd},
	"forgot-password": {start: navigation.ForgotPassword, summary: "forgot-password -e EMAIL", delayed: true, run: forgotPasswordCmd},
	"reset-password":  {start: navigation.ResetPassword, summary: "reset-password -link URL -p PASSWORD -p2 PASSWORD", delayed: true, run: resetPasswordCmd},
	"status":          {start: navigation.Login, summary: "status", run: statusCmd},
	"open":            {start: navigation.Login, summary: "open instructor|admin", run: openCmd},
	"logout":          {start: navigation.InstructorDashboard, summary: "logout", run: logoutCmd},
}

func usage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "usage: brightpath <command> [flags]")
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", commands[name].summary)
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// report prints a flow result and turns a failure into errFlowFailed.
func report(out io.Writer, res authflow.Result) error {
	if res.Message != "" {
		fmt.Fprintln(out, res.Message)
	}
	if len(res.FieldErrors) > 0 {
		fields := make([]string, 0, len(res.FieldErrors))
		for field := range res.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(out, "  %s: %s\n", field, strings.Join(res.FieldErrors[field], " "))
		}
	}
	if !res.OK() {
		return errors.Wrap(errFlowFailed, res.Err.Error())
	}
	if res.Redirect != "" && res.RedirectAfter == 0 {
		fmt.Fprintf(out, "-> %s\n", res.Redirect)
	}
	if res.RedirectAfter > 0 {
		fmt.Fprintf(out, "Redirecting to %s in %s...\n", res.Redirect, res.RedirectAfter)
	}
	return nil
}

func loginCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("login", out)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return report(out, a.Flows.Login(ctx, authflow.Credentials{Username: *username, Password: *password}))
}

func registerCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("register", out)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	confirmation := fs.String("p2", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return report(out, a.Flows.Register(ctx, authflow.Registration{
		Username:             *username,
		Email:                *email,
		Password:             *password,
		PasswordConfirmation: *confirmation,
	}))
}

func forgotPasswordCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("forgot-password", out)
	email := fs.String("e", "", "email")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return report(out, a.Flows.ForgotPassword(ctx, *email))
}

func resetPasswordCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := newFlagSet("reset-password", out)
	rawLink := fs.String("link", "", "reset link from the email")
	password := fs.String("p", "", "new password")
	confirmation := fs.String("p2", "", "new password confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	link, err := navigation.ParseResetLink(*rawLink)
	if err != nil {
		return report(out, authflow.Result{Err: err, Message: "Invalid reset link. Missing parameters."})
	}
	return report(out, a.Flows.ResetPassword(ctx, link, *password, *confirmation))
}

func statusCmd(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	res, err := a.Resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session: %s\n", res.State)
	if res.Username != "" {
		fmt.Fprintf(out, "user: %s (%s)\n", res.Username, res.Role)
	}

	stored, err := a.Store.Read(ctx)
	if err != nil {
		return err
	}
	if exp, ok := stored.AccessTokenExpiry(); ok {
		fmt.Fprintf(out, "access token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	if res.Redirect != "" {
		fmt.Fprintf(out, "-> %s\n", res.Redirect)
	}
	return nil
}

var views = map[string]guard.View{
	"instructor": guard.InstructorDashboardView,
	"admin":      guard.AdminDashboardView,
}

func openCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	view, ok := views[strings.ToLower(args[0])]
	if !ok {
		return errUsage
	}

	d := a.Guard.Enter(ctx, a.Navigator, view)
	if !d.Allowed {
		fmt.Fprintf(out, "access denied (%s)\n-> %s\n", d.Reason, a.Navigator.Current())
		return errFlowFailed
	}
	fmt.Fprintf(out, "-> %s\n", a.Navigator.Current())
	return nil
}

func logoutCmd(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	return report(out, a.Flows.Logout(ctx))
}
