package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/brightpath-auth/app"
	"github.com/jrsteele09/brightpath-auth/internal/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errFlowFailed) {
			log.Err(err).Msg("brightpath failed")
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		usage(out)
		return errUsage
	}

	c, err := config.FromEnvironment()
	if err != nil {
		return err
	}
	displayAppname(out, c.GetAppName())

	cmd, ok := commands[args[0]]
	if !ok {
		usage(out)
		return errUsage
	}

	a, err := app.New(c, app.WithStartRoute(cmd.start))
	if err != nil {
		return err
	}
	defer a.Close()
	log.Logger = a.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, args[1:], out); err != nil {
		return err
	}
	if cmd.delayed {
		waitForRedirect(ctx, a, out)
	}
	return nil
}

// waitForRedirect keeps the process alive until the scheduled redirect
// fires. An interrupt cancels it.
func waitForRedirect(ctx context.Context, a *app.App, out io.Writer) {
	waitCtx, cancel := context.WithTimeout(ctx, maxDelay(a.Config)+time.Second)
	defer cancel()
	if err := a.Flows.Wait(waitCtx); err != nil {
		a.Flows.Close()
		return
	}
	fmt.Fprintf(out, "-> %s\n", a.Navigator.Current())
}

func maxDelay(c config.FlowConfig) time.Duration {
	d := c.GetRegisterRedirectDelay()
	for _, other := range []time.Duration{c.GetForgotPasswordRedirectDelay(), c.GetResetPasswordRedirectDelay()} {
		if other > d {
			d = other
		}
	}
	return d
}

func displayAppname(out io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
