package app

import (
	"context"
	"io"
	"os"

	"github.com/flemzord/parley/internal/gateway"
	"github.com/flemzord/parley/internal/render"
	"github.com/flemzord/parley/internal/repl"
)

// Serve runs the web adapter until ctx is canceled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	gw := gateway.New(gateway.Config{
		Addr:        a.Config.Addr(),
		CORSOrigins: a.Config.CORSOrigins,
	}, a.Chat, a.Metrics, a.Logger)

	if err := gw.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("shutdown signal received")
	return gw.Stop(context.WithoutCancel(ctx))
}

// Interactive runs the terminal adapter on stdin and out until the user
// quits or ctx is canceled.
func (a *App) Interactive(ctx context.Context, stdin *os.File, out io.Writer) error {
	r := repl.New(a.Chat, repl.NewLineReader(stdin, out), out, repl.Config{
		Width: repl.Width(stdin, render.DefaultWidth),
	}, a.Logger)
	return r.Run(ctx)
}
