package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dirigent/internal/app"
	"dirigent/internal/fsq"
	"dirigent/internal/listing"
	"dirigent/internal/logging"
	"dirigent/internal/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and log navigation and refresh activity until interrupted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := app.New(cfgManager.Get())
		if err != nil {
			return err
		}
		if err := o.Start(); err != nil {
			return err
		}
		defer o.Close()

		path := o.HomeDir()
		if len(args) == 1 {
			wd, err := os.Getwd()
			if err != nil {
				wd = path
			}
			path = fsq.ExpandPath(args[0], wd, o.HomeDir())
		}

		lister := listing.NewService("watch")
		lister.SetCurrentPath(path)
		o.RegisterTarget(lister)
		defer o.UnregisterTarget(lister.InstanceID())

		unsubscribe := o.Bus().Subscribe(func(e notify.Event) {
			switch ev := e.(type) {
			case notify.NavigationChanged:
				logging.Info("navigated", "tab", ev.TabID, "path", ev.Path, "type", ev.Type.String())
				lister.SetCurrentPath(ev.Path)
			case notify.RefreshCompleted:
				entries, _ := lister.Cached(ev.Path)
				logging.Info("refresh completed",
					"path", ev.Path, "source", ev.Source, "success", ev.Success,
					"entries", len(entries), "request", ev.RequestID)
			case notify.UndoRedoStateChanged:
				logging.Debug("undo state", "canUndo", ev.CanUndo, "canRedo", ev.CanRedo)
			}
		})
		defer unsubscribe()

		if err := o.OpenTab("main", path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s, Ctrl-C to stop\n", path)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
