package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/bartek5186/dnimport/internal/datanorm"
	"github.com/bartek5186/dnimport/internal/importer"
	syncer "github.com/bartek5186/dnimport/internal/syncer"
	"github.com/spf13/cobra"
)

// watch – tryb długo działający: inbox z archiwami od dostawców
func newWatchCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Pilnuje katalogu inbox i importuje nowe archiwa DATANORM",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(*g)
			if err != nil {
				return err
			}
			defer a.dbh.Close()

			version, err := datanorm.ParseVersion(a.cfg.Watch.Version)
			if err != nil {
				return err
			}
			imp := a.newImporter(importer.Options{Version: version})

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			s := syncer.New(a.log, a.cfg.Watch, a.dbh.DB, imp.Run)
			if err := s.Start(ctx); err != nil {
				return err
			}
			a.log.Info().Msgf("dnimport %s: działa", ver)

			<-ctx.Done()
			s.Stop()
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Wersja programu",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dnimport %s | %s\n", ver, runtime.Version())
		},
	}
}
