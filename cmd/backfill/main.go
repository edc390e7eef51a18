// Command backfill revisa los punteros de custodia heredados contra la cadena de
// recibos. Por defecto sólo reporta; con -apply repara los casos que la cadena
// determina y deja el resto en el reporte.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	appcustody "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/infrastructure/postgres"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/config"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

func main() {
	apply := flag.Bool("apply", false, "aplicar las reparaciones (por defecto sólo reporta)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.WithWriter(os.Stderr, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.Repos(pool)
	uc := appcustody.NewBackfillUseCase(postgres.NewTxRunner(pool), repos.Items, repos.Receipts, nil, log)
	report, err := uc.Run(ctx, *apply)
	if err != nil {
		log.Fatal().Err(err).Msg("backfill")
	}

	log.Info().
		Bool("applied", report.Applied).
		Int("scanned", report.Scanned).
		Int("findings", len(report.Findings)).
		Int("repaired", report.Repaired).
		Msg("backfill terminado")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
}
