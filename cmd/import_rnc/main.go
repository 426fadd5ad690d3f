// import_rnc carga el padrón de contribuyentes de la DGII (RNC) en la tabla rnc_registry.
//
// Uso: go run ./cmd/import_rnc [ruta/DGII_RNC.TXT] [tamaño_lote]
// Por defecto busca DGII_RNC.TXT en el directorio actual. El archivo viene en Windows-1252
// con columnas separadas por "|"; también se aceptan tabulador, ";" y ",".
// La conexión se toma de la misma configuración que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jhoicas/pos-restaurante-api/internal/application/dgii"
	"github.com/jhoicas/pos-restaurante-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-restaurante-api/pkg/config"
	"github.com/jhoicas/pos-restaurante-api/pkg/logger"
)

func main() {
	path := "DGII_RNC.TXT"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	batch := dgii.DefaultBatchSize
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "Tamaño de lote inválido: %s\n", os.Args[2])
			os.Exit(2)
		}
		batch = n
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import_rnc"})

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir archivo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	start := time.Now()
	stats, err := dgii.NewImporter(postgres.NewRncRepository(pool), batch, log).Import(ctx, f)
	if err != nil {
		if stats != nil {
			fmt.Fprintf(os.Stderr, "Importación interrumpida tras %d registros: %v\n", stats.Upserted, err)
		} else {
			fmt.Fprintf(os.Stderr, "Importación fallida: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Importados %d contribuyentes de %s (leídos %d, omitidos %d, separador %q, encabezado %t) en %s\n",
		stats.Upserted, path, stats.Read, stats.Skipped, stats.Delimiter, stats.HasHeader, time.Since(start).Round(time.Millisecond))
}
