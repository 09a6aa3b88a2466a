package main

import (
	"database/sql"
	"embed"
	"errors"
	"os"

	"github.com/Thiht/transactor"
	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/focusflow/focusflow-go"
	"github.com/focusflow/focusflow-go/httpapi"
	"github.com/focusflow/focusflow-go/rewards"
	fsqlite "github.com/focusflow/focusflow-go/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const Version = "0.0.0"

type app struct {
	cfg     focusflow.Config
	client  *httpapi.Client
	journal focusflow.FocusJournal
	tx      transactor.Transactor
	orch    *rewards.Orchestrator
}

func main() {
	// logger
	log.SetLevel(log.DebugLevel)
	log.SetReportCaller(true)

	// config
	cfg, err := focusflow.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// db
	log.Debug("opening db", "path", cfg.DatabaseURL)
	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	if err := runMigrations(db); err != nil {
		log.Fatal("failed migration", "err", err)
	}
	defer db.Close() //nolint

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)

	client := httpapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, *log.Default())
	a := &app{
		cfg:     cfg,
		client:  client,
		journal: fsqlite.NewJournalRepo(dbGetter, *log.Default()),
		tx:      tx,
		orch:    rewards.NewOrchestrator(client, cfg.CoinsPerTaskClear, cfg.CoinsPerCycle, *log.Default()),
	}

	root := &cobra.Command{
		Use:     "focusflow",
		Short:   "pomodoro focus timer",
		Version: Version,
	}
	root.AddCommand(newStartCmd(a), newGoalsCmd(a), newTaskCmd(a), newHistoryCmd(a))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
