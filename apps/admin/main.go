package main

import (
	"log"
	"os"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/target"
	"github.com/taleemhub/backoffice/storage/database"
	"github.com/taleemhub/backoffice/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist(core.Conf))
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	txDB := database.NewDB(db)
	empRepo := postgres.NewEmployeeRepository(txDB)
	statRepo := postgres.NewDailyStatRepository(txDB)
	tgtRepo := postgres.NewTargetRepository(txDB)

	// start CLI
	cli := commandLine{
		db:      db,
		empRepo: empRepo,
		tgtSvc:  target.NewService(txDB, tgtRepo, statRepo, empRepo, nil),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
