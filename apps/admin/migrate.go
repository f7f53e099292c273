package main

import (
	"github.com/pressly/goose/v3"

	appfs "github.com/shulehq/shule/fs"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	goose.SetBaseFS(appfs.FS)
	return gooseRunFunc(args[0], cli.db.DB, "migrations", args[1:]...)
}
