package main

import (
	"log"

	flag "github.com/spf13/pflag"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	configFile := flag.StringP("config", "c", "./config.yml", "path to the yaml configuration file")
	envFile := flag.StringP("env", "e", "./config.env", "path to the optional environment file")
	flag.Parse()

	app, err := NewApp(*configFile, *envFile)
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
