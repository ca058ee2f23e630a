// Hlamon is a line-oriented monitor for an HLA target session. The session
// runs against the simulated Cortex-M; commands come from a script file or
// stdin.
//
//	hlamon [-config session.ini] [-script cmds.txt] [-v]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"hlatarget/internal/common"
	"hlatarget/internal/config"
)

var (
	configPath = flag.String("config", "", "session configuration file")
	scriptPath = flag.String("script", "", "command script; stdin when empty")
	verbose    = flag.Bool("v", false, "log at debug level")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "hlamon: %v\n", err)
			os.Exit(1)
		}
	}
	if *verbose {
		cfg.LogLevel = common.SeverityDebug
	}

	var in io.Reader = os.Stdin
	if *scriptPath != "" {
		f, err := os.Open(*scriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "hlamon: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	m, err := newMonitor(cfg, os.Stdout, common.NewStdLogger(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "hlamon: %v\n", err)
		os.Exit(1)
	}
	if err := m.run(context.Background(), in); err != nil {
		fmt.Fprintf(os.Stderr, "hlamon: %v\n", err)
		os.Exit(1)
	}
}
