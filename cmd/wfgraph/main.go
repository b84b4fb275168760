// wfgraph renders workflow definitions and their runs as graphs.
//
//	wfgraph render [flags] workflow.yaml
//	wfgraph install [flags]
//	wfgraph version
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(context.Background(), os.Args[2:], loadConfig(), os.Stdout, os.Stderr)
	case "install":
		err = runInstall(os.Args[2:], wfgraphDir(), os.Stdout)
	case "version":
		printVersion(os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: wfgraph render [flags] workflow.yaml | install [flags] | version")
}
