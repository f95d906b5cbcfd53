// Command jiterpiler-dump assembles a small demonstration WebAssembly
// module through the builder package and writes the resulting bytes to a
// file or stdout, for inspecting the byte-exact output of the module
// builder without wiring it into an actual trace-compilation pipeline.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is split out from main for unit testing, per convention.
func doMain(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("jiterpiler-dump", flag.ContinueOnError)
	flags.SetOutput(stdErr)

	out := flags.String("o", "", "output file (default: stdout)")
	useConstants := flags.Bool("use-constants", true, "enable the pointer constant-slot mechanism")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	mod, err := buildDemoModule(*useConstants)
	if err != nil {
		fmt.Fprintf(stdErr, "build module: %v\n", err)
		return 1
	}

	if *out == "" {
		if _, err := stdOut.Write(mod); err != nil {
			fmt.Fprintf(stdErr, "write module: %v\n", err)
			return 1
		}
		return 0
	}

	if err := os.WriteFile(*out, mod, 0o644); err != nil {
		fmt.Fprintf(stdErr, "write module: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdErr, "wrote %d bytes to %s\n", len(mod), *out)
	return 0
}
