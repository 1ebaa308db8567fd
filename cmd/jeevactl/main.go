// Command jeevactl runs the offline pieces of the assistant from a shell:
// topic classification, prompt assembly and parsing of saved model replies.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
