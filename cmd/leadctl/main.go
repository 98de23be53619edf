// Command leadctl submits a lead through the same fallback chain the contact
// form uses and prints the resulting banner. It exits 1 when the lead was not
// stored.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tbourn/go-lead-backend/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "leadctl:", err)
		os.Exit(1)
	}
}
