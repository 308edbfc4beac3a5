package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// confirm asks a yes/no question. Without an interactive stdin it answers no.
func confirm(cmd *cobra.Command, label string) (bool, error) {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return false, nil
	}

	fmt.Fprint(cmd.OutOrStdout(), label+" (y/n) ")
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false, err
	}
	response := strings.TrimSpace(strings.ToLower(input))
	return response == "y" || response == "yes", nil
}
