package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/worktrunk/worktrunk/internal/hooks"
)

// promptApproval builds the interactive approval prompter for project
// hooks (spec §4.4: "Prompts list every not-yet-approved command in the
// upcoming batch once; a single affirmative approves all of them for
// this run"). When yes is true, the bootstrap's hook.Options.Yes
// already auto-approves and this prompter is never consulted, but it
// still needs to exist so Runner.Prompt is never nil.
func promptApproval(yes bool) hooks.Prompter {
	return func(commands []string) (bool, error) {
		fmt.Fprintln(os.Stderr, "Run these project-scoped commands?")
		for _, c := range commands {
			fmt.Fprintf(os.Stderr, "  %s\n", c)
		}
		fmt.Fprint(os.Stderr, "[y/N] ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}
