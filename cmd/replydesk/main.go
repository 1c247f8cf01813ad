package main

import (
	"os"
	"strings"

	"replydesk/internal/cli"
	"replydesk/internal/format"
)

func isTemplateID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "tpl-") {
		return false
	}
	return len(s) > len("tpl-")
}

func rewriteDirectTemplateLookupArgs(argv []string) []string {
	// Convenience: `replydesk <template-id>` works like `replydesk templates show <template-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
	// Persistent flags may come first (e.g. `replydesk --locale es tpl-refund`), so look for the
	// first positional token, not argv[1].
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without skipping a value, so the template id is never consumed.
	valueFlags := map[string]bool{
		"--config":    true,
		"--actor":     true,
		"--privilege": true,
		"--surface":   true,
		"--domain":    true,
		"--locale":    true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, "templates", "show")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isTemplateID(argv[i+1]) {
				return rewrite(i + 1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isTemplateID(a) {
			return rewrite(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectTemplateLookupArgs(os.Args)
	format.ApplyColorProfile()

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
