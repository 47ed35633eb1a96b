package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/revyh/glossify/cmd/glossify/cmd"
	"github.com/revyh/glossify/internal/failure"
)

// iRunGlossifyWith runs the command line in-process. "{input}" in args is
// replaced with the scenario's input file.
func (testCtx *TestContext) iRunGlossifyWith(args string) error {
	if len(testCtx.Pages) > 0 {
		if err := testCtx.writeInput(); err != nil {
			return err
		}
	}
	argv := strings.Fields(strings.ReplaceAll(args, "{input}", testCtx.Input))

	var stdout, stderr bytes.Buffer
	root := cmd.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(argv)
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(&stderr, "Error:", err)
	}

	testCtx.LastStdout = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastExitCode = failure.ExitCode(err)
	return nil
}

func (testCtx *TestContext) theExitCodeShouldBe(code int) error {
	if testCtx.LastExitCode != code {
		return fmt.Errorf("expected exit code %d, got %d\nstderr: %s", code, testCtx.LastExitCode, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(text string) error {
	if !strings.Contains(testCtx.LastStdout, text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theErrorOutputShouldContain(text string) error {
	if !strings.Contains(testCtx.LastStderr, text) {
		return fmt.Errorf("expected error output to contain %q, got:\n%s", text, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theJSONSummaryShouldReportFlaggedWords(n int) error {
	var summary struct {
		WordsFlagged int `json:"words_flagged"`
	}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &summary); err != nil {
		return fmt.Errorf("output is not a JSON summary: %w", err)
	}
	if summary.WordsFlagged != n {
		return fmt.Errorf("expected %d flagged words, got %d", n, summary.WordsFlagged)
	}
	return nil
}

// RegisterCLISteps registers the command line step definitions.
func (testCtx *TestContext) RegisterCLISteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run glossify with "([^"]*)"$`, testCtx.iRunGlossifyWith)
	sc.Step(`^the exit code should be (\d+)$`, testCtx.theExitCodeShouldBe)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the error output should contain "([^"]*)"$`, testCtx.theErrorOutputShouldContain)
	sc.Step(`^the JSON summary should report (\d+) flagged words?$`, testCtx.theJSONSummaryShouldReportFlaggedWords)
}
