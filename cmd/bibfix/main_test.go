package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBib = `% exported library
@article{smith2020,
  author = {A. Smith and B. Jones and C. Lee},
  title = {A study of things},
  journal = {Nature},
  year = {2020},
  volume = {5},
  number = {2},
  pages = {1--10},
  month = {jan},
  abstract = {Dropped by the policy.},
}

@misc{uncited,
  title = {Notes},
}
`

// isolate points the global config at an empty directory and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores flag defaults left over from a previous run.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return reportError(io.Discard, err)
}

func TestClean_WritesCleanedFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)

	out, err := runCLI(t, "clean", input, "--max-authors", "2", "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)

	output := filepath.Join(dir, "refs_cleaned.bib")
	assert.Equal(t, "Wrote 2 entries to "+output+"\nMissing fields:\nEntry 'uncited' missing: year\n", out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	want := `@article{smith2020,
    author = {A. Smith and B. Jones and others},
    title = {A study of things},
    journal = {Nature},
    year = {2020},
    volume = {5},
    number = {2},
    pages = {1--10}
}

@misc{uncited,
    title = {Notes}
}
`
	assert.Equal(t, want, string(data))
}

func TestClean_FilterCitedAndReport(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	manuscript := filepath.Join(dir, "paper.tex")
	output := filepath.Join(dir, "out.bib")
	report := filepath.Join(dir, "report.jsonl")
	writeFile(t, input, testBib)
	writeFile(t, manuscript, "As shown~\\citep{smith2020}.\n% \\cite{uncited}\n")

	out, err := runCLI(t, "clean", input,
		"--filter-cited", "--manuscript", manuscript,
		"--output", output, "--report", report,
		"--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Equal(t, "Wrote 1 entries to "+output+"\nNo missing fields.\n", out)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "@article{smith2020,")
	assert.NotContains(t, string(data), "uncited")

	data, err = os.ReadFile(report)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestClean_JSONSummary(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)

	out, err := runCLI(t, "clean", input, "--json", "--max-authors", "2", "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Contains(t, out, `"entries": 2`)
	assert.Contains(t, out, `"key": "uncited"`)
	assert.Contains(t, out, `"missing": [`)
	assert.Contains(t, out, `"truncated authors from 3 to 2"`)
}

func TestClean_AbbreviateAndRecase(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	abbrevs := filepath.Join(dir, "abbreviations.json")
	writeFile(t, input, `@article{k,
  author = {A. Smith}, title = {Deep Learning for NASA},
  journal = {Journal of Machine Learning Research},
  year = 2020, volume = 1, number = 2, pages = {3--4}}
`)
	writeFile(t, abbrevs, `{"capitalize": ["NASA"], "journal_abbreviations": {"JMLR": "Journal of Machine Learning Research"}}`)

	_, err := runCLI(t, "clean", input, "--abbreviate", "--recase-titles", "--abbreviations", abbrevs)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "journal = {JMLR}")
	assert.Contains(t, string(data), "title = {Deep learning for NASA}")
}

func TestClean_EnvironmentSetsMaxAuthors(t *testing.T) {
	isolate(t)
	t.Setenv("BIBFIX_MAX_AUTHORS", "1")
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)

	_, err := runCLI(t, "clean", input, "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "author = {A. Smith and others}")
}

func TestClean_NonNumericMaxAuthorsFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("BIBFIX_MAX_AUTHORS", "abc")
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)

	_, err := runCLI(t, "clean", input, "--abbreviations", filepath.Join(dir, "none.json"))
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
	assert.Contains(t, err.Error(), `"abc"`)
	assert.NotContains(t, err.Error(), "must be positive")
}

func TestClean_Latin1RoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, "@misc{m,\n  title = {Caf\xe9 na\xefve},\n  year = 2001,\n}\n")

	_, err := runCLI(t, "clean", input, "--encoding", "latin1", "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Equal(t, "@misc{m,\n    title = {Caf\xe9 na\xefve},\n    year = {2001}\n}\n", string(data))
}

func TestClean_EncodingFromGlobalConfig(t *testing.T) {
	xdg := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "bibfix"), 0755))
	writeFile(t, filepath.Join(xdg, "bibfix", "config.yml"), "encoding: latin1\n")
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, "@misc{m, title = {Gr\xfcn}, year = 2001}\n")

	_, err := runCLI(t, "clean", input, "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title = {Gr\xfcn}")
}

func TestClean_ExitCodes(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)
	broken := filepath.Join(dir, "broken.bib")
	writeFile(t, broken, "@article{k,\n  title = {open\n")
	badAbbrevs := filepath.Join(dir, "bad.json")
	writeFile(t, badAbbrevs, "{not json")
	badPolicy := filepath.Join(dir, "policy.yml")
	writeFile(t, badPolicy, "required:\n  article: []\n")
	none := filepath.Join(dir, "none.json")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing input", []string{"clean", filepath.Join(dir, "missing.bib"), "--abbreviations", none}, ExitDataError},
		{"parse failure", []string{"clean", broken, "--abbreviations", none}, ExitDataError},
		{"malformed abbreviations", []string{"clean", input, "--abbreviations", badAbbrevs}, ExitConfigError},
		{"malformed policy", []string{"clean", input, "--abbreviations", none, "--policy", badPolicy}, ExitConfigError},
		{"zero max authors", []string{"clean", input, "--abbreviations", none, "--max-authors", "0"}, ExitError},
		{"unknown encoding", []string{"clean", input, "--abbreviations", none, "--encoding", "klingon"}, ExitError},
		{"no input argument", []string{"clean"}, ExitError},
		{"unwritable output", []string{"clean", input, "--abbreviations", none, "--output", filepath.Join(dir, "no", "such", "dir.bib")}, ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, exitCode(err))
		})
	}
}

func TestClean_PolicyFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	policy := filepath.Join(dir, "policy.yml")
	writeFile(t, input, testBib)
	writeFile(t, policy, "required:\n  misc: [title]\n  article: [title, month]\n")

	out, err := runCLI(t, "clean", input, "--policy", policy, "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "No missing fields.\n"), out)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "@article{smith2020,\n    title = {A study of things},\n    month = {Jan}\n}")
}

func TestCheck(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, testBib)
	none := filepath.Join(dir, "none.json")

	out, err := runCLI(t, "check", input, "--abbreviations", none)
	assert.Equal(t, ExitDataError, exitCode(err))
	assert.Equal(t, "Missing fields:\nEntry 'uncited' missing: year\n", out)

	_, statErr := os.Stat(filepath.Join(dir, "refs_cleaned.bib"))
	assert.True(t, os.IsNotExist(statErr), "check must not write output")

	complete := filepath.Join(dir, "complete.bib")
	writeFile(t, complete, "@misc{m, title = {T}, year = 2001}\n")
	out, err = runCLI(t, "check", complete, "--abbreviations", none)
	assert.NoError(t, err)
	assert.Equal(t, "No missing fields.\n", out)
}

func TestCheck_Baseline(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	report := filepath.Join(dir, "report.jsonl")
	none := filepath.Join(dir, "none.json")
	writeFile(t, input, testBib)

	_, err := runCLI(t, "clean", input, "--report", report, "--abbreviations", none)
	require.NoError(t, err)

	out, err := runCLI(t, "check", input, "--baseline", report, "--abbreviations", none)
	require.NoError(t, err)
	assert.Equal(t, "No missing fields.\n", out)

	writeFile(t, input, testBib+"\n@misc{later, title = {More notes}}\n")
	out, err = runCLI(t, "check", input, "--baseline", report, "--abbreviations", none)
	assert.Equal(t, ExitDataError, exitCode(err))
	assert.Equal(t, "Missing fields:\nEntry 'later' missing: year\n", out)

	out, err = runCLI(t, "check", input, "--baseline", report, "--json", "--abbreviations", none)
	assert.Equal(t, ExitDataError, exitCode(err))
	assert.Contains(t, out, `"key": "later"`)
	assert.NotContains(t, out, `"key": "uncited"`)
}

func TestCheck_MalformedBaseline(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "refs.bib")
	baseline := filepath.Join(dir, "report.jsonl")
	writeFile(t, input, testBib)
	writeFile(t, baseline, "{broken\n")

	_, err := runCLI(t, "check", input, "--baseline", baseline, "--abbreviations", filepath.Join(dir, "none.json"))
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestKeys(t *testing.T) {
	isolate(t)
	manuscript := filepath.Join(t.TempDir(), "main.tex")
	writeFile(t, manuscript, "\\citet[p.~3]{b, a}\n%\\cite{hidden}\n\\cite{c}\n")

	out, err := runCLI(t, "keys", manuscript)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", out)

	_, err = runCLI(t, "keys", filepath.Join(t.TempDir(), "missing.tex"))
	assert.Equal(t, ExitDataError, exitCode(err))
}

func TestConfigShow_LayersGlobalConfigAndEnv(t *testing.T) {
	xdg := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "bibfix"), 0755))
	writeFile(t, filepath.Join(xdg, "bibfix", "config.yml"), "max_authors: 4\nmanuscript: /papers/main.tex\nabbreviate: true\n")
	t.Setenv("BIBFIX_MANUSCRIPT", "/env/paper.tex")

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_authors: 4\n")
	assert.Contains(t, out, "manuscript: /env/paper.tex\n")
	assert.Contains(t, out, "abbreviate: true\n")
	assert.Contains(t, out, "abbreviations: abbreviations.json\n")
	assert.Contains(t, out, "recase_titles: false\n")
	assert.Contains(t, out, "encoding: utf-8\n")
}

func TestConfigShow_MalformedGlobalConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bibfix.yml")
	writeFile(t, path, "max_authors: [1")

	_, err := runCLI(t, "--config", path, "config", "show")
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestConfigPolicy_RoundTripsThroughPolicyFlag(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, "config", "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "author_or_editor:\n    - book\n    - proceedings\n")

	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.yml")
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, policy, out)
	writeFile(t, input, testBib)

	out, err = runCLI(t, "clean", input, "--policy", policy, "--abbreviations", filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Entry 'uncited' missing: year\n")
}

func TestConfigInit(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "abbreviations.json")

	out, err := runCLI(t, "config", "init", "--abbreviations", path)
	require.NoError(t, err)
	assert.Equal(t, "Wrote starter abbreviations to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Journal of Machine Learning Research"`)

	_, err = runCLI(t, "config", "init", "--abbreviations", path)
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
	assert.Contains(t, err.Error(), "--force")

	writeFile(t, path, "{}")
	_, err = runCLI(t, "config", "init", "--abbreviations", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"NeurIPS"`)
}

func TestConfigInit_StarterDrivesClean(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	abbrevs := filepath.Join(dir, "abbreviations.json")
	input := filepath.Join(dir, "refs.bib")
	writeFile(t, input, `@article{k,
  author = {A. Smith}, title = {Bayesian Methods for DNA},
  journal = {Nature Methods},
  year = 2020, volume = 1, number = 2, pages = {3--4}}
`)

	_, err := runCLI(t, "config", "init", "--abbreviations", abbrevs)
	require.NoError(t, err)
	_, err = runCLI(t, "clean", input, "--abbreviate", "--recase-titles", "--abbreviations", abbrevs)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "refs_cleaned.bib"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "journal = {Nat. Methods}")
	assert.Contains(t, string(data), "title = {Bayesian methods for DNA}")
}
