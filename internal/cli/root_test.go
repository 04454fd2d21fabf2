package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domaincreates/internal/adapters/pdftable/pdffixture"
	"domaincreates/internal/core/domain"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String() + errOut.String(), err
}

func registry(t *testing.T, status int, body string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	t.Setenv("DOMAINS_URL_TEMPLATE", server.URL+"/system/files/domain-creates_{date}.pdf")
}

func TestRoot_MalformedDate(t *testing.T) {
	root := t.TempDir()

	_, err := runCmd(t, "--root", root, "2024/06/05")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindDateParse))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRoot_UnpaddedDateRejected(t *testing.T) {
	root := t.TempDir()

	_, err := runCmd(t, "--root", root, "5-6-2024")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindDateParse))
}

func TestRoot_HelpMentionsDateFormat(t *testing.T) {
	out, err := runCmd(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "5-6-2024 is rejected")
}

func TestRoot_TooManyArgs(t *testing.T) {
	_, err := runCmd(t, "05-06-2024", "06-06-2024")
	assert.Error(t, err)
}

func TestRoot_Success(t *testing.T) {
	report := pdffixture.Build([]pdffixture.Page{
		{
			{X: 50, Y: 700, S: "Domain"}, {X: 300, Y: 700, S: "Date"},
			{X: 50, Y: 685, S: "example.com"}, {X: 300, Y: 685, S: "2024-06-05"},
			{X: 50, Y: 670, S: "Domain User Form"},
		},
		{
			{X: 50, Y: 700, S: "Domain"}, {X: 300, Y: 700, S: "Date"},
			{X: 50, Y: 685, S: "example.in"}, {X: 300, Y: 685, S: "2024-06-05"},
		},
	}, pdffixture.Options{})
	registry(t, http.StatusOK, string(report))
	root := t.TempDir()

	out, err := runCmd(t, "--root", root, "--exit-code", "05-06-2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Extracted 2 domains")
	assert.Contains(t, out, "Stage:        DONE")

	data, err := os.ReadFile(filepath.Join(root, "2024", "06", "domains_05-06-2024.txt"))
	require.NoError(t, err)
	assert.Equal(t, "example.com\nexample.in", string(data))

	_, statErr := os.Stat(filepath.Join(root, "2024", "06", "domain-creates_05-06-2024.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_FetchFailureExitsCleanByDefault(t *testing.T) {
	registry(t, http.StatusNotFound, "")
	root := t.TempDir()

	out, err := runCmd(t, "--root", root, "05-06-2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Error downloading PDF")
	assert.Contains(t, out, "Stage:        FETCH_FAILED")
	assert.Contains(t, out, "Success:      false")

	_, statErr := os.Stat(filepath.Join(root, "2024", "06", "domains_05-06-2024.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_FetchFailureWithExitCode(t *testing.T) {
	registry(t, http.StatusInternalServerError, "")

	_, err := runCmd(t, "--root", t.TempDir(), "--exit-code", "05-06-2024")
	assert.ErrorIs(t, err, errRunFailed)
}

func TestRoot_CorruptDocumentIsKept(t *testing.T) {
	registry(t, http.StatusOK, "<html>maintenance</html>")
	root := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "domaincreates.prom")

	out, err := runCmd(t, "--root", root, "--metrics-file", metricsFile, "05-06-2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Stage:        EXTRACT_FAILED")

	doc, err := os.ReadFile(filepath.Join(root, "2024", "06", "domain-creates_05-06-2024.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "<html>maintenance</html>", string(doc))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `domaincreates_last_run_failed_stage{stage="EXTRACT_FAILED"} 1`)
	assert.Contains(t, string(prom), "domaincreates_last_run_success 0")
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Setenv("DOMAINS_URL_TEMPLATE", "https://registry.in/static.pdf")

	_, err := runCmd(t, "05-06-2024")
	assert.Error(t, err)
}
