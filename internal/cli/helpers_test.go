package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/testutil"
)

var (
	specsDir     = filepath.Join("..", "..", "testdata", "specs")
	fixturePath  = filepath.Join("..", "..", "testdata", "fixtures", "articles.yaml")
	scenariosDir = filepath.Join("..", "..", "testdata", "scenarios")
)

const testSecret = "test-secret"

// testOptions returns root options pointing at the shared testdata, with
// a fixed trace id so JSON output is stable.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format: format,
		Specs:  specsDir,
		DB:     filepath.Join(t.TempDir(), "test.db"),
		Secret: testSecret,
		Traces: testutil.NewFixedTraceGenerator("test-trace"),
	}
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// loadArticles loads the shared fixture into opts.DB.
func loadArticles(t *testing.T, opts *RootOptions) {
	t.Helper()
	_, err := execute(t, NewLoadCommand(opts), fixturePath)
	require.NoError(t, err)
}

// decodeResponse decodes a JSON CLI response with its data into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}
