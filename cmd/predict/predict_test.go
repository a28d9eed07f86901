package predict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmseg/tmseg-go/internal/app"
	"github.com/tmseg/tmseg-go/internal/buildinfo"
	"github.com/tmseg/tmseg-go/internal/conf"
	"github.com/tmseg/tmseg-go/internal/topology"
)

const scoringURL = "http://scoring.test"

func pssmText(seq string) string {
	const cols = "A   R   N   D   C   Q   E   G   H   I   L   K   M   F   P   S   T   W   Y   V"
	var b strings.Builder
	b.WriteString("\nLast position-specific scoring matrix computed\n")
	b.WriteString("           " + cols + "   " + cols + "\n")
	for i := range len(seq) {
		fmt.Fprintf(&b, "%5d %c ", i+1, seq[i])
		for range 40 {
			b.WriteString("   0")
		}
		b.WriteString("  0.00 0.00\n")
	}
	return b.String()
}

// mockScoring answers every model so that each residue is soluble.
func mockScoring(t *testing.T) {
	t.Helper()
	httpmock.Activate(t)

	httpmock.RegisterResponder(http.MethodPost, scoringURL+"/predict",
		func(req *http.Request) (*http.Response, error) {
			var body struct {
				Model string `json:"model"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"bad body"}`), nil
			}
			switch body.Model {
			case "residue":
				return httpmock.NewStringResponse(http.StatusOK, `{"probabilities":[0.9,0.05,0.05]}`), nil
			default:
				return httpmock.NewStringResponse(http.StatusOK, `{"probabilities":[0.5,0.5]}`), nil
			}
		})
}

func newContext(t *testing.T) *app.Context {
	t.Helper()
	params := topology.DefaultParams()
	return &app.Context{
		Build: buildinfo.NewContext("test", ""),
		Fs:    afero.NewMemMapFs(),
		Settings: &conf.Settings{
			Refine: conf.RefineSettings{
				SmoothWindow:    params.SmoothWindow,
				WeightSol:       params.Weights.Sol,
				WeightTMH:       params.Weights.TMH,
				WeightSig:       params.Weights.Sig,
				MinHelixLength:  params.MinHelixLength,
				SignalMinRun:    params.SignalMinRun,
				HelixMinSize:    params.HelixMinSize,
				GapMinSize:      params.GapMinSize,
				MaxShift:        params.MaxShift,
				MaxRefineRounds: params.MaxRefineRounds,
				TopologyCutoff:  params.TopologyCutoff,
				NearOffset:      params.NearOffset,
				FarOffset:       params.FarOffset,
			},
			Remote: conf.RemoteSettings{Enabled: true, URL: scoringURL, Timeout: time.Second},
		},
	}
}

func TestPredictWritesReportToStdout(t *testing.T) {
	mockScoring(t)
	ctx := newContext(t)

	seq := "MSKEDRTQNGSKEDRTQNGSKEDRTQNGSK"
	require.NoError(t, afero.WriteFile(ctx.Fs, "/in/P1.fasta", []byte(">P1 soluble\n"+seq+"\n"), 0o644))
	require.NoError(t, afero.WriteFile(ctx.Fs, "/in/P1.pssm", []byte(pssmText(seq)), 0o644))

	cmd := Command(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-i", "/in/P1.fasta", "-p", "/in/P1.pssm"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "# SEGMENT\tSTART\tEND\tRI\n")
	assert.Contains(t, out.String(), fmt.Sprintf("# NON-MEM\t1\t%d\n", len(seq)))
	assert.Contains(t, out.String(), seq+"\n"+strings.Repeat("N", len(seq))+"\n")
	assert.Equal(t, len(seq), httpmock.GetTotalCallCount())
}

func TestPredictWritesFiles(t *testing.T) {
	mockScoring(t)
	ctx := newContext(t)

	seq := "MSKEDRTQNGSKEDRTQNGS"
	require.NoError(t, afero.WriteFile(ctx.Fs, "/in/P2.fasta", []byte(">P2\n"+seq+"\n"), 0o644))
	require.NoError(t, afero.WriteFile(ctx.Fs, "/in/P2.pssm", []byte(pssmText(seq)), 0o644))

	cmd := Command(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-i", "/in/P2.fasta", "-p", "/in/P2.pssm", "-o", "/out/P2.tmseg", "-r", "/out/P2.tmseg-raw"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, out.String())

	report, err := afero.ReadFile(ctx.Fs, "/out/P2.tmseg")
	require.NoError(t, err)
	assert.Contains(t, string(report), "# NON-MEM\t1\t20")

	raw, err := afero.ReadFile(ctx.Fs, "/out/P2.tmseg-raw")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# SEQ\tSOL\tTMH\tSIG\tSEG\tTOP\tPRED\n")
	assert.Contains(t, string(raw), "M\t0.900\t0.050\t0.050\t.")
}

func TestPredictRequiresInputs(t *testing.T) {
	cmd := Command(newContext(t))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-i", "/in/P1.fasta"})
	require.Error(t, cmd.Execute())
}

func TestPredictMissingPSSM(t *testing.T) {
	mockScoring(t)
	ctx := newContext(t)
	require.NoError(t, afero.WriteFile(ctx.Fs, "/in/P3.fasta", []byte(">P3\nMSKEDR\n"), 0o644))

	cmd := Command(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"-i", "/in/P3.fasta", "-p", "/in/P3.pssm"})
	require.Error(t, cmd.Execute())
	assert.Zero(t, httpmock.GetTotalCallCount())
}
