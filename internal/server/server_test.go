package server_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/CommonsSwarm/evmscripter/internal/abiutil"
	"github.com/CommonsSwarm/evmscripter/internal/interpreter"
	"github.com/CommonsSwarm/evmscripter/internal/module"
	"github.com/CommonsSwarm/evmscripter/internal/modules"
	"github.com/CommonsSwarm/evmscripter/internal/server"
	"github.com/CommonsSwarm/evmscripter/internal/testutil"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = common.HexToAddress("0x1000000000000000000000000000000000000001")

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := modules.Default()
	logger := testutil.NewTestLogger(t)
	s := server.New(server.Config{
		Interpreter: interpreter.New(interpreter.Config{
			Client:   testutil.NewFakeChain(),
			Names:    testutil.NewFakeResolver(nil),
			Registry: registry,
			Logger:   logger,
		}),
		Registry: registry,
		Logger:   logger,
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/interpret", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func scriptBody(t *testing.T, script string) string {
	t.Helper()
	b, err := json.Marshal(server.InterpretRequest{Script: script})
	require.NoError(t, err)
	return string(b)
}

func TestInterpret_Success(t *testing.T) {
	ts := newTestServer(t)
	src := fmt.Sprintf("exec %s \"transfer(address,uint256)\" @me 5\nraw %s 0x0001 --value 3", target.Hex(), target.Hex())

	resp := post(t, ts, scriptBody(t, src))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got server.InterpretResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Actions, 2)

	fn := abiutil.MustParseFunction("transfer(address,uint256)")
	want, err := fn.Encode(testutil.NewFakeChain().From, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, target, got.Actions[0].To)
	assert.Equal(t, want, got.Actions[0].Data)
	assert.Nil(t, got.Actions[0].Value)
	assert.Equal(t, []byte{0x00, 0x01}, []byte(got.Actions[1].Data))
	assert.Equal(t, "3", got.Actions[1].Value.String())
}

func TestInterpret_EmptyScript(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, scriptBody(t, "# nothing to do\n"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.JSONEq(t, `[]`, string(got["actions"]))
}

func TestInterpret_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		report module.Report
	}{
		{
			name:   "syntax error",
			body:   `{"script": "exec \"unterminated"}`,
			status: http.StatusUnprocessableEntity,
			report: module.Report{Kind: "SyntaxError", Line: 1},
		},
		{
			name:   "command error",
			body:   `{"script": "set $x 1\nexec \"token\" \"approve()\""}`,
			status: http.StatusUnprocessableEntity,
			report: module.Report{Kind: "InvalidAddressError", Owner: "std:exec", Line: 2, Column: 6},
		},
		{
			name:   "unknown module",
			body:   `{"script": "nope:run 1"}`,
			status: http.StatusUnprocessableEntity,
			report: module.Report{Kind: "UnknownModuleError", Line: 1, Column: 1},
		},
		{
			name:   "malformed body",
			body:   `{"script":`,
			status: http.StatusBadRequest,
			report: module.Report{Kind: "RequestError"},
		},
		{
			name:   "unknown field",
			body:   `{"source": "exec"}`,
			status: http.StatusBadRequest,
			report: module.Report{Kind: "RequestError"},
		},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var got server.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.report.Kind, got.Error.Kind)
			assert.NotEmpty(t, got.Error.Message)
			if tt.report.Line != 0 {
				assert.Equal(t, tt.report.Line, got.Error.Line)
			}
			if tt.report.Column != 0 {
				assert.Equal(t, tt.report.Column, got.Error.Column)
			}
			if tt.report.Owner != "" {
				assert.Equal(t, tt.report.Owner, got.Error.Owner)
			}
		})
	}
}

func TestModules(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/modules")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Modules []module.Info `json:"modules"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	names := make([]string, len(got.Modules))
	for i, m := range got.Modules {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"aragonos", "giveth", "std", "superfluid"}, names)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/interpret")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
