package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hcc-raf-server/internal/setup"
)

const rawResult = `{
	"model_name": "CMS-HCC Model V28",
	"risk_score": 1.5,
	"risk_score_demographics": 0.396,
	"coefficients": {"38": 0.166, "226": 0.36, "DIABETES_HF_V28": 0.112, "MCAID_Female_Aged": 0.2, "F70_74": 0.396},
	"hcc_list": ["226", "38"],
	"cc_to_dx": {"38": ["E119"], "226": ["I509", "I5020"]},
	"interactions": {"HF_KIDNEY_V28": 0, "DIABETES_HF_V28": 1, "MCAID_Female_Aged": 1},
	"demographics": {"age": 72, "sex": "F", "category": "F70_74", "new_enrollee": false, "disabled": false, "fbd": true, "pbd": false}
}`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFormat_Full(t *testing.T) {
	out, _, err := run(t, "", "format", writeFile(t, "raw.json", rawResult))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"risk_score": 1.5,
		"risk_score_normalized": 1.435,
		"community": "Community, FBDual, Aged",
		"interactions": [
			{"code": "DIABETES_HF_V28", "label": "Diabetes with Heart Failure", "coefficient": 0.112}
		],
		"conditions": [
			{"code": "226", "source": ["I5020", "I509"], "label": "Heart Failure, Except Endstage and Acute", "coefficient": 0.36},
			{"code": "38", "source": ["E119"], "label": "Diabetes with Glycemic, Unspecified, or No Complications", "coefficient": 0.166}
		],
		"demographics": [
			{"code": "F70_74", "label": "Female, Age 70-74, Full Benefit Dual", "coefficient": 0.396}
		]
	}`, out)
}

func TestFormat_ReducedFromStdin(t *testing.T) {
	out, _, err := run(t, rawResult, "format", "--mode", "reduced", "--compact", "-")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "Community, FBDual, Aged", body["community"])
	assert.Len(t, body["conditions"], 2)
	assert.NotContains(t, body, "risk_score")
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestFormat_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad mode", []string{"format", "--mode", "partial", "-"}, "invalid mode"},
		{"missing file", []string{"format", filepath.Join(t.TempDir(), "absent.json")}, "failed to read engine result"},
		{"bad json", []string{"format", writeFile(t, "bad.json", "{")}, "failed to decode engine result"},
		{"missing profile", []string{"format", "--profile", "/nonexistent/profile.yaml", writeFile(t, "raw.json", rawResult)}, "failed to load model profile"},
		{"no argument", []string{"format"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry_Default(t *testing.T) {
	out, _, err := run(t, "", "registry")
	require.NoError(t, err)

	var summary profileSummary
	require.NoError(t, yaml.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "CMS-HCC Model V28", summary.Model)
	assert.Equal(t, 1.045, summary.NormFactor)
	assert.Positive(t, summary.Labels.Conditions)
	assert.Positive(t, summary.Labels.Demographics)
}

func TestRegistry_ModelOverrideAndJSON(t *testing.T) {
	out, errOut, err := run(t, "", "registry", "--model", "CMS-HCC Model V24", "-o", "json")
	require.NoError(t, err)

	var summary profileSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "CMS-HCC Model V24", summary.Model)
	assert.Contains(t, errOut, "Configured model name differs")
}

func TestRegistry_InvalidOutput(t *testing.T) {
	_, _, err := run(t, "", "registry", "-o", "xml")
	assert.ErrorContains(t, err, "invalid output format")
}

func TestSetup_InstallAndStatus(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "client.json")
	binary := filepath.Join(dir, setup.BinaryName)
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755))

	out, _, err := run(t, "", "setup", "install",
		"--config", configPath, "--binary", binary, "--env", "RAF_ENGINE_BASE_URL=http://engine:8000")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered hcc-raf in "+configPath)

	out, _, err = run(t, "", "setup", "status", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Registered: true")
	assert.Contains(t, out, "Server:     "+binary)
	assert.Contains(t, out, "RAF_ENGINE_BASE_URL")
}

func TestParseEnv(t *testing.T) {
	env, err := parseEnv([]string{"RAF_LOGGING_LEVEL=debug", "RAF_AUTH_TOKENS=a,b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"RAF_LOGGING_LEVEL": "debug", "RAF_AUTH_TOKENS": "a,b"}, env)

	_, err = parseEnv([]string{"NOEQUALS"})
	assert.ErrorContains(t, err, "expected KEY=VALUE")

	_, err = parseEnv([]string{"HOME=/tmp"})
	assert.ErrorContains(t, err, "must start with RAF_")
}
