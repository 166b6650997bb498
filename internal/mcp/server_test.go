package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/registry"
	"github.com/hcc-raf-server/internal/service"
)

type stubEngine struct {
	result *domain.RawModelResult
	err    error
	last   *domain.EngineRequest
}

func (e *stubEngine) Calculate(ctx context.Context, req *domain.EngineRequest) (*domain.RawModelResult, error) {
	e.last = req
	return e.result, e.err
}

func engineResult() *domain.RawModelResult {
	return &domain.RawModelResult{
		RiskScore:             1.5,
		RiskScoreDemographics: 0.396,
		Coefficients: map[string]float64{
			"38":              0.166,
			"DIABETES_HF_V28": 0.112,
			"F70_74":          0.396,
		},
		ConditionList: []string{"38"},
		CodeToSource:  map[string]domain.SourceCodes{"38": {"E119"}},
		Interactions:  domain.InteractionFlags{{Code: "DIABETES_HF_V28", Flag: 1}},
		Demographics: domain.NewDemographics([]domain.DemographicField{
			{Name: "category", Value: "F70_74"},
			{Name: "pbd", Value: true},
		}),
	}
}

func newTestServer(engine domain.RiskEngine) *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	calculator := service.NewCalculator(logger, engine, service.NewFormatter(registry.Default()), nil)
	return NewServer(domain.MCPConfig{ServerName: "hcc-raf-test", ServerVersion: "0.0.1"}, calculator, logger)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := newTestServer(&stubEngine{result: engineResult()})

	assert.NotNil(t, server.MCPServer())
	assert.NotNil(t, server.calculator)
	assert.NotNil(t, server.logger)
}

func TestHandleCalculateRAF(t *testing.T) {
	engine := &stubEngine{result: engineResult()}
	server := newTestServer(engine)

	result, out, err := server.handleCalculateRAF(context.Background(), nil, CalculateRAFParams{
		DiagnosisCodes: []string{"E119"},
		Age:            72,
		Sex:            "F",
		DualElgblCd:    "PBDual",
		CREC:           "1",
	})

	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{
		"risk_score": 1.5,
		"risk_score_normalized": 1.435,
		"community": "Community, PBDual, Aged",
		"interactions": [{"code": "DIABETES_HF_V28", "label": "Diabetes with Heart Failure", "coefficient": 0.112}],
		"conditions": [{"code": "38", "source": ["E119"], "label": "Diabetes with Glycemic, Unspecified, or No Complications", "coefficient": 0.166}],
		"demographics": [{"code": "F70_74", "label": "Female, Age 70-74, Partial Benefit Dual", "coefficient": 0.396}]
	}`, resultText(t, result))

	require.NotNil(t, engine.last)
	assert.Equal(t, "01", engine.last.DualElgblCd)
	assert.Equal(t, "1", engine.last.CREC)
	assert.Empty(t, engine.last.OREC)
}

func TestHandleCalculateHCC(t *testing.T) {
	engine := &stubEngine{result: engineResult()}
	server := newTestServer(engine)

	result, _, err := server.handleCalculateHCC(context.Background(), nil, CalculateHCCParams{
		DiagnosisCode: "E119",
		Age:           72,
		Sex:           "F",
	})

	require.NoError(t, err)
	assert.False(t, result.IsError)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &body))
	assert.Equal(t, "Community, PBDual, Aged", body["community"])
	assert.Len(t, body["conditions"], 1)
	assert.NotContains(t, body, "risk_score")
	assert.NotContains(t, body, "interactions")
	assert.Equal(t, []string{"E119"}, engine.last.DiagnosisCodes)
}

func TestHandleCalculate_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		engine := &stubEngine{result: engineResult()}
		server := newTestServer(engine)

		result, _, err := server.handleCalculateRAF(context.Background(), nil, CalculateRAFParams{
			DiagnosisCodes: []string{"E119"},
			Age:            0,
			Sex:            "F",
		})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "age")
		assert.Nil(t, engine.last, "invalid input never reaches the engine")
	})

	t.Run("engine", func(t *testing.T) {
		server := newTestServer(&stubEngine{err: errors.New("Invalid diagnosis code: ZZZ")})

		result, _, err := server.handleCalculateHCC(context.Background(), nil, CalculateHCCParams{
			DiagnosisCode: "ZZZ",
			Age:           70,
			Sex:           "M",
		})

		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "Invalid diagnosis code: ZZZ", resultText(t, result))
	})
}

func TestServer_InMemorySession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := newTestServer(&stubEngine{result: engineResult()})
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolCalculateRAF, ToolCalculateHCC}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: ToolCalculateRAF,
		Arguments: map[string]any{
			"diagnosis_codes": []string{"E119"},
			"age":             72,
			"sex":             "F",
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"risk_score_normalized":1.435`)
}

func TestServer_Resources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := newTestServer(&stubEngine{result: engineResult()})
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	profile, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: ResourceProfile})
	require.NoError(t, err)
	require.Len(t, profile.Contents, 1)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(profile.Contents[0].Text), &meta))
	assert.Equal(t, "CMS-HCC Model V28", meta["model"])
	assert.Equal(t, 1.045, meta["norm_factor"])

	label, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "raf://labels/condition/38"})
	require.NoError(t, err)
	require.Len(t, label.Contents, 1)
	assert.JSONEq(t,
		`{"kind":"condition","code":"38","label":"Diabetes with Glycemic, Unspecified, or No Complications"}`,
		label.Contents[0].Text)

	unknown, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "raf://labels/condition/XYZ"})
	require.NoError(t, err)
	assert.Contains(t, unknown.Contents[0].Text, registry.FallbackCondition)

	_, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "raf://labels/payer/38"})
	assert.Error(t, err)
}
