package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hcc-raf-server/internal/domain"
)

const engineResponse = `{
	"model_name": "CMS-HCC Model V28",
	"risk_score": 1.5,
	"risk_score_demographics": 0.396,
	"coefficients": {"38": 0.166, "226": 0.36, "DIABETES_HF_V28": 0.112, "F70_74": 0.396},
	"hcc_list": ["226", "38"],
	"cc_to_dx": {"38": ["E119"], "226": ["I509"]},
	"interactions": {"DIABETES_HF_V28": 1, "HF_KIDNEY_V28": 0},
	"demographics": {"category": "F70_74", "fbd": true, "pbd": false}
}`

func testEngineRequest() *domain.EngineRequest {
	return &domain.EngineRequest{
		DiagnosisCodes: []string{"E119", "I509"},
		ModelName:      "CMS-HCC Model V28",
		Age:            72,
		Sex:            "F",
		DualElgblCd:    "02",
	}
}

func TestHTTPClient_Calculate(t *testing.T) {
	t.Run("Successful_Response", func(t *testing.T) {
		var received map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/calculate", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(engineResponse))
		}))
		defer server.Close()

		client := NewHTTPClient(Config{BaseURL: server.URL + "/", Timeout: 5 * time.Second})

		result, err := client.Calculate(context.Background(), testEngineRequest())

		require.NoError(t, err)
		assert.Equal(t, 1.5, result.RiskScore)
		assert.Equal(t, []string{"226", "38"}, result.ConditionList)
		assert.Equal(t, "DIABETES_HF_V28", result.Interactions[0].Code)
		assert.True(t, result.Demographics.FullBenefitDual)

		assert.Equal(t, "02", received["dual_elgbl_cd"])
		assert.NotContains(t, received, "orec")
		assert.NotContains(t, received, "crec")
	})

	t.Run("Engine_Rejects_Input", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error": "Invalid sex: X"}`))
		}))
		defer server.Close()

		client := NewHTTPClient(Config{BaseURL: server.URL})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		require.Error(t, err)
		var engineErr *Error
		require.ErrorAs(t, err, &engineErr)
		assert.Equal(t, "Invalid sex: X", engineErr.Error())
		assert.True(t, engineErr.IsClientError())
	})

	t.Run("Plain_Text_Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewHTTPClient(Config{BaseURL: server.URL})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		var engineErr *Error
		require.ErrorAs(t, err, &engineErr)
		assert.Equal(t, "upstream exploded", engineErr.Message)
		assert.False(t, engineErr.IsClientError())
		assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
	})

	t.Run("Engine_Raises", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "Unknown model: V99"}`))
		}))
		defer server.Close()

		client := NewHTTPClient(Config{BaseURL: server.URL})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		require.Error(t, err)
		assert.Equal(t, "Unknown model: V99", err.Error())
		assert.NotErrorIs(t, err, domain.ErrEngineUnavailable)
	})

	t.Run("Unreachable_Engine", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		baseURL := server.URL
		server.Close()

		client := NewHTTPClient(Config{BaseURL: baseURL, Timeout: 2 * time.Second})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
	})

	t.Run("Engine_Timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewHTTPClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
	})

	t.Run("Malformed_Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"interactions": {"D1": "yes"}}`))
		}))
		defer server.Close()

		client := NewHTTPClient(Config{BaseURL: server.URL})

		_, err := client.Calculate(context.Background(), testEngineRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode engine response")
	})

	t.Run("Cancelled_Context", func(t *testing.T) {
		client := NewHTTPClient(Config{BaseURL: "http://127.0.0.1:0"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Calculate(ctx, testEngineRequest())

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrEngineUnavailable)
	})
}

// MockRiskEngine is a mock implementation of the RiskEngine interface
type MockRiskEngine struct {
	mock.Mock
}

func (m *MockRiskEngine) Calculate(ctx context.Context, req *domain.EngineRequest) (*domain.RawModelResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawModelResult), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

func TestResilientClient(t *testing.T) {
	ctx := context.Background()
	config := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}

	t.Run("Opens_After_Engine_Failures", func(t *testing.T) {
		engine := new(MockRiskEngine)
		engine.On("Calculate", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

		client := NewResilientClient(engine, config, quietLogger())

		for i := 0; i < 2; i++ {
			_, err := client.Calculate(ctx, testEngineRequest())
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrEngineUnavailable)
		}

		assert.Equal(t, gobreaker.StateOpen, client.State())

		_, err := client.Calculate(ctx, testEngineRequest())
		assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
		engine.AssertNumberOfCalls(t, "Calculate", 2)
	})

	t.Run("Rejected_Input_Does_Not_Trip", func(t *testing.T) {
		engine := new(MockRiskEngine)
		engine.On("Calculate", ctx, mock.Anything).Return(nil, &Error{StatusCode: http.StatusBadRequest, Message: "Invalid age"})

		client := NewResilientClient(engine, config, quietLogger())

		for i := 0; i < 5; i++ {
			_, err := client.Calculate(ctx, testEngineRequest())
			require.Error(t, err)
			assert.Equal(t, "Invalid age", err.Error())
		}

		assert.Equal(t, gobreaker.StateClosed, client.State())
		assert.Equal(t, uint32(0), client.Counts().TotalFailures)
	})

	t.Run("Cancelled_Callers_Do_Not_Trip", func(t *testing.T) {
		engine := new(MockRiskEngine)
		engine.On("Calculate", ctx, mock.Anything).Return(nil, fmt.Errorf("engine request failed: %w", context.Canceled))

		client := NewResilientClient(engine, config, quietLogger())

		for i := 0; i < 5; i++ {
			_, err := client.Calculate(ctx, testEngineRequest())
			require.ErrorIs(t, err, context.Canceled)
		}

		assert.Equal(t, gobreaker.StateClosed, client.State())
		assert.Equal(t, uint32(0), client.Counts().TotalFailures)
		engine.AssertNumberOfCalls(t, "Calculate", 5)
	})

	t.Run("Passes_Results_Through", func(t *testing.T) {
		want := &domain.RawModelResult{RiskScore: 0.5}
		engine := new(MockRiskEngine)
		engine.On("Calculate", ctx, mock.Anything).Return(want, nil)

		client := NewResilientClient(engine, BreakerConfig{}, quietLogger())

		got, err := client.Calculate(ctx, testEngineRequest())

		require.NoError(t, err)
		assert.Same(t, want, got)
	})
}
