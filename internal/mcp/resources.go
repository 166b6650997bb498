package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hcc-raf-server/internal/registry"
)

// Resource URIs exposed to MCP clients
const (
	ResourceProfile      = "raf://model/profile"
	ResourceLabelPattern = "raf://labels/{kind}/{code}"
	labelURIPrefix       = "raf://labels/"
)

// profileResource is the read-only view of the model-year profile
type profileResource struct {
	Model                      string         `json:"model"`
	Year                       int            `json:"year"`
	NormFactor                 float64        `json:"norm_factor"`
	NormFactorSource           string         `json:"norm_factor_source"`
	ExcludedInteractionMarkers []string       `json:"excluded_interaction_markers"`
	Labels                     registry.Stats `json:"labels"`
}

// labelResource is one resolved label
type labelResource struct {
	Kind  string `json:"kind"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// registerResources registers the profile resource and the label lookup template
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         ResourceProfile,
		Name:        "model-profile",
		Description: "Model name, payment year, normalization factor and label table sizes in use",
		MIMEType:    "application/json",
	}, s.handleProfileResource)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: ResourceLabelPattern,
		Name:        "label",
		Description: "Human-readable label for a condition, interaction or demographic code",
		MIMEType:    "application/json",
	}, s.handleLabelResource)

	s.logger.WithField("resource_count", 2).Info("Registered MCP resources")
}

func (s *Server) handleProfileResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p := s.calculator.Formatter().Profile()
	return jsonResource(req.Params.URI, profileResource{
		Model:                      p.Model,
		Year:                       p.Year,
		NormFactor:                 p.NormFactor,
		NormFactorSource:           p.NormFactorSource,
		ExcludedInteractionMarkers: p.ExcludedInteractionMarkers,
		Labels:                     p.Labels.Stats(),
	})
}

func (s *Server) handleLabelResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	kind, code, ok := strings.Cut(strings.TrimPrefix(uri, labelURIPrefix), "/")
	if !strings.HasPrefix(uri, labelURIPrefix) || !ok || code == "" {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	labels := s.calculator.Formatter().Profile().Labels
	var label string
	switch kind {
	case "condition":
		label = labels.Condition(code)
	case "interaction":
		label = labels.Interaction(code)
	case "demographic":
		label = labels.Demographic(code)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}

	return jsonResource(uri, labelResource{Kind: kind, Code: code, Label: label})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
