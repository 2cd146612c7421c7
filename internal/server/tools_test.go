package server

import (
	"context"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		toolSolveText,
		toolSolveImage,
		toolDetectGlyphs,
		toolBinarize,
		toolAnnotateGlyphs,
		toolOCR,
		toolJobStatus,
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema should list required properties")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %q is not defined", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := map[string]bool{
		toolSolveImage:     true,
		toolDetectGlyphs:   true,
		toolBinarize:       true,
		toolAnnotateGlyphs: true,
		toolOCR:            true,
	}

	for _, tool := range GetToolDefinitions() {
		required := tool.InputSchema["required"].([]string)
		hasPath := false
		for _, r := range required {
			if r == "path" {
				hasPath = true
			}
		}
		if hasPath != toolsRequiringPath[tool.Name] {
			t.Errorf("%s: requires path = %v, want %v", tool.Name, hasPath, toolsRequiringPath[tool.Name])
		}
	}
}

func TestHandleToolsList_JobStatusNeedsQueue(t *testing.T) {
	listed := func(s *Server) map[string]bool {
		resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
		if resp == nil || resp.Error != nil {
			t.Fatalf("tools/list failed: %+v", resp)
		}
		tools, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
		if !ok {
			t.Fatal("tools should be a slice of Tool")
		}
		names := make(map[string]bool)
		for _, tool := range tools {
			names[tool.Name] = true
		}
		return names
	}

	without := listed(New(nil))
	if without[toolJobStatus] {
		t.Error("math_job_status listed without a job queue")
	}
	if !without[toolSolveText] || len(without) != 6 {
		t.Errorf("got %v", without)
	}

	with := listed(New(nil, WithJobQueue(&fakeJobs{})))
	if !with[toolJobStatus] {
		t.Error("math_job_status missing with a job queue")
	}
}
