package ai

import (
	"strings"
	"testing"

	"instagram-agent-platform/internal/agent"
)

func TestParseCaptionResponse(t *testing.T) {
	res, err := ParseCaptionResponse(`{"caption": "Rise and shine.", "hashtags": ["#morning", "#focus"]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Caption != "Rise and shine." || len(res.Hashtags) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestParseCaptionResponseWithFences(t *testing.T) {
	raw := "```json\n{\"caption\": \"Hello there\", \"hashtags\": [\"#tag\"]}\n```"
	res, err := ParseCaptionResponse(raw)
	if err != nil {
		t.Fatalf("parse fenced response: %v", err)
	}
	if res.Caption != "Hello there" {
		t.Fatalf("caption = %q", res.Caption)
	}
}

func TestParseCaptionResponseLeadingProse(t *testing.T) {
	raw := "Sure! Here is the post:\n{\"caption\": \"A quiet win\", \"hashtags\": []}"
	res, err := ParseCaptionResponse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Caption != "A quiet win" {
		t.Fatalf("caption = %q", res.Caption)
	}
}

func TestParseCaptionResponseErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here",
		`{"caption": "", "hashtags": []}`,
		`{"caption": 42}`,
	} {
		if _, err := ParseCaptionResponse(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestBuildCaptionPrompt(t *testing.T) {
	prompt := buildCaptionPrompt(agent.CaptionRequest{
		Theme:        "morning routines",
		Tone:         "upbeat",
		CallToAction: "Follow for more",
	})
	for _, want := range []string{"morning routines", "upbeat", "Follow for more", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	noCTA := buildCaptionPrompt(agent.CaptionRequest{Theme: "t", Tone: "n"})
	if strings.Contains(noCTA, "call to action") {
		t.Fatal("prompt should omit the call-to-action line when unset")
	}
}
