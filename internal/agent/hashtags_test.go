package agent

import (
	"reflect"
	"testing"
)

func TestMergeHashtagsOrderAndDedup(t *testing.T) {
	got := MergeHashtags(
		[]string{"#Motivation", "#daily"},
		[]string{"#motivation", "#Focus", "#daily", "#focus", "#new"},
	)
	want := []string{"#Motivation", "#daily", "#Focus", "#new"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged = %v, want %v", got, want)
	}
}

func TestMergeHashtagsCleansInput(t *testing.T) {
	got := MergeHashtags(
		[]string{"  creators ", "", "#"},
		[]string{" #DailyInspo"},
	)
	want := []string{"#creators", "#DailyInspo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged = %v, want %v", got, want)
	}
}

func TestMergeHashtagsEmptyInputs(t *testing.T) {
	if got := MergeHashtags(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %v", got)
	}
}

func TestRenderCaption(t *testing.T) {
	got := RenderCaption("Rise and shine.\n", []string{"#morning", "#focus"})
	want := "Rise and shine.\n\n#morning #focus"
	if got != want {
		t.Fatalf("caption = %q, want %q", got, want)
	}

	if got := RenderCaption("Plain caption", nil); got != "Plain caption" {
		t.Fatalf("caption without hashtags = %q", got)
	}
}
