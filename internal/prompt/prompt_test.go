package prompt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fileRef string

func (f fileRef) URL() string { return "file://" + string(f) }

func TestBuild_ImageThenText(t *testing.T) {
	got := Build("What is in this picture?", fileRef("/tmp/vision-1.png"))
	want := Message{
		Role: RoleUser,
		Parts: []Part{
			{Type: PartImageURL, ImageURL: "file:///tmp/vision-1.png"},
			{Type: PartText, Text: "What is in this picture?"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("describe", fileRef("/x.png"))
	b := Build("describe", fileRef("/x.png"))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("builds differ:\n%s", diff)
	}
}
