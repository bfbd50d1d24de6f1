package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToggle_Involutive(t *testing.T) {
	sets := []TagSet{NewTagSet(), NewTagSet("Organic"), NewTagSet("Organic", "Free Range")}
	for _, s := range sets {
		for _, tag := range []string{"Organic", "Grass Fed"} {
			got := Toggle(Toggle(s, tag), tag)
			if !got.Equal(s) {
				t.Errorf("toggle twice %q on %v = %v", tag, s.Sorted(), got.Sorted())
			}
		}
	}
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	in := NewTagSet("Organic")
	out := Toggle(in, "Free Range")
	if in.Has("Free Range") {
		t.Error("input set was mutated")
	}
	if !out.Has("Free Range") || !out.Has("Organic") {
		t.Errorf("out = %v", out.Sorted())
	}
	out = Toggle(in, "Organic")
	if !in.Has("Organic") {
		t.Error("input set lost a member")
	}
	if out.Len() != 0 {
		t.Errorf("out = %v, want empty", out.Sorted())
	}
}

func TestToggle_ZeroValue(t *testing.T) {
	var s TagSet
	got := Toggle(s, "Organic")
	if !got.Has("Organic") || got.Len() != 1 {
		t.Errorf("got %v", got.Sorted())
	}
}

func TestNewTagSet_Dedup(t *testing.T) {
	s := NewTagSet("Organic", "Organic", "", "Free Range")
	if diff := cmp.Diff([]string{"Free Range", "Organic"}, s.Sorted()); diff != "" {
		t.Errorf("Sorted mismatch (-want +got):\n%s", diff)
	}
}

func TestTagSet_Ordered(t *testing.T) {
	s := NewTagSet("Zucchini", "Organic", "Free Range")
	got := s.Ordered(DefaultVocabulary)
	want := []string{"Organic", "Free Range", "Zucchini"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ordered mismatch (-want +got):\n%s", diff)
	}
}

func TestTagSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewTagSet("b", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("json = %s", data)
	}
	var s TagSet
	if err := json.Unmarshal([]byte(`["x","x","y"]`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
	if err := json.Unmarshal([]byte(`null`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("null should decode to empty set, got %v", s.Sorted())
	}
}
