package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"goat/internal/diag"
	"goat/internal/source"
)

func TestToJSONFields(t *testing.T) {
	fs, id := fixtureSet(t)
	bag := fixtureBag(id)

	out := ToJSON(bag, fs, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	})
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("Expected 2 diagnostics, got count=%d len=%d", out.Count, len(out.Diagnostics))
	}

	first := out.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "GOAT1001" || first.Kind != "MissingVisibilityModifier" {
		t.Errorf("Expected ERROR GOAT1001 MissingVisibilityModifier, got %s %s %s",
			first.Severity, first.Code, first.Kind)
	}
	loc := first.Location
	if loc.File != "main.goat" || loc.StartByte != 4 || loc.EndByte != 9 {
		t.Errorf("Expected main.goat bytes 4-9, got %s %d-%d", loc.File, loc.StartByte, loc.EndByte)
	}
	if loc.StartLine != 1 || loc.StartCol != 5 {
		t.Errorf("Expected position 1:5, got %d:%d", loc.StartLine, loc.StartCol)
	}
	if len(first.Notes) != 1 || first.Notes[0].Message != "previous declaration here" {
		t.Errorf("Expected the note carried over, got %+v", first.Notes)
	}
}

func TestToJSONOmitsExtras(t *testing.T) {
	fs, id := fixtureSet(t)
	out := ToJSON(fixtureBag(id), fs, JSONOpts{})

	first := out.Diagnostics[0]
	if first.Notes != nil {
		t.Error("Expected notes dropped without IncludeNotes")
	}
	if first.Location.StartLine != 0 || first.Location.StartCol != 0 {
		t.Error("Expected no positions without IncludePositions")
	}
}

func TestToJSONMaxTruncates(t *testing.T) {
	fs, id := fixtureSet(t)
	out := ToJSON(fixtureBag(id), fs, JSONOpts{Max: 1})
	if len(out.Diagnostics) != 1 {
		t.Errorf("Expected truncation to 1 diagnostic, got %d", len(out.Diagnostics))
	}
	if out.Count != 2 {
		t.Errorf("Expected the count to report the full bag, got %d", out.Count)
	}
}

func TestToJSONEmptyBag(t *testing.T) {
	fs, _ := fixtureSet(t)
	out := ToJSON(diag.NewBag(10), fs, JSONOpts{})
	if out.Count != 0 || out.Diagnostics == nil || len(out.Diagnostics) != 0 {
		t.Errorf("Expected an empty but present diagnostics array, got %+v", out)
	}
}

func TestJSONWriterRoundTrips(t *testing.T) {
	fs, id := fixtureSet(t)
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.MissingVisibilityModifier,
		source.Span{File: id, Start: 4, End: 9}, "boom"))

	var sb strings.Builder
	if err := JSON(&sb, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Expected the encode to succeed, got %v", err)
	}
	var back DiagnosticsOutput
	if err := json.Unmarshal([]byte(sb.String()), &back); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if back.Count != 1 || back.Diagnostics[0].Message != "boom" {
		t.Errorf("Expected the finding back, got %+v", back)
	}
}
