package domain

import (
	"testing"
)

func TestTypesExist(t *testing.T) {
	// Zero-value snapshot has every optional field unknown.
	snap := Snapshot{}
	if snap.Symbol != "" {
		t.Error("expected empty Symbol for zero-value Snapshot")
	}
	if snap.Profile != nil || snap.Quote != nil || snap.Metrics != nil {
		t.Error("expected nil Profile/Quote/Metrics for zero-value Snapshot")
	}
	if snap.Recommendation != nil || snap.Sentiment != nil {
		t.Error("expected nil Recommendation/Sentiment for zero-value Snapshot")
	}
	if len(snap.News) != 0 {
		t.Error("expected no News for zero-value Snapshot")
	}
	if !snap.Complete() {
		t.Error("zero-value Snapshot has no unavailable fields, want Complete() = true")
	}

	// Enum constants.
	if PolarityPositive != "positive" || PolarityNegative != "negative" {
		t.Error("Polarity constants have unexpected values")
	}
	if FieldQuote != "quote" {
		t.Errorf("FieldQuote = %q, want %q", FieldQuote, "quote")
	}
}

func TestFieldKindsOrder(t *testing.T) {
	want := []FieldKind{FieldProfile, FieldQuote, FieldMetrics, FieldRecommendation, FieldNews, FieldSentiment}
	if len(FieldKinds) != len(want) {
		t.Fatalf("len(FieldKinds) = %d, want %d", len(FieldKinds), len(want))
	}
	for i := range want {
		if FieldKinds[i] != want[i] {
			t.Errorf("FieldKinds[%d] = %q, want %q", i, FieldKinds[i], want[i])
		}
	}
}

func TestSentimentMentions(t *testing.T) {
	s := Sentiment{RedditMentions: 12, TwitterMentions: 9}
	if got := s.Mentions(); got != 21 {
		t.Errorf("Mentions() = %d, want 21", got)
	}
}

func TestSnapshotComplete(t *testing.T) {
	snap := Snapshot{Symbol: "AAPL", Unavailable: []FieldKind{FieldNews}}
	if snap.Complete() {
		t.Error("Complete() = true with an unavailable field, want false")
	}
}

func TestPointerHelpers(t *testing.T) {
	if *Float(1.5) != 1.5 {
		t.Error("Float helper returned wrong value")
	}
	if *Int(7) != 7 {
		t.Error("Int helper returned wrong value")
	}
	if *String("x") != "x" {
		t.Error("String helper returned wrong value")
	}
}
