package service

import "testing"

func TestTranscriptAccuracyPerfectMatch(t *testing.T) {
	got := TranscriptAccuracy("The cat sat on the mat", "The cat sat on the mat")
	if got != 100 {
		t.Fatalf("accuracy = %v, want 100", got)
	}
}

func TestTranscriptAccuracyIgnoresCaseAndPunctuation(t *testing.T) {
	got := TranscriptAccuracy("the cat sat, on the mat!", "The cat sat on the mat.")
	if got != 100 {
		t.Fatalf("accuracy = %v, want 100", got)
	}
}

func TestTranscriptAccuracyEmptyInputs(t *testing.T) {
	if got := TranscriptAccuracy("", "some text"); got != 0 {
		t.Fatalf("empty transcript: %v", got)
	}
	if got := TranscriptAccuracy("some text", ""); got != 0 {
		t.Fatalf("empty expected: %v", got)
	}
	if got := TranscriptAccuracy("   ", "text"); got != 0 {
		t.Fatalf("blank transcript: %v", got)
	}
}

func TestTranscriptAccuracyOrdering(t *testing.T) {
	expected := "once upon a time there was a little red hen"

	close := TranscriptAccuracy("once upon a time there was a little hen", expected)
	far := TranscriptAccuracy("the quick brown fox jumps over the lazy dog", expected)

	if close <= far {
		t.Fatalf("closer reading scored %v, farther %v", close, far)
	}
	if close <= 0 || close >= 100 {
		t.Fatalf("partial match should be strictly between 0 and 100, got %v", close)
	}
}
