package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"alfredoptarigan/compliance-readiness/internal/compliance"
)

type fakeGemini struct {
	response  string
	err       error
	failTimes int
	calls     int
	delay     time.Duration
	embedding []float32
	prompts   []string
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.prompts = append(f.prompts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func (f *fakeGemini) GenerateStringList(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.calls <= f.failTimes {
		return "", errors.New("transient")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGemini) GenerateStringListWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	return withRetry(ctx, maxRetries, func() (string, error) {
		return f.GenerateStringList(ctx, prompt)
	})
}

func TestPlaceRecognizer_RecognizePlaces(t *testing.T) {
	tests := []struct {
		name     string
		gemini   *fakeGemini
		want     []string
		wantErr  bool
		retries  int
		wantCall int
	}{
		{
			name:     "json array",
			gemini:   &fakeGemini{response: `["Doha", "State of Qatar", " "]`},
			want:     []string{"Doha", "State of Qatar"},
			retries:  1,
			wantCall: 1,
		},
		{
			name:     "fenced response",
			gemini:   &fakeGemini{response: "```json\n[\"Ireland\"]\n```"},
			want:     []string{"Ireland"},
			retries:  1,
			wantCall: 1,
		},
		{
			name:     "retries transient failures",
			gemini:   &fakeGemini{response: `["Dubai"]`, failTimes: 2},
			want:     []string{"Dubai"},
			retries:  3,
			wantCall: 3,
		},
		{
			name:     "gives up after retries",
			gemini:   &fakeGemini{err: errors.New("quota")},
			wantErr:  true,
			retries:  2,
			wantCall: 2,
		},
		{
			name:     "not an array",
			gemini:   &fakeGemini{response: `{"places": "Qatar"}`},
			wantErr:  true,
			retries:  1,
			wantCall: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPlaceRecognizer(tt.gemini, time.Second, tt.retries)
			got, err := r.RecognizePlaces("Servers are in Doha.")
			if (err != nil) != tt.wantErr {
				t.Fatalf("RecognizePlaces() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RecognizePlaces() = %v, want %v", got, tt.want)
			}
			if tt.gemini.calls != tt.wantCall {
				t.Errorf("calls = %d, want %d", tt.gemini.calls, tt.wantCall)
			}
		})
	}
}

func TestPlaceRecognizer_EmptyTextSkipsModel(t *testing.T) {
	g := &fakeGemini{response: `["Qatar"]`}
	got, err := NewPlaceRecognizer(g, time.Second, 1).RecognizePlaces("   ")
	if err != nil || got != nil {
		t.Errorf("RecognizePlaces(blank) = (%v, %v), want (nil, nil)", got, err)
	}
	if g.calls != 0 {
		t.Errorf("calls = %d, want 0", g.calls)
	}
}

func TestPlaceRecognizer_Timeout(t *testing.T) {
	g := &fakeGemini{response: `["Qatar"]`, delay: time.Second}
	start := time.Now()

	_, err := NewPlaceRecognizer(g, 20*time.Millisecond, 3).RecognizePlaces("Hosted in Doha.")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("RecognizePlaces took %v, want it bounded by the timeout", elapsed)
	}
}

func TestPlaceRecognizer_EnrichesExtraction(t *testing.T) {
	g := &fakeGemini{response: `["Doha, State of Qatar", "Abu Dhabi, UAE"]`}
	ex := compliance.NewExtractor(NewPlaceRecognizer(g, time.Second, 1))

	p := ex.Extract("Primary servers sit in Doha with a replica in Abu Dhabi.")
	want := []string{compliance.LocationQatar, compliance.LocationUAE}
	if !reflect.DeepEqual(p.DataStorageLocation, want) {
		t.Errorf("DataStorageLocation = %v, want %v", p.DataStorageLocation, want)
	}
}

func TestPromptBuilder_PlaceRecognitionPromptTruncates(t *testing.T) {
	long := strings.Repeat("a", maxPromptDocumentChars+500)
	prompt := NewPromptBuilder().BuildPlaceRecognitionPrompt(long)
	if strings.Count(prompt, "a") > maxPromptDocumentChars+200 {
		t.Error("document text was not truncated")
	}
	if !strings.Contains(prompt, "JSON array") {
		t.Error("prompt does not ask for a JSON array")
	}
}

func TestPromptBuilder_PlaceRecognitionPromptKeepsRunesWhole(t *testing.T) {
	text := "a" + strings.Repeat("é", maxPromptDocumentChars)
	prompt := NewPromptBuilder().BuildPlaceRecognitionPrompt(text)
	if !utf8.ValidString(prompt) {
		t.Error("truncation split a multi-byte rune")
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"cut inside rune backs off", "aéb", 2, "a"},
		{"cut after rune", "aéb", 3, "aé"},
		{"cut inside first rune", "日本", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateUTF8(tt.in, tt.n); got != tt.want {
				t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestPromptBuilder_RegulationQuery(t *testing.T) {
	pb := NewPromptBuilder()
	if got := pb.BuildRegulationQuery("AoA Submission", ""); got != "Regulatory requirements for AoA Submission" {
		t.Errorf("query = %q", got)
	}
	if got := pb.BuildRegulationQuery("Capital Shortfall", "Article 1.2.2"); got != "Capital Shortfall: Article 1.2.2" {
		t.Errorf("query = %q", got)
	}
}

func TestParseJSONArray(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{`[]`, []string{}, false},
		{`Here you go: ["Qatar"] hope it helps`, []string{"Qatar"}, false},
		{`no array`, nil, true},
		{`[1, 2]`, nil, true},
	}
	for _, tt := range tests {
		got, err := parseJSONArray(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseJSONArray(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseJSONArray(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
