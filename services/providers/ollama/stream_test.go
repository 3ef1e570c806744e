package ollama

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/tidwall/gjson"
)

func collect(t *testing.T, input string) ([]chunk, error) {
	t.Helper()
	var chunks []chunk
	for c, err := range decodeChunks(strings.NewReader(input)) {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func TestDecodeChunks(t *testing.T) {
	input := "{\"response\":\"a\"}\n\n   \r\n{\"response\":\"b\",\"done\":true}\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Response != "a" || chunks[0].Done {
		t.Errorf("chunk 0 = %+v", chunks[0])
	}
	if chunks[1].Response != "b" || !chunks[1].Done {
		t.Errorf("chunk 1 = %+v", chunks[1])
	}
}

func TestDecodeChunks_StopsAtFirstError(t *testing.T) {
	chunks, err := collect(t, "{\"response\":\"a\"}\nnope\n{\"response\":\"b\"}\n")

	if !errors.Is(err, errMalformedChunk) {
		t.Fatalf("expected errMalformedChunk, got %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("got %d chunks before the error, want 1", len(chunks))
	}
}

func TestDecodeChunks_ConsumerBreak(t *testing.T) {
	seen := 0
	for c, err := range decodeChunks(strings.NewReader("{\"done\":true}\nnot json\n")) {
		if err != nil {
			t.Fatalf("decoder read past the consumer's break: %v", err)
		}
		seen++
		if c.Done {
			break
		}
	}
	if seen != 1 {
		t.Errorf("seen = %d, want 1", seen)
	}
}

func TestDecodeChunks_ReadError(t *testing.T) {
	r := io.MultiReader(strings.NewReader("{\"response\":\"a\"}\n"), iotest.ErrReader(io.ErrUnexpectedEOF))

	var got error
	for _, err := range decodeChunks(r) {
		if err != nil {
			got = err
		}
	}
	if !errors.Is(got, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", got)
	}
	if errors.Is(got, errMalformedChunk) {
		t.Error("read errors must not be reported as malformed chunks")
	}
}

func TestDecodeChunks_LineTooLong(t *testing.T) {
	long := `{"response":"` + strings.Repeat("x", maxLineSize) + `"}`

	_, err := collect(t, long)
	if !errors.Is(err, errMalformedChunk) {
		t.Errorf("expected errMalformedChunk for an oversized line, got %v", err)
	}
}

func TestParseChunk(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    chunk
		wantErr bool
	}{
		{"response only", `{"response":"hi"}`, chunk{Response: "hi"}, false},
		{"null response", `{"response":null,"done":false}`, chunk{}, false},
		{"error string", `{"error":"model not found"}`, chunk{Error: "model not found", HasError: true}, false},
		{"error object", `{"error":{"code":1}}`, chunk{Error: `{"code":1}`, HasError: true}, false},
		{"null error", `{"error":null}`, chunk{}, false},
		{"done true", `{"done":true}`, chunk{Done: true}, false},
		{"done false", `{"done":false}`, chunk{}, false},
		{"unknown fields ignored", `{"context":[1,2,3],"eval_count":9}`, chunk{}, false},
		{"non-string response", `{"response":42}`, chunk{}, true},
		{"array", `[1,2]`, chunk{}, true},
		{"invalid", `{"response":`, chunk{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChunk([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseChunk() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseChunk() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`1`, true},
		{`0`, false},
		{`"yes"`, true},
		{`""`, false},
		{`[1]`, true},
		{`[]`, false},
		{`{"a":1}`, true},
		{`{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := truthy(gjson.Parse(tt.raw)); got != tt.want {
				t.Errorf("truthy(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
