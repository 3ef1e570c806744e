package ollama

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/tidwall/gjson"
)

// maxLineSize bounds a single NDJSON line
const maxLineSize = 4 * 1024 * 1024

// errMalformedChunk marks a line that is not a JSON object
var errMalformedChunk = errors.New("malformed stream chunk")

// chunk is one decoded line of the /generate NDJSON stream
type chunk struct {
	Response string
	Error    string
	HasError bool
	Done     bool
}

// decodeChunks lazily decodes the NDJSON stream in r, one object per line.
// Blank lines are skipped. The sequence ends after the first error, which
// is yielded together with a zero chunk; it cannot be restarted.
func decodeChunks(r io.Reader) iter.Seq2[chunk, error] {
	return func(yield func(chunk, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			c, err := parseChunk(line)
			if !yield(c, err) || err != nil {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = fmt.Errorf("%w: line exceeds %d bytes", errMalformedChunk, maxLineSize)
			}
			yield(chunk{}, err)
		}
	}
}

// parseChunk decodes one line. Only "response", "error" and "done" are
// inspected; other fields (timings, context) are ignored.
func parseChunk(line []byte) (chunk, error) {
	if !gjson.ValidBytes(line) {
		return chunk{}, fmt.Errorf("%w: invalid JSON %q", errMalformedChunk, truncate(string(line), 200))
	}

	obj := gjson.ParseBytes(line)
	if !obj.IsObject() {
		return chunk{}, fmt.Errorf("%w: expected object, got %s", errMalformedChunk, obj.Type)
	}

	fields := obj.Map()

	var c chunk
	if resp, ok := fields["response"]; ok && resp.Type != gjson.Null {
		if resp.Type != gjson.String {
			return chunk{}, fmt.Errorf("%w: response is %s, not a string", errMalformedChunk, resp.Type)
		}
		c.Response = resp.Str
	}
	if errField, ok := fields["error"]; ok && errField.Type != gjson.Null {
		c.HasError = true
		c.Error = errField.String()
	}
	if done, ok := fields["done"]; ok {
		c.Done = truthy(done)
	}
	return c, nil
}

// truthy follows JSON-to-boolean coercion: false, null, 0, "" and empty
// containers are false.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		return (v.IsArray() && len(v.Array()) > 0) || (v.IsObject() && len(v.Map()) > 0)
	default:
		return false
	}
}

// truncate limits a string to maxLen characters for error output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
