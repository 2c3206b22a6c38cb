package render

import (
	"encoding/json"
	"io"

	"traffic-monitor/internal/traffic"
)

// JSON writes one object per tick.
type JSON struct {
	enc *json.Encoder
}

func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSON{enc: enc}
}

func (j *JSON) Render(f traffic.Frame) error {
	return j.enc.Encode(f.Record())
}

func (j *JSON) Close() error {
	return nil
}
