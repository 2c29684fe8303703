package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Client frame actions.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
)

// clientFrameSchema describes every frame a client may send.
const clientFrameSchema = `{
  "type": "object",
  "required": ["event", "room"],
  "properties": {
    "event": {"type": "string", "enum": ["join", "leave", "typing:start", "typing:stop"]},
    "room": {"type": "string", "pattern": "^(question|conversation):[0-9]+$"}
  }
}`

// ClientFrame is an inbound room or typing request.
type ClientFrame struct {
	Event string `json:"event"`
	Room  string `json:"room"`
}

// FrameValidator checks raw client frames against clientFrameSchema.
type FrameValidator struct {
	schema *jsonschema.Schema
}

func NewFrameValidator() (*FrameValidator, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(clientFrameSchema), rs); err != nil {
		return nil, fmt.Errorf("compile client frame schema: %w", err)
	}
	// The schema registers itself on first validation; do that here so
	// concurrent readers only ever see a registered schema.
	v := &FrameValidator{schema: rs}
	if _, err := v.Parse(context.Background(), []byte(`{"event":"join","room":"question:1"}`)); err != nil {
		return nil, fmt.Errorf("check client frame schema: %w", err)
	}
	return v, nil
}

// Parse validates raw and decodes it.
func (v *FrameValidator) Parse(ctx context.Context, raw []byte) (ClientFrame, error) {
	var f ClientFrame
	verrs, err := v.schema.ValidateBytes(ctx, raw)
	if err != nil {
		return f, fmt.Errorf("invalid frame: %w", err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, e.Error())
		}
		return f, fmt.Errorf("invalid frame: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, fmt.Errorf("invalid frame: %w", err)
	}
	return f, nil
}
