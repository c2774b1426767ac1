package ops

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/yuin/goldmark"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	Kind record.Kind
	ID   string

	// RenderMarkdown adds the description rendered as HTML.
	RenderMarkdown bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	Record          record.Record
	DescriptionHTML string
}

// MarshalJSON flattens the record and adds descriptionHtml when rendered.
func (o FetchOutput) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(o.Record)
	if err != nil {
		return nil, err
	}
	if o.DescriptionHTML == "" {
		return data, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["descriptionHtml"] = o.DescriptionHTML
	return json.Marshal(fields)
}

// Fetch returns one record by id. Like List, an unreadable collection reads
// as empty, so the record is reported not found.
func Fetch(ctx context.Context, backend store.Backend, input FetchInput) (*FetchOutput, error) {
	spec, err := resolveSpec(input.Kind)
	if err != nil {
		return nil, err
	}
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	records := loadSoft(ctx, backend, spec)
	i := indexOf(records, input.ID)
	if i < 0 {
		return nil, errors.NewNotFound(spec.Label, input.ID)
	}

	output := &FetchOutput{Record: records[i]}
	if input.RenderMarkdown && output.Record.Description != "" {
		html, err := RenderMarkdown(output.Record.Description)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		output.DescriptionHTML = html
	}
	return output, nil
}

// RenderMarkdown converts markdown to HTML. Raw HTML in the source is omitted.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
