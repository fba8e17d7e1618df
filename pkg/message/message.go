// Package message defines the content-part and tool-call model shared by the
// wire, tooling, and MCP layers. Content parts may arrive as complete units
// or as streaming fragments; fragments of the same logical item can be
// coalesced with MergeInPlace.
package message

import (
	"encoding/json"
	"fmt"
)

// Part is a single piece of model-produced content.
type Part interface {
	isPart()
	MessageType() string
}

// Mergeable is implemented by messages whose consecutive streaming fragments
// can be accumulated into one message. MergeInPlace returns false when the
// merge does not apply, which is a normal outcome, not an error: two adjacent
// fragments of the same kind may still be structurally unmergeable.
type Mergeable interface {
	MergeInPlace(other Mergeable) bool
	// Clone returns a copy safe to mutate without affecting other consumers
	// of the original message.
	Clone() Mergeable
}

type TextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewTextPart(text string) *TextPart {
	return &TextPart{Type: "text", Text: text}
}

func (p *TextPart) isPart()             {}
func (p *TextPart) MessageType() string { return "TextPart" }

func (p *TextPart) MergeInPlace(other Mergeable) bool {
	o, ok := other.(*TextPart)
	if !ok {
		return false
	}
	p.Text += o.Text
	return true
}

func (p *TextPart) Clone() Mergeable {
	c := *p
	return &c
}

// ThinkPart carries a fragment of the model's thinking stream.
type ThinkPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewThinkPart(text string) *ThinkPart {
	return &ThinkPart{Type: "think", Text: text}
}

func (p *ThinkPart) isPart()             {}
func (p *ThinkPart) MessageType() string { return "ThinkPart" }

func (p *ThinkPart) MergeInPlace(other Mergeable) bool {
	o, ok := other.(*ThinkPart)
	if !ok {
		return false
	}
	p.Text += o.Text
	return true
}

func (p *ThinkPart) Clone() Mergeable {
	c := *p
	return &c
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageURLPart struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

func NewImageURLPart(url string) *ImageURLPart {
	return &ImageURLPart{Type: "image_url", ImageURL: ImageURL{URL: url}}
}

func (p *ImageURLPart) isPart()             {}
func (p *ImageURLPart) MessageType() string { return "ImageURLPart" }

// MergeInPlace never applies: two adjacent image parts are distinct items,
// a URL cannot be accumulated from fragments.
func (p *ImageURLPart) MergeInPlace(Mergeable) bool { return false }

func (p *ImageURLPart) Clone() Mergeable {
	c := *p
	return &c
}

type AudioURL struct {
	URL string `json:"url"`
}

type AudioURLPart struct {
	Type     string   `json:"type"`
	AudioURL AudioURL `json:"audio_url"`
}

func NewAudioURLPart(url string) *AudioURLPart {
	return &AudioURLPart{Type: "audio_url", AudioURL: AudioURL{URL: url}}
}

func (p *AudioURLPart) isPart()             {}
func (p *AudioURLPart) MessageType() string { return "AudioURLPart" }

// MergeInPlace never applies, same as for ImageURLPart.
func (p *AudioURLPart) MergeInPlace(Mergeable) bool { return false }

func (p *AudioURLPart) Clone() Mergeable {
	c := *p
	return &c
}

// Parts is a polymorphic list of content parts with JSON support.
type Parts []Part

func (ps *Parts) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Parts, 0, len(raws))
	for _, raw := range raws {
		part, err := UnmarshalPart(raw)
		if err != nil {
			return err
		}
		out = append(out, part)
	}
	*ps = out
	return nil
}

// UnmarshalPart decodes a single content part by its "type" discriminator.
func UnmarshalPart(data []byte) (Part, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var part Part
	switch head.Type {
	case "text":
		part = &TextPart{}
	case "think":
		part = &ThinkPart{}
	case "image_url":
		part = &ImageURLPart{}
	case "audio_url":
		part = &AudioURLPart{}
	default:
		return nil, fmt.Errorf("unknown content part type: %q", head.Type)
	}
	if err := json.Unmarshal(data, part); err != nil {
		return nil, err
	}
	return part, nil
}
