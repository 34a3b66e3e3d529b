package models

import (
	"encoding/json"
	"fmt"
)

// Kind identifies a payload variant.
type Kind string

const (
	KindUnknown    Kind = ""
	KindFlashcard  Kind = "flashcard"
	KindCloze      Kind = "cloze"
	KindImageCloze Kind = "image_cloze"
	KindQuiz       Kind = "quiz"
	KindFile       Kind = "file"
)

// Kinds lists every known variant.
var Kinds = []Kind{KindFlashcard, KindCloze, KindImageCloze, KindQuiz, KindFile}

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Payload is the variant-specific content of an item. The set of implementations is
// closed: only types in this package satisfy it.
type Payload interface {
	Kind() Kind
	clonePayload() Payload
}

type Flashcard struct {
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back" yaml:"back"`
}

func (Flashcard) Kind() Kind              { return KindFlashcard }
func (p Flashcard) clonePayload() Payload { return p }

// Cloze hides each of Deletions inside Text.
type Cloze struct {
	Text      string   `json:"text" yaml:"text"`
	Deletions []string `json:"deletions" yaml:"deletions"`
}

func (Cloze) Kind() Kind { return KindCloze }
func (p Cloze) clonePayload() Payload {
	p.Deletions = append([]string(nil), p.Deletions...)
	return p
}

// Area is a rectangle over an image, in pixels.
type Area struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ImageCloze masks Areas of the image at ImagePath. Only the path is stored.
type ImageCloze struct {
	ImagePath string `json:"image_path" yaml:"image_path"`
	Areas     []Area `json:"areas" yaml:"areas"`
}

func (ImageCloze) Kind() Kind { return KindImageCloze }
func (p ImageCloze) clonePayload() Payload {
	p.Areas = append([]Area(nil), p.Areas...)
	return p
}

type Quiz struct {
	Question string   `json:"question" yaml:"question"`
	Answers  []string `json:"answers" yaml:"answers"`
	Correct  int      `json:"correct" yaml:"correct"`
}

func (Quiz) Kind() Kind { return KindQuiz }
func (p Quiz) clonePayload() Payload {
	p.Answers = append([]string(nil), p.Answers...)
	return p
}

// FileReference points at an external document to revisit.
type FileReference struct {
	Path string `json:"path" yaml:"path"`
}

func (FileReference) Kind() Kind              { return KindFile }
func (p FileReference) clonePayload() Payload { return p }

// DecodePayload decodes JSON data into the payload variant named by kind.
func DecodePayload(kind Kind, data []byte) (Payload, error) {
	switch kind {
	case KindFlashcard:
		var p Flashcard
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	case KindCloze:
		var p Cloze
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	case KindImageCloze:
		var p ImageCloze
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	case KindQuiz:
		var p Quiz
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	case KindFile:
		var p FileReference
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}
