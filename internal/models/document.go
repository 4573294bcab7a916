package models

import (
	"time"
)

type DocumentKind string

const (
	KindCV                   DocumentKind = "cv"
	KindRecommendationLetter DocumentKind = "recommendation_letter"
	KindInterests            DocumentKind = "interests"
	KindJobDescription       DocumentKind = "job_description"
)

// DocumentKinds lists every accepted upload field, CV first.
var DocumentKinds = []DocumentKind{
	KindCV,
	KindRecommendationLetter,
	KindInterests,
	KindJobDescription,
}

func (k DocumentKind) Valid() bool {
	for _, kind := range DocumentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Label is the human readable name used in errors and prompts.
func (k DocumentKind) Label() string {
	switch k {
	case KindCV:
		return "CV"
	case KindRecommendationLetter:
		return "Recommendation letter"
	case KindInterests:
		return "Personal interests"
	case KindJobDescription:
		return "Job description"
	default:
		return string(k)
	}
}

// UploadedDocument is an upload after extraction. Raw bytes are not kept.
type UploadedDocument struct {
	Kind          DocumentKind `json:"kind"`
	Filename      string       `json:"filename"`
	DeclaredType  string       `json:"declared_type"`
	Size          int64        `json:"size"`
	ExtractedText string       `json:"-"`
	TextLength    int          `json:"text_length"`
	UploadedAt    time.Time    `json:"uploaded_at"`
}
