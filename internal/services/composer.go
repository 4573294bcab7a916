package services

import (
	"strings"

	"alfredoptarigan/candidate-assistant/internal/models"
)

// NoInfoPlaceholder stands in for an optional document that was not uploaded.
const NoInfoPlaceholder = "No info available"

const systemPreamble = `You are an expert assistant who helps recruiters see the potential of the candidate whose CV is attached.
Using the information provided, you will help recruiters understand the candidate's qualities and their potential for the position, when the position is known.
If the role the candidate is applying for is unknown, simply assess their competences for any position in general.
Be concise, rigorous, fair and constructive in your feedback.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSystemInstruction assembles the preamble and one labelled section per
// document. Optional sections are always present.
func (pb *PromptBuilder) BuildSystemInstruction(cvText, recommendationLetter, interests, jobDescription string) string {
	var b strings.Builder

	b.WriteString(systemPreamble)
	writeSection(&b, models.KindCV.Label(), cvText)
	writeSection(&b, models.KindRecommendationLetter.Label(), orPlaceholder(recommendationLetter))
	writeSection(&b, models.KindInterests.Label(), orPlaceholder(interests))
	writeSection(&b, models.KindJobDescription.Label(), orPlaceholder(jobDescription))

	return b.String()
}

// BuildFromDocuments composes from whatever the session currently holds.
func (pb *PromptBuilder) BuildFromDocuments(docs map[models.DocumentKind]*models.UploadedDocument) string {
	text := func(kind models.DocumentKind) string {
		if doc, ok := docs[kind]; ok && doc != nil {
			return doc.ExtractedText
		}
		return ""
	}

	return pb.BuildSystemInstruction(
		text(models.KindCV),
		text(models.KindRecommendationLetter),
		text(models.KindInterests),
		text(models.KindJobDescription),
	)
}

func writeSection(b *strings.Builder, label, body string) {
	b.WriteString("\n\n")
	b.WriteString(label)
	b.WriteString(":\n")
	b.WriteString(body)
}

func orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoInfoPlaceholder
	}
	return text
}
