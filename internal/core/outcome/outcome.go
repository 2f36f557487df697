// Package outcome ties one backend result to its classification and, for
// successful results, the display model.
package outcome

import (
	"github.com/kirillkom/docresult-viewer/internal/core/classifier"
	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
)

type Outcome struct {
	Result         domain.UploadResult      `json:"-"`
	FileID         string                   `json:"fileId,omitempty"`
	Classification domain.Classification    `json:"classification"`
	View           *normalizer.DisplayModel `json:"view,omitempty"`
	Remediation    *classifier.Remediation  `json:"remediation,omitempty"`
}

// Build classifies the result and normalizes it only when it is a success.
func Build(result domain.UploadResult, backendURL string) Outcome {
	cls := classifier.Classify(result)
	out := Outcome{
		Result:         result,
		FileID:         result.FileID(),
		Classification: cls,
		Remediation:    classifier.Remediate(cls, backendURL),
	}
	if cls.State == domain.StateSuccess {
		view := normalizer.Normalize(result.Document)
		out.View = &view
	}
	return out
}

func (o Outcome) Succeeded() bool {
	return o.Classification.State == domain.StateSuccess && o.View != nil
}

func (o Outcome) Pending() bool {
	return o.Classification.State == domain.StatePending
}

// Event summarizes the outcome for publication.
func (o Outcome) Event(fileID string) domain.ResultClassifiedEvent {
	ev := domain.ResultClassifiedEvent{
		FileID:  fileID,
		State:   o.Classification.State,
		Kind:    o.Classification.Kind,
		Message: o.Classification.Message,
	}
	if doc := o.Result.Document; doc != nil {
		ev.Category = doc.Category
		ev.ConfidenceScore = doc.ConfidenceScore
	}
	if o.View != nil {
		for _, g := range o.View.EntityGroups {
			ev.EntityCount += g.Count()
		}
		ev.TableCount = len(o.View.Tables)
	}
	return ev
}
