package llm

import (
	"context"
	"log/slog"

	"github.com/nikogura/suture-assessor/pkg/assessment"
	"github.com/nikogura/suture-assessor/pkg/rubric"
	"github.com/pkg/errors"
)

// AssessItem scores one rubric item. VIDEO items are judged from the
// procedure video, STILL items from the final-product image with the
// reference image attached when one is given.
func (c *Client) AssessItem(ctx context.Context, req assessment.ItemRequest) (raw assessment.RawScore, err error) {
	var parts []Part
	parts, err = c.itemMedia(ctx, req)
	if err != nil {
		return raw, err
	}

	withReference := req.Item.Modality == rubric.ModalityStill && req.Submission.RefImagePath != ""
	parts = append(parts, Part{Text: buildItemPrompt(req.SutureType, req.Item, withReference)})

	c.logger.Debug("assessing item",
		slog.Int("item", req.Item.Index),
		slog.String("modality", string(req.Item.Modality)),
		slog.String("model", c.model),
	)

	var responseText string
	responseText, err = c.sendRequest(ctx, parts)
	if err != nil {
		err = errors.Wrap(err, "assessment request failed")
		return raw, err
	}

	raw, err = ParseItemResponse(responseText)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse assessment of item %d", req.Item.Index)
		return raw, err
	}

	return raw, err
}

func (c *Client) itemMedia(ctx context.Context, req assessment.ItemRequest) (parts []Part, err error) {
	var part Part

	switch req.Item.Modality {
	case rubric.ModalityVideo:
		if req.Submission.VideoPath == "" {
			err = errors.Errorf("item %d needs a video but none was given", req.Item.Index)
			return parts, err
		}
		part, err = c.mediaPart(ctx, req.Submission.VideoPath)
		if err != nil {
			return parts, err
		}
		parts = append(parts, part)

	case rubric.ModalityStill:
		if req.Submission.ImagePath == "" {
			err = errors.Errorf("item %d needs a final-product image but none was given", req.Item.Index)
			return parts, err
		}
		part, err = c.mediaPart(ctx, req.Submission.ImagePath)
		if err != nil {
			return parts, err
		}
		parts = append(parts, part)

		if req.Submission.RefImagePath != "" {
			part, err = c.mediaPart(ctx, req.Submission.RefImagePath)
			if err != nil {
				return parts, err
			}
			parts = append(parts, part)
		}

	default:
		err = errors.Errorf("item %d has unknown modality %q", req.Item.Index, req.Item.Modality)
		return parts, err
	}

	return parts, err
}

// Summarize writes the summative comment with Gemini.
func (c *Client) Summarize(ctx context.Context, req assessment.SummaryRequest) (comment string, err error) {
	var responseText string
	responseText, err = c.sendRequest(ctx, []Part{{Text: buildSummaryPrompt(req)}})
	if err != nil {
		err = errors.Wrap(err, "summary request failed")
		return comment, err
	}

	comment = normalizeSummary(responseText)

	return comment, err
}
