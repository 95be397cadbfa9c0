package persist

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/coursetree/internal/domain"
	domainagg "github.com/yungbote/coursetree/internal/domain/aggregates"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
)

// IDs are the resolved external references a course row carries.
type IDs struct {
	CreatorID  uuid.UUID
	CategoryID uuid.UUID
}

// CourseRow maps the tree root onto a course record. Missing optional values
// take their documented defaults.
func CourseRow(c *tree.Course, ids IDs) (*types.Course, error) {
	tags, err := jsonValue(c.Tags, "[]")
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	row := &types.Course{
		CreatorID:  ids.CreatorID,
		CategoryID: ids.CategoryID,
		Title:      c.Title,
		Slug:       c.Slug,
		Summary:    c.Summary,
		Language:   c.Language,
		Tags:       tags,
		BannerURL:  c.BannerURL,
		BannerAlt:  c.BannerAlt,
		IconURL:    c.IconURL,
		IconAlt:    c.IconAlt,
		Visibility: orDefault(c.Visibility, types.VisibilityPrivate),
		Status:     orDefault(c.Status, types.StatusDraft),
		Version:    1,
	}
	if c.EstimatedMinutes != nil {
		row.EstimatedMinutes = *c.EstimatedMinutes
	}
	if c.Version != nil {
		row.Version = *c.Version
	}
	return row, nil
}

// ChapterRows maps a chapter subtree onto write rows in sibling order.
func ChapterRows(ch *tree.Chapter) (domainagg.ChapterWrite, error) {
	cw := domainagg.ChapterWrite{Chapter: &types.Chapter{Ix: ch.Ix, Title: ch.Title, Summary: ch.Summary}}
	for _, s := range ch.Sections {
		sw := domainagg.SectionWrite{Section: &types.Section{Ix: s.Ix, Title: s.Title, Summary: s.Summary}}
		for _, l := range s.Learnings {
			replies, err := jsonValue(l.QuickReplies, "[]")
			if err != nil {
				return cw, fmt.Errorf("encode quick replies: %w", err)
			}
			lw := domainagg.LearningWrite{Learning: &types.Learning{
				Ix:           l.Ix,
				Title:        l.Title,
				Body:         l.Body,
				MinQuestions: intOr(l.MinQuestions, types.DefaultMinQuestions),
				MaxQuestions: intOr(l.MaxQuestions, types.DefaultMaxQuestions),
				QuickReplies: replies,
				State:        orDefault(l.State, types.LearningStateDraft),
			}}
			for _, q := range l.Questions {
				meta, err := jsonValue(q.Metadata, "{}")
				if err != nil {
					return cw, fmt.Errorf("encode question metadata: %w", err)
				}
				qw := domainagg.QuestionWrite{Question: &types.Question{
					Ix:         q.Ix,
					Type:       q.Type,
					Prompt:     q.Prompt,
					Difficulty: q.Difficulty,
					Rationale:  q.Rationale,
					Metadata:   meta,
				}}
				for _, a := range q.Answers {
					qw.Answers = append(qw.Answers, &types.AnswerOption{
						Ix:        a.Ix,
						Content:   a.Content,
						IsCorrect: a.IsCorrect,
						Feedback:  a.Feedback,
					})
				}
				lw.Questions = append(lw.Questions, qw)
			}
			sw.Learnings = append(sw.Learnings, lw)
		}
		cw.Sections = append(cw.Sections, sw)
	}
	return cw, nil
}

func jsonValue[T any](v T, empty string) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		b = []byte(empty)
	}
	return datatypes.JSON(b), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
