package tree

// Clone returns a deep copy of c. Question metadata maps are copied one level
// deep; nested values are shared.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.Tags = append([]string(nil), c.Tags...)
	out.EstimatedMinutes = copyInt(c.EstimatedMinutes)
	out.Version = copyInt(c.Version)
	out.Dangling = append([]DanglingChapter(nil), c.Dangling...)
	out.Chapters = make([]*Chapter, 0, len(c.Chapters))
	for _, ch := range c.Chapters {
		out.Chapters = append(out.Chapters, ch.clone())
	}
	return &out
}

func (ch *Chapter) clone() *Chapter {
	out := *ch
	out.Sections = make([]*Section, 0, len(ch.Sections))
	for _, s := range ch.Sections {
		cp := *s
		cp.Learnings = make([]*Learning, 0, len(s.Learnings))
		for _, l := range s.Learnings {
			cp.Learnings = append(cp.Learnings, l.clone())
		}
		out.Sections = append(out.Sections, &cp)
	}
	return &out
}

func (l *Learning) clone() *Learning {
	out := *l
	out.MinQuestions = copyInt(l.MinQuestions)
	out.MaxQuestions = copyInt(l.MaxQuestions)
	out.QuickReplies = append([]string(nil), l.QuickReplies...)
	out.Questions = make([]*Question, 0, len(l.Questions))
	for _, q := range l.Questions {
		qc := *q
		if q.Metadata != nil {
			qc.Metadata = make(map[string]any, len(q.Metadata))
			for k, v := range q.Metadata {
				qc.Metadata[k] = v
			}
		}
		qc.Answers = make([]*AnswerOption, 0, len(q.Answers))
		for _, a := range q.Answers {
			ac := *a
			qc.Answers = append(qc.Answers, &ac)
		}
		out.Questions = append(out.Questions, &qc)
	}
	return &out
}
