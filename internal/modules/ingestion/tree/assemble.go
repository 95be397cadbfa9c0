package tree

import (
	"fmt"
	"strings"

	"github.com/yungbote/coursetree/internal/modules/ingestion/docs"
)

// Assemble merges a document set into a course tree. It never fails:
// inconsistencies are recorded on the tree for the validator to report.
func Assemble(set *docs.Set) *Course {
	if set == nil {
		return &Course{}
	}
	meta, outline := set.Metadata, set.Outline

	c := &Course{
		Title: resolveString("course.title", map[Origin]string{
			FromMetadata: strings.TrimSpace(meta.Title), FromOutline: strings.TrimSpace(outline.Title)}),
		Slug: resolveString("course.slug", map[Origin]string{
			FromMetadata: strings.TrimSpace(meta.Slug), FromOutline: strings.TrimSpace(outline.Slug)}),
		Summary: resolveString("course.summary", map[Origin]string{
			FromMetadata: strings.TrimSpace(meta.Summary), FromOutline: strings.TrimSpace(outline.Summary)}),
		Language: resolveString("course.language", map[Origin]string{
			FromMetadata: strings.TrimSpace(meta.Language), FromOutline: strings.TrimSpace(outline.Language)}),
		Tags:             append([]string(nil), meta.Tags...),
		EstimatedMinutes: copyInt(meta.EstimatedMinutes),
		Visibility:       strings.TrimSpace(meta.Visibility),
		Status:           strings.TrimSpace(meta.Status),
		Version:          copyInt(meta.Version),
	}
	if meta.Banner != nil {
		c.BannerURL, c.BannerAlt = strings.TrimSpace(meta.Banner.URL), strings.TrimSpace(meta.Banner.Alt)
	}
	if meta.Icon != nil {
		c.IconURL, c.IconAlt = strings.TrimSpace(meta.Icon.URL), strings.TrimSpace(meta.Icon.Alt)
	}

	// outline chapters are keyed by ix, or by 1-based position when ix is absent
	byKey := make(map[int]int, len(outline.Chapters))
	for i, oc := range outline.Chapters {
		key := oc.Ix
		if key <= 0 {
			key = i + 1
		}
		if _, taken := byKey[key]; !taken {
			byKey[key] = i
		}
	}

	matched := make(map[int]*docs.ChapterFile, len(set.Chapters))
	for i := range set.Chapters {
		cf := &set.Chapters[i]
		pos, ok := byKey[cf.FolderNumber]
		switch {
		case cf.FolderNumber <= 0:
			c.Dangling = append(c.Dangling, dangling(cf, "chapter folder has no leading number"))
		case !ok:
			c.Dangling = append(c.Dangling, dangling(cf, fmt.Sprintf("no outline chapter %d", cf.FolderNumber)))
		case matched[pos] != nil:
			d := dangling(cf, fmt.Sprintf("duplicate of %s", matched[pos].File))
			d.Duplicate, d.DocOrder = true, pos
			c.Dangling = append(c.Dangling, d)
		default:
			matched[pos] = cf
		}
	}

	for i, oc := range outline.Chapters {
		c.Chapters = append(c.Chapters, assembleChapter(i, oc, matched[i]))
	}
	return c
}

func dangling(cf *docs.ChapterFile, reason string) DanglingChapter {
	return DanglingChapter{File: cf.File, Folder: cf.Folder, FolderNumber: cf.FolderNumber, Reason: reason}
}

func assembleChapter(order int, oc docs.OutlineChapter, cf *docs.ChapterFile) *Chapter {
	ch := &Chapter{DocOrder: order}
	if cf == nil {
		ch.Ix = resolveIx("chapter.ix", map[Origin]int{FromOutline: oc.Ix})
		ch.Title = strings.TrimSpace(oc.Title)
		ch.Summary = strings.TrimSpace(oc.Summary)
		ch.Incomplete = true
		for j, os := range oc.Sections {
			ch.Sections = append(ch.Sections, stubSection(j, os))
		}
		return ch
	}

	doc := cf.Doc
	ch.File = cf.File
	ch.Ix = resolveIx("chapter.ix", map[Origin]int{
		FromChapterDoc: doc.Ix, FromFolderNumber: cf.FolderNumber, FromOutline: oc.Ix})
	ch.Title = resolveString("chapter.title", map[Origin]string{
		FromChapterDoc: strings.TrimSpace(doc.Title), FromOutline: strings.TrimSpace(oc.Title)})
	ch.Summary = resolveString("chapter.summary", map[Origin]string{
		FromChapterDoc: strings.TrimSpace(doc.Summary), FromOutline: strings.TrimSpace(oc.Summary)})
	ch.Sections = mergeSections(oc.Sections, doc.Sections)
	return ch
}

// mergeSections pairs detailed sections with outline sections by ix, falling
// back to position for sections without one. Outline sections left unpaired
// are appended as stubs.
func mergeSections(outline []docs.OutlineSection, detail []docs.SectionDoc) []*Section {
	byKey := make(map[int]int, len(outline))
	for i, os := range outline {
		key := os.Ix
		if key <= 0 {
			key = i + 1
		}
		if _, taken := byKey[key]; !taken {
			byKey[key] = i
		}
	}

	used := make([]bool, len(outline))
	out := make([]*Section, 0, len(detail)+len(outline))
	for j, sd := range detail {
		pos := -1
		if sd.Ix > 0 {
			if p, ok := byKey[sd.Ix]; ok && !used[p] {
				pos = p
			}
		} else if j < len(outline) && !used[j] {
			pos = j
		}

		values := map[Origin]int{FromChapterDoc: sd.Ix}
		titles := map[Origin]string{FromChapterDoc: strings.TrimSpace(sd.Title)}
		summaries := map[Origin]string{FromChapterDoc: strings.TrimSpace(sd.Summary)}
		if pos >= 0 {
			used[pos] = true
			values[FromOutline] = outline[pos].Ix
			titles[FromOutline] = strings.TrimSpace(outline[pos].Title)
			summaries[FromOutline] = strings.TrimSpace(outline[pos].Summary)
		}
		s := &Section{
			Ix:       resolveIx("section.ix", values),
			DocOrder: j,
			Title:    resolveString("section.title", titles),
			Summary:  resolveString("section.summary", summaries),
		}
		for k, ld := range sd.Learnings {
			s.Learnings = append(s.Learnings, assembleLearning(k, ld))
		}
		out = append(out, s)
	}

	next := len(detail)
	for i, os := range outline {
		if used[i] {
			continue
		}
		out = append(out, stubSection(next, os))
		next++
	}
	return out
}

func stubSection(order int, os docs.OutlineSection) *Section {
	return &Section{
		Ix:       resolveIx("section.ix", map[Origin]int{FromOutline: os.Ix}),
		DocOrder: order,
		Title:    strings.TrimSpace(os.Title),
		Summary:  strings.TrimSpace(os.Summary),
		Stub:     true,
	}
}

func assembleLearning(order int, ld docs.LearningDoc) *Learning {
	l := &Learning{
		Ix:           ld.Ix,
		DocOrder:     order,
		Title:        strings.TrimSpace(ld.Title),
		Body:         ld.Body,
		MinQuestions: copyInt(ld.MinQuestions),
		MaxQuestions: copyInt(ld.MaxQuestions),
		QuickReplies: append([]string(nil), ld.QuickReplies...),
		State:        strings.TrimSpace(ld.State),
	}
	for i, qd := range ld.Questions {
		q := &Question{
			Ix:         qd.Ix,
			DocOrder:   i,
			Type:       strings.ToLower(strings.TrimSpace(qd.Type)),
			Prompt:     qd.Prompt,
			Difficulty: strings.ToLower(strings.TrimSpace(qd.Difficulty)),
			Rationale:  qd.Rationale,
			Metadata:   qd.Metadata,
		}
		for k, ad := range qd.Answers {
			q.Answers = append(q.Answers, &AnswerOption{
				Ix:        ad.Ix,
				DocOrder:  k,
				Content:   ad.Content,
				IsCorrect: ad.Correct,
				Feedback:  strings.TrimSpace(ad.Feedback),
			})
		}
		l.Questions = append(l.Questions, q)
	}
	return l
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
