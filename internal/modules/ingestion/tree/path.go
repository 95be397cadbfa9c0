package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path levels, root first. A path looks like
// course/chapter:2/section:1/learning:3/question:1/answer:2. A step whose ix
// is missing or shared by a sibling uses the 1-based document order instead:
// section:#3.
const (
	LevelCourse   = "course"
	LevelChapter  = "chapter"
	LevelSection  = "section"
	LevelLearning = "learning"
	LevelQuestion = "question"
	LevelAnswer   = "answer"
)

var levels = []string{LevelCourse, LevelChapter, LevelSection, LevelLearning, LevelQuestion, LevelAnswer}

func Segment(level string, ix, docOrder int, unique bool) string {
	if ix > 0 && unique {
		return level + ":" + strconv.Itoa(ix)
	}
	return level + ":#" + strconv.Itoa(docOrder+1)
}

// Node is a resolved path. Level names the deepest populated field.
type Node struct {
	Level    string
	Course   *Course
	Chapter  *Chapter
	Section  *Section
	Learning *Learning
	Question *Question
	Answer   *AnswerOption
}

type ref struct {
	ix       int
	docOrder int
}

// Resolve finds the node a path addresses.
func (c *Course) Resolve(path string) (Node, error) {
	if c == nil {
		return Node{}, fmt.Errorf("resolve %q: nil course", path)
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] != LevelCourse {
		return Node{}, fmt.Errorf("resolve %q: path must start with %q", path, LevelCourse)
	}
	if len(parts) > len(levels) {
		return Node{}, fmt.Errorf("resolve %q: too deep", path)
	}
	n := Node{Level: LevelCourse, Course: c}
	for depth, part := range parts[1:] {
		want := levels[depth+1]
		level, key, ok := strings.Cut(part, ":")
		if !ok || level != want {
			return Node{}, fmt.Errorf("resolve %q: expected %s step, got %q", path, want, part)
		}
		var refs []ref
		switch want {
		case LevelChapter:
			for _, ch := range n.Course.Chapters {
				refs = append(refs, ref{ch.Ix, ch.DocOrder})
			}
		case LevelSection:
			for _, s := range n.Chapter.Sections {
				refs = append(refs, ref{s.Ix, s.DocOrder})
			}
		case LevelLearning:
			for _, l := range n.Section.Learnings {
				refs = append(refs, ref{l.Ix, l.DocOrder})
			}
		case LevelQuestion:
			for _, q := range n.Learning.Questions {
				refs = append(refs, ref{q.Ix, q.DocOrder})
			}
		case LevelAnswer:
			for _, a := range n.Question.Answers {
				refs = append(refs, ref{a.Ix, a.DocOrder})
			}
		}
		i, err := pick(refs, key)
		if err != nil {
			return Node{}, fmt.Errorf("resolve %q: %s: %w", path, part, err)
		}
		n.Level = want
		switch want {
		case LevelChapter:
			n.Chapter = n.Course.Chapters[i]
		case LevelSection:
			n.Section = n.Chapter.Sections[i]
		case LevelLearning:
			n.Learning = n.Section.Learnings[i]
		case LevelQuestion:
			n.Question = n.Learning.Questions[i]
		case LevelAnswer:
			n.Answer = n.Question.Answers[i]
		}
	}
	return n, nil
}

func pick(refs []ref, key string) (int, error) {
	byOrder := strings.HasPrefix(key, "#")
	v, err := strconv.Atoi(strings.TrimPrefix(key, "#"))
	if err != nil {
		return -1, fmt.Errorf("bad index %q", key)
	}
	found := -1
	for i, r := range refs {
		if (byOrder && r.docOrder == v-1) || (!byOrder && r.ix == v) {
			if found >= 0 {
				return -1, fmt.Errorf("ambiguous index %q", key)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("no such node")
	}
	return found, nil
}
