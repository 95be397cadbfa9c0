// Package patch turns structural violations into safe, deterministic edits.
package patch

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	types "github.com/yungbote/coursetree/internal/domain"
	"github.com/yungbote/coursetree/internal/modules/ingestion/tree"
	"github.com/yungbote/coursetree/internal/modules/ingestion/validation"
)

type Op string

const (
	OpRenumber           Op = "renumber"
	OpSetDefault         Op = "set_default"
	OpClampBounds        Op = "clamp_bounds"
	OpSynthesizeFeedback Op = "synthesize_feedback"
)

const DefaultFeedback = "Not quite. Review this learning and try again."

// Edit is one change to the node at Path. For OpRenumber, Field is the child
// level being renumbered; for OpSetDefault, the field being filled.
type Edit struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

func (e Edit) String() string {
	if e.Value != "" {
		return fmt.Sprintf("%s %s.%s=%q", e.Op, e.Path, e.Field, e.Value)
	}
	return fmt.Sprintf("%s %s.%s", e.Op, e.Path, e.Field)
}

type Options struct {
	SynthesizeFeedback bool
	// FeedbackText replaces DefaultFeedback when set.
	FeedbackText string
}

type Plan struct {
	Edits     []Edit
	Remaining []validation.Violation
}

type Result struct {
	Course    *tree.Course
	Applied   []Edit
	Remaining []validation.Violation
}

// Propose maps each violation to an edit when a safe fix exists. The rest
// are returned in Remaining with RequiresAuthoring set.
func Propose(c *tree.Course, vs []validation.Violation, opts Options) Plan {
	var plan Plan
	seen := map[Edit]bool{}
	for _, v := range vs {
		edit, ok := propose(c, v, opts)
		if !ok {
			v.RequiresAuthoring = true
			plan.Remaining = append(plan.Remaining, v)
			continue
		}
		if !seen[edit] {
			seen[edit] = true
			plan.Edits = append(plan.Edits, edit)
		}
	}
	return plan
}

func propose(c *tree.Course, v validation.Violation, opts Options) (Edit, bool) {
	if c == nil {
		return Edit{}, false
	}
	node, err := c.Resolve(v.Path)
	if err != nil {
		return Edit{}, false
	}
	switch v.Kind {
	case validation.NonContiguousIndex:
		return Edit{Op: OpRenumber, Path: v.Path, Field: v.Field}, v.Field != ""
	case validation.MissingField:
		value, ok := defaultFor(node, v.Field)
		if !ok {
			return Edit{}, false
		}
		return Edit{Op: OpSetDefault, Path: v.Path, Field: v.Field, Value: value}, true
	case validation.InvalidValue:
		if node.Level == tree.LevelLearning && v.Field == "question_bounds" {
			return Edit{Op: OpClampBounds, Path: v.Path, Field: v.Field}, true
		}
	case validation.MissingFeedback:
		if opts.SynthesizeFeedback && node.Level == tree.LevelAnswer {
			text := strings.TrimSpace(opts.FeedbackText)
			if text == "" {
				text = DefaultFeedback
			}
			return Edit{Op: OpSynthesizeFeedback, Path: v.Path, Field: "feedback", Value: text}, true
		}
	}
	return Edit{}, false
}

// defaultFor returns the documented default of a missing field.
func defaultFor(n tree.Node, field string) (string, bool) {
	switch n.Level {
	case tree.LevelCourse:
		switch field {
		case "visibility":
			return types.VisibilityPrivate, true
		case "status":
			return types.StatusDraft, true
		case "version":
			return "1", true
		case "slug":
			s := Slugify(n.Course.Title)
			return s, s != ""
		}
	case tree.LevelLearning:
		switch field {
		case "state":
			return types.LearningStateDraft, true
		case "min_questions":
			return strconv.Itoa(types.DefaultMinQuestions), true
		case "max_questions":
			return strconv.Itoa(types.DefaultMaxQuestions), true
		}
	}
	return "", false
}

// Apply runs the plan on a deep copy of c. Every path is resolved before any
// edit runs, so renumbering never invalidates a later edit's path.
func Apply(c *tree.Course, plan Plan) (*tree.Course, error) {
	out := c.Clone()
	if out == nil {
		return nil, fmt.Errorf("apply: nil course")
	}
	nodes := make([]tree.Node, len(plan.Edits))
	for i, e := range plan.Edits {
		n, err := out.Resolve(e.Path)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", e, err)
		}
		nodes[i] = n
	}
	for i, e := range plan.Edits {
		if err := apply(nodes[i], e); err != nil {
			return nil, fmt.Errorf("apply %s: %w", e, err)
		}
	}
	return out, nil
}

// Fix is Propose followed by Apply.
func Fix(c *tree.Course, vs []validation.Violation, opts Options) Result {
	plan := Propose(c, vs, opts)
	next, err := Apply(c, plan)
	if err != nil {
		remaining := make([]validation.Violation, 0, len(vs))
		for _, v := range vs {
			v.RequiresAuthoring = true
			remaining = append(remaining, v)
		}
		return Result{Course: c.Clone(), Remaining: remaining}
	}
	return Result{Course: next, Applied: plan.Edits, Remaining: plan.Remaining}
}

func apply(n tree.Node, e Edit) error {
	switch e.Op {
	case OpRenumber:
		return renumber(n, e.Field)
	case OpSetDefault:
		return setDefault(n, e.Field, e.Value)
	case OpClampBounds:
		if n.Learning == nil || n.Level != tree.LevelLearning {
			return fmt.Errorf("clamp needs a learning")
		}
		clampBounds(n.Learning)
		return nil
	case OpSynthesizeFeedback:
		if n.Level != tree.LevelAnswer {
			return fmt.Errorf("feedback needs an answer")
		}
		if strings.TrimSpace(n.Answer.Feedback) == "" {
			n.Answer.Feedback = e.Value
		}
		return nil
	}
	return fmt.Errorf("unknown op %q", e.Op)
}

func setDefault(n tree.Node, field, value string) error {
	switch n.Level {
	case tree.LevelCourse:
		c := n.Course
		switch field {
		case "visibility":
			c.Visibility = value
		case "status":
			c.Status = value
		case "slug":
			c.Slug = value
		case "version":
			v, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			c.Version = &v
		default:
			return fmt.Errorf("no default for course.%s", field)
		}
		return nil
	case tree.LevelLearning:
		l := n.Learning
		switch field {
		case "state":
			l.State = value
		case "min_questions", "max_questions":
			v, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			if field == "min_questions" {
				l.MinQuestions = &v
			} else {
				l.MaxQuestions = &v
			}
		default:
			return fmt.Errorf("no default for learning.%s", field)
		}
		return nil
	}
	return fmt.Errorf("no default for %s.%s", n.Level, field)
}

// clampBounds forces 2 <= min <= max <= 10, raising max to min when they cross.
func clampBounds(l *tree.Learning) {
	lo, hi := types.DefaultMinQuestions, types.DefaultMaxQuestions
	if l.MinQuestions != nil {
		lo = clamp(*l.MinQuestions)
	}
	if l.MaxQuestions != nil {
		hi = clamp(*l.MaxQuestions)
	}
	if hi < lo {
		hi = lo
	}
	l.MinQuestions, l.MaxQuestions = &lo, &hi
}

func clamp(v int) int {
	if v < types.DefaultMinQuestions {
		return types.DefaultMinQuestions
	}
	if v > types.DefaultMaxQuestions {
		return types.DefaultMaxQuestions
	}
	return v
}

type child struct {
	ix       *int
	docOrder int
	pos      int
}

// renumber sorts the children of n by prior ix (missing last), then document
// order, and assigns 1..n.
func renumber(n tree.Node, level string) error {
	var kids []child
	add := func(ix *int, docOrder int) {
		kids = append(kids, child{ix: ix, docOrder: docOrder, pos: len(kids)})
	}
	switch {
	case n.Level == tree.LevelCourse && level == tree.LevelChapter:
		for _, ch := range n.Course.Chapters {
			add(&ch.Ix, ch.DocOrder)
		}
	case n.Level == tree.LevelChapter && level == tree.LevelSection:
		for _, s := range n.Chapter.Sections {
			add(&s.Ix, s.DocOrder)
		}
	case n.Level == tree.LevelSection && level == tree.LevelLearning:
		for _, l := range n.Section.Learnings {
			add(&l.Ix, l.DocOrder)
		}
	case n.Level == tree.LevelLearning && level == tree.LevelQuestion:
		for _, q := range n.Learning.Questions {
			add(&q.Ix, q.DocOrder)
		}
	case n.Level == tree.LevelQuestion && level == tree.LevelAnswer:
		for _, a := range n.Question.Answers {
			add(&a.Ix, a.DocOrder)
		}
	default:
		return fmt.Errorf("cannot renumber %s under %s", level, n.Level)
	}

	sort.SliceStable(kids, func(i, j int) bool {
		a, b := *kids[i].ix, *kids[j].ix
		if (a > 0) != (b > 0) {
			return a > 0
		}
		if a != b && a > 0 {
			return a < b
		}
		return kids[i].docOrder < kids[j].docOrder
	})
	order := make([]int, len(kids))
	for i, k := range kids {
		*k.ix = i + 1
		order[i] = k.pos
	}

	switch level {
	case tree.LevelChapter:
		n.Course.Chapters = reorder(n.Course.Chapters, order)
	case tree.LevelSection:
		n.Chapter.Sections = reorder(n.Chapter.Sections, order)
	case tree.LevelLearning:
		n.Section.Learnings = reorder(n.Section.Learnings, order)
	case tree.LevelQuestion:
		n.Learning.Questions = reorder(n.Learning.Questions, order)
	case tree.LevelAnswer:
		n.Question.Answers = reorder(n.Question.Answers, order)
	}
	return nil
}

func reorder[T any](in []T, order []int) []T {
	out := make([]T, len(in))
	for i, pos := range order {
		out[i] = in[pos]
	}
	return out
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
